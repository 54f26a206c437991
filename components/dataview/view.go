package dataview

import (
	"context"
	"sort"
	"sync"
)

// ViewOptions wires a View to its collaborators. Credentials travel inside Source and
// Executor; the view never reads ambient auth state.
type ViewOptions struct {
	Resource  ResourceConfig
	Source    RecordSource
	Executor  ActionExecutor
	Notifier  Notifier
	Validator PatchValidator
	Telemetry Telemetry
	Logger    Logger
	// Viewer addresses the view's notifications. A zero viewer broadcasts them.
	Viewer ViewerContext
}

// View is the Tabular Data View: a fetched record collection plus filter, sort and page state.
// All state transitions are serialized; the view owns its collection exclusively.
type View struct {
	opts ViewOptions

	mu      sync.Mutex
	records []Record
	loaded  bool
	loading bool
	gen     uint64
	err     error
	filter  FilterState
	sort    SortState
	page    int
	busy    map[string]struct{}
	closed  bool
}

// NewView builds a view with safe defaults.
func NewView(opts ViewOptions) *View {
	if opts.Resource.IDField == "" {
		opts.Resource.IDField = defaultIDField
	}
	if opts.Notifier == nil {
		opts.Notifier = noopNotifier{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.Logger = normalizeLogger(opts.Logger)
	return &View{
		opts: opts,
		page: 1,
		busy: make(map[string]struct{}),
	}
}

// Resource returns the configuration backing the view.
func (v *View) Resource() ResourceConfig {
	return v.opts.Resource
}

// Load fetches the collection. Only the most recent call may apply its response;
// earlier completions return ErrStaleResponse and leave state untouched.
func (v *View) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	if v.opts.Source == nil {
		v.mu.Unlock()
		return errMissingSource
	}
	v.gen++
	gen := v.gen
	v.loading = true
	v.mu.Unlock()

	records, err := v.opts.Source.List(ctx, v.opts.Resource)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	if gen != v.gen {
		v.mu.Unlock()
		v.opts.Logger.Debug("discarding stale load", "resource", v.opts.Resource.Code, "generation", gen)
		return ErrStaleResponse
	}
	v.loading = false
	if err != nil {
		fetchErr := &FetchError{Resource: v.opts.Resource.Code, Err: err}
		v.err = fetchErr
		if !v.loaded {
			v.records = []Record{}
		}
		v.mu.Unlock()
		v.opts.Logger.Warn("load failed", "resource", v.opts.Resource.Code, "error", err)
		v.notify(ctx, Notification{Level: LevelError, Resource: v.opts.Resource.Code, Message: fetchErr.Error()})
		v.opts.Telemetry.Record(ctx, "dataview.view.load_error", map[string]any{
			"resource": v.opts.Resource.Code,
			"error":    err.Error(),
		})
		return fetchErr
	}
	if records == nil {
		records = []Record{}
	}
	v.records = cloneRecords(records)
	v.loaded = true
	v.err = nil
	count := len(v.records)
	v.mu.Unlock()

	v.opts.Logger.Debug("view loaded", "resource", v.opts.Resource.Code, "count", count)
	v.opts.Telemetry.Record(ctx, "dataview.view.load", map[string]any{
		"resource": v.opts.Resource.Code,
		"count":    count,
	})
	return nil
}

// SetSearchText updates the search query without refetching.
func (v *View) SetSearchText(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter.Search = text
	v.page = 1
}

// SetEqualityFilter sets an exact-match filter on field; a nil value clears it.
func (v *View) SetEqualityFilter(field string, value any) {
	if field == "" {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if value == nil {
		delete(v.filter.Equality, field)
		if len(v.filter.Equality) == 0 {
			v.filter.Equality = nil
		}
	} else {
		if v.filter.Equality == nil {
			v.filter.Equality = map[string]any{}
		}
		v.filter.Equality[field] = value
	}
	v.page = 1
}

// SetSort flips the direction for the active field or sorts ascending by a new one.
func (v *View) SetSort(field string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sort = v.sort.Toggle(field)
}

// SetPage selects the 1-based page; out of range pages are clamped on read.
func (v *View) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = page
}

// ResetFilters clears search, equality filters, sort and page in one update.
func (v *View) ResetFilters() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = FilterState{}
	v.sort = SortState{}
	v.page = 1
}

// ApplyPreset replaces filter and sort state with a saved preset in one update.
func (v *View) ApplyPreset(p Preset) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = p.Filter.clone()
	v.sort = p.Sort
	v.page = 1
}

// Filter returns a copy of the current filter state.
func (v *View) Filter() FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter.clone()
}

// Sort returns the current sort state.
func (v *View) Sort() SortState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sort
}

// Records returns the source collection in fetch order.
func (v *View) Records() []Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return cloneRecords(v.records)
}

// Compute returns the full filtered and sorted sequence, ignoring pagination.
func (v *View) Compute() []Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ComputeView(v.records, v.filter, v.sort, v.searchFields())
}

// Snapshot derives the render state for the current page.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	matched := ComputeView(v.records, v.filter, v.sort, v.searchFields())
	pageRecords, info := Paginate(matched, v.page, v.opts.Resource.PageSize)
	snap := Snapshot{
		Resource: v.opts.Resource.Code,
		Records:  cloneRecords(pageRecords),
		Total:    len(v.records),
		Matched:  len(matched),
		Page:     info,
		Filter:   v.filter.clone(),
		Sort:     v.sort,
		Loading:  v.loading,
		Busy:     v.busyIDs(),
	}
	if snap.Records == nil {
		snap.Records = []Record{}
	}
	if v.err != nil {
		snap.Error = v.err.Error()
		snap.Retryable = true
	}
	snap.Status = v.status(len(matched))
	return snap
}

// Busy reports whether a row action is in flight for id.
func (v *View) Busy(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.busy[id]
	return ok
}

// Close drops any completion that arrives afterwards.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

func (v *View) status(matched int) Status {
	switch {
	case v.loading:
		return StatusLoading
	case v.err != nil:
		return StatusError
	case !v.loaded:
		return StatusIdle
	case len(v.records) == 0:
		return StatusEmpty
	case matched == 0:
		return StatusNoResults
	default:
		return StatusReady
	}
}

func (v *View) searchFields() []string {
	if len(v.opts.Resource.SearchFields) > 0 {
		return v.opts.Resource.SearchFields
	}
	return defaultSearchFields
}

func (v *View) busyIDs() []string {
	if len(v.busy) == 0 {
		return nil
	}
	ids := make([]string, 0, len(v.busy))
	for id := range v.busy {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (v *View) indexOf(id string) int {
	for i, r := range v.records {
		if r.ID(v.opts.Resource.IDField) == id {
			return i
		}
	}
	return -1
}

func (v *View) notify(ctx context.Context, note Notification) {
	note.Viewer = v.opts.Viewer.UserID
	if err := v.opts.Notifier.Notify(ctx, note); err != nil {
		v.opts.Logger.Warn("notification failed", "resource", note.Resource, "error", err)
	}
}
