package dataview

import (
	"context"
)

// RecordSource loads record collections from the remote backend.
// Implementations attach the viewer's credentials to every call.
type RecordSource interface {
	List(ctx context.Context, resource ResourceConfig) ([]Record, error)
	Get(ctx context.Context, resource ResourceConfig, id string) (Record, error)
}

// ActionExecutor runs mutating calls (status changes, deletes) against the backend.
type ActionExecutor interface {
	Execute(ctx context.Context, resource ResourceConfig, id string, action RowAction) (ActionResult, error)
}

// Authorizer determines if a viewer can open a resource view.
type Authorizer interface {
	CanView(ctx context.Context, viewer ViewerContext, resource ResourceConfig) bool
}

// Notifier receives user facing messages (toasts) produced by loads and row actions.
type Notifier interface {
	Notify(ctx context.Context, note Notification) error
}

// ResourceRegistry stores resource definitions discoverable via hooks or manifests.
type ResourceRegistry interface {
	Register(cfg ResourceConfig) error
	Resource(code string) (ResourceConfig, bool)
	Resources() []ResourceConfig
}

// ViewerContext captures the active user/locale information needed to open views.
type ViewerContext struct {
	UserID string
	Roles  []string
	Locale string
}

// Column describes a rendered table column.
type Column struct {
	Field          string            `json:"field" yaml:"field"`
	Label          string            `json:"label,omitempty" yaml:"label,omitempty"`
	LabelLocalized map[string]string `json:"label_localized,omitempty" yaml:"label_localized,omitempty"`
	Sortable       bool              `json:"sortable,omitempty" yaml:"sortable,omitempty"`
	Filterable     bool              `json:"filterable,omitempty" yaml:"filterable,omitempty"`
}

// ResourceConfig parameterizes a Tabular Data View for one backend collection.
type ResourceConfig struct {
	Code          string            `json:"code" yaml:"code"`
	Name          string            `json:"name" yaml:"name"`
	NameLocalized map[string]string `json:"name_localized,omitempty" yaml:"name_localized,omitempty"`
	Endpoint      string            `json:"endpoint" yaml:"endpoint"`
	IDField       string            `json:"id_field,omitempty" yaml:"id_field,omitempty"`
	Columns       []Column          `json:"columns,omitempty" yaml:"columns,omitempty"`
	SearchFields  []string          `json:"search_fields,omitempty" yaml:"search_fields,omitempty"`
	PageSize      int               `json:"page_size,omitempty" yaml:"page_size,omitempty"`
	Roles         []string          `json:"roles,omitempty" yaml:"roles,omitempty"`
	Actions       []RowAction       `json:"actions,omitempty" yaml:"actions,omitempty"`
	PatchSchema   map[string]any    `json:"patch_schema,omitempty" yaml:"patch_schema,omitempty"`
}

// RowAction describes a mutation scoped to a single record.
// Patch holds the field values applied locally once the backend confirms the call.
type RowAction struct {
	Name    string         `json:"name" yaml:"name"`
	Label   string         `json:"label,omitempty" yaml:"label,omitempty"`
	Method  string         `json:"method,omitempty" yaml:"method,omitempty"`
	Path    string         `json:"path,omitempty" yaml:"path,omitempty"`
	Body    map[string]any `json:"body,omitempty" yaml:"body,omitempty"`
	Patch   map[string]any `json:"patch,omitempty" yaml:"patch,omitempty"`
	Deletes bool           `json:"deletes,omitempty" yaml:"deletes,omitempty"`
	// Fields lists the keys a caller may supply values for. Nil allows any key,
	// an empty list allows none.
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`
	// Toggle names boolean fields the backend flips without echoing them back.
	Toggle []string `json:"toggle,omitempty" yaml:"toggle,omitempty"`
}

// ActionResult is the backend response to a row action.
// Record is nil when the endpoint only reports a success flag.
type ActionResult struct {
	Record  Record
	Success bool
}

// Level classifies notifications.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a transient message for the toast collaborator.
type Notification struct {
	Level    Level  `json:"level"`
	Resource string `json:"resource"`
	RecordID string `json:"record_id,omitempty"`
	Action   string `json:"action,omitempty"`
	Message  string `json:"message"`
	// Viewer is the user whose action produced the notification. Empty means everyone.
	Viewer string `json:"viewer,omitempty"`
}

// Status names the mutually exclusive render states of a view.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusError     Status = "error"
	StatusEmpty     Status = "empty"
	StatusNoResults Status = "no_results"
	StatusReady     Status = "ready"
)

// PageInfo describes the current page of a computed view.
type PageInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// Snapshot is the derived, read-only state handed to renderers.
type Snapshot struct {
	Resource  string      `json:"resource"`
	Records   []Record    `json:"records"`
	Total     int         `json:"total"`
	Matched   int         `json:"matched"`
	Page      PageInfo    `json:"page"`
	Filter    FilterState `json:"filter"`
	Sort      SortState   `json:"sort"`
	Loading   bool        `json:"loading"`
	Status    Status      `json:"status"`
	Error     string      `json:"error,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
	Busy      []string    `json:"busy,omitempty"`
}
