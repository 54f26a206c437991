package dataview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
)

var errActionRejected = errors.New("backend reported failure")

// SetField builds the common "change one field" action (status changes, toggles).
func SetField(field string, value any) RowAction {
	return RowAction{
		Name:   "set_" + field,
		Method: http.MethodPatch,
		Fields: []string{field},
		Body:   map[string]any{field: value},
		Patch:  map[string]any{field: value},
	}
}

// DeleteAction removes the record on success.
func DeleteAction() RowAction {
	return RowAction{Name: "delete", Method: http.MethodDelete, Deletes: true}
}

// WithValues returns a copy of the action whose body and patch carry values.
func (a RowAction) WithValues(values map[string]any) RowAction {
	if len(values) == 0 {
		return a
	}
	out := a
	out.Body = mergeMaps(a.Body, values)
	out.Patch = mergeMaps(a.Patch, values)
	return out
}

// checkFields rejects values for keys outside the action's declared fields.
func (a RowAction) checkFields() error {
	if a.Fields == nil {
		return nil
	}
	for _, values := range []map[string]any{a.Body, a.Patch} {
		for key := range values {
			if !slices.Contains(a.Fields, key) {
				return fmt.Errorf("%w: %q", ErrFieldNotAllowed, key)
			}
		}
	}
	return nil
}

// Action looks up a configured row action by name.
func (c ResourceConfig) Action(name string) (RowAction, bool) {
	for _, action := range c.Actions {
		if action.Name == name {
			return action, true
		}
	}
	return RowAction{}, false
}

// PerformRowAction runs action against the record identified by id. On success the local
// record is patched by id without refetching; on failure it is left unchanged.
// A second request for an id that already has an action in flight returns ErrRecordBusy.
func (v *View) PerformRowAction(ctx context.Context, id string, action RowAction) error {
	if id == "" {
		return errMissingID
	}
	if action.Name == "" {
		return errMissingAction
	}
	resource := v.opts.Resource

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	if v.opts.Executor == nil {
		v.mu.Unlock()
		return errMissingExecutor
	}
	if _, busy := v.busy[id]; busy {
		v.mu.Unlock()
		v.opts.Logger.Debug("row action rejected, record busy", "resource", resource.Code, "id", id, "action", action.Name)
		return ErrRecordBusy
	}
	if v.indexOf(id) < 0 {
		v.mu.Unlock()
		return &ActionError{Resource: resource.Code, RecordID: id, Action: action.Name, Err: ErrRecordNotFound}
	}
	v.busy[id] = struct{}{}
	v.mu.Unlock()

	result, err := v.execute(ctx, id, action)

	v.mu.Lock()
	delete(v.busy, id)
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	if err != nil {
		v.mu.Unlock()
		actionErr := &ActionError{Resource: resource.Code, RecordID: id, Action: action.Name, Err: err}
		v.opts.Logger.Warn("row action failed", "resource", resource.Code, "id", id, "action", action.Name, "error", err)
		v.notify(ctx, Notification{
			Level:    LevelError,
			Resource: resource.Code,
			RecordID: id,
			Action:   action.Name,
			Message:  actionErr.Error(),
		})
		v.opts.Telemetry.Record(ctx, "dataview.row.action_error", map[string]any{
			"resource": resource.Code,
			"id":       id,
			"action":   action.Name,
		})
		return actionErr
	}
	v.reconcile(id, action, result)
	v.mu.Unlock()

	v.notify(ctx, Notification{
		Level:    LevelSuccess,
		Resource: resource.Code,
		RecordID: id,
		Action:   action.Name,
		Message:  successMessage(resource, id, action),
	})
	v.opts.Telemetry.Record(ctx, "dataview.row.action", map[string]any{
		"resource": resource.Code,
		"id":       id,
		"action":   action.Name,
	})
	return nil
}

// DeleteRecord runs the resource's delete action (or a plain DELETE) and drops the record.
func (v *View) DeleteRecord(ctx context.Context, id string) error {
	action, ok := v.opts.Resource.Action("delete")
	if !ok {
		action = DeleteAction()
	}
	action.Deletes = true
	return v.PerformRowAction(ctx, id, action)
}

func (v *View) execute(ctx context.Context, id string, action RowAction) (ActionResult, error) {
	if err := action.checkFields(); err != nil {
		return ActionResult{}, err
	}
	if v.opts.Validator != nil && len(action.Patch) > 0 {
		if err := v.opts.Validator.ValidatePatch(v.opts.Resource, action.Patch); err != nil {
			return ActionResult{}, err
		}
	}
	result, err := v.opts.Executor.Execute(ctx, v.opts.Resource, id, action)
	if err != nil {
		return ActionResult{}, err
	}
	if !result.Success && result.Record == nil {
		return ActionResult{}, errActionRejected
	}
	return result, nil
}

// reconcile applies a confirmed action by id. The record may have been replaced or
// dropped by a reload while the call was in flight; then there is nothing to patch.
// Callers hold v.mu.
func (v *View) reconcile(id string, action RowAction, result ActionResult) {
	idx := v.indexOf(id)
	if idx < 0 {
		return
	}
	if action.Deletes {
		next := make([]Record, 0, len(v.records)-1)
		next = append(next, v.records[:idx]...)
		v.records = append(next, v.records[idx+1:]...)
		return
	}
	patch := mergeMaps(action.Patch, result.Record)
	for _, field := range action.Toggle {
		if _, ok := patch[field]; ok {
			continue
		}
		current, _ := v.records[idx].Field(field)
		flag, _ := current.(bool)
		if patch == nil {
			patch = map[string]any{}
		}
		patch[field] = !flag
	}
	if len(patch) == 0 {
		return
	}
	v.records[idx] = v.records[idx].withPatch(patch, v.opts.Resource.IDField)
}

func successMessage(resource ResourceConfig, id string, action RowAction) string {
	label := action.Label
	if label == "" {
		label = action.Name
	}
	if action.Deletes {
		return fmt.Sprintf("%s %s deleted", resource.Name, id)
	}
	return fmt.Sprintf("%s %s: %s succeeded", resource.Name, id, label)
}

func mergeMaps(base map[string]any, overlay map[string]any) map[string]any {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
