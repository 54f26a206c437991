package dataview

import (
	"errors"
	"fmt"
)

var (
	ErrRecordBusy      = errors.New("dataview: an action is already in flight for this record")
	ErrRecordNotFound  = errors.New("dataview: record not found")
	ErrStaleResponse   = errors.New("dataview: response superseded by a newer load")
	ErrViewClosed      = errors.New("dataview: view is closed")
	ErrUnknownResource = errors.New("dataview: resource not registered")
	ErrForbidden       = errors.New("dataview: viewer cannot access resource")
	ErrFieldNotAllowed = errors.New("dataview: field not editable by this action")

	errMissingSource   = errors.New("dataview: record source not configured")
	errMissingExecutor = errors.New("dataview: action executor not configured")
	errMissingID       = errors.New("dataview: record id is required")
	errMissingAction   = errors.New("dataview: action name is required")
)

// FetchError reports a failed load. The view stays usable and the load can be retried.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("dataview: load %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ActionError reports a failed row action. The record is left unchanged.
type ActionError struct {
	Resource string
	RecordID string
	Action   string
	Err      error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("dataview: %s %s/%s: %v", e.Action, e.Resource, e.RecordID, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }
