package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
)

// RowActionInput runs a configured row action, optionally carrying field values
// (for example the new status chosen in a dropdown).
type RowActionInput struct {
	ViewInput
	RecordID string         `json:"record_id"`
	Action   string         `json:"action"`
	Values   map[string]any `json:"values,omitempty"`
}

// RowActionCommand resolves the action against the resource configuration and runs it.
type RowActionCommand struct {
	service   viewService
	telemetry Telemetry
}

// NewRowActionCommand creates the command.
func NewRowActionCommand(service viewService, telemetry Telemetry) *RowActionCommand {
	return &RowActionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RowActionInput] = (*RowActionCommand)(nil)

// Execute performs the row action.
func (c *RowActionCommand) Execute(ctx context.Context, msg RowActionInput) error {
	if msg.RecordID == "" {
		return errors.New("row action command requires record id")
	}
	view, err := openView(ctx, c.service, msg.ViewInput)
	if err != nil {
		return err
	}
	action, ok := view.Resource().Action(msg.Action)
	if !ok {
		return fmt.Errorf("row action %q is not configured for %s", msg.Action, msg.Resource)
	}
	action = action.WithValues(msg.Values)
	if err := view.PerformRowAction(ctx, msg.RecordID, action); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dataview.command.row_action", map[string]any{
		"resource":  msg.Resource,
		"record_id": msg.RecordID,
		"action":    action.Name,
	})
	return nil
}

// DeleteRecordInput identifies the record to delete.
type DeleteRecordInput struct {
	ViewInput
	RecordID string `json:"record_id"`
}

// DeleteRecordCommand deletes a record through the view.
type DeleteRecordCommand struct {
	service   viewService
	telemetry Telemetry
}

// NewDeleteRecordCommand creates the command.
func NewDeleteRecordCommand(service viewService, telemetry Telemetry) *DeleteRecordCommand {
	return &DeleteRecordCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteRecordInput] = (*DeleteRecordCommand)(nil)

// Execute deletes the record.
func (c *DeleteRecordCommand) Execute(ctx context.Context, msg DeleteRecordInput) error {
	if msg.RecordID == "" {
		return errors.New("delete command requires record id")
	}
	view, err := openView(ctx, c.service, msg.ViewInput)
	if err != nil {
		return err
	}
	if err := view.DeleteRecord(ctx, msg.RecordID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dataview.command.delete", map[string]any{
		"resource":  msg.Resource,
		"record_id": msg.RecordID,
	})
	return nil
}
