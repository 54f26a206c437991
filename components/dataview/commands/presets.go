package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dataview "github.com/goliatone/go-dataview/components/dataview"
)

// SavePresetInput captures the filter/sort combination a viewer wants to keep.
// When FromView is set, the preset is built from the view's current state.
type SavePresetInput struct {
	ViewInput
	Preset   dataview.Preset `json:"preset"`
	FromView bool            `json:"from_view"`
}

type presetService interface {
	viewService
	SavePreset(ctx context.Context, viewer dataview.ViewerContext, code string, preset dataview.Preset) error
}

// SavePresetCommand persists per-viewer presets.
type SavePresetCommand struct {
	service   presetService
	telemetry Telemetry
}

// NewSavePresetCommand creates the command.
func NewSavePresetCommand(service presetService, telemetry Telemetry) *SavePresetCommand {
	return &SavePresetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SavePresetInput] = (*SavePresetCommand)(nil)

// Execute stores the preset.
func (c *SavePresetCommand) Execute(ctx context.Context, msg SavePresetInput) error {
	if c.service == nil {
		return errors.New("preset command requires service")
	}
	preset := msg.Preset
	if msg.FromView {
		view, err := openView(ctx, c.service, msg.ViewInput)
		if err != nil {
			return err
		}
		preset.Filter = view.Filter()
		preset.Sort = view.Sort()
	}
	if err := c.service.SavePreset(ctx, msg.Viewer, msg.Resource, preset); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dataview.command.preset_save", map[string]any{
		"resource": msg.Resource,
		"user_id":  msg.Viewer.UserID,
		"preset":   preset.Name,
	})
	return nil
}
