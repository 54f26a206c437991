package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"gopkg.in/yaml.v3"

	dataview "github.com/goliatone/go-dataview/components/dataview"
)

type showCmd struct {
	Resource string `arg:"" help:"Resource code."`
	ID       string `arg:"" help:"Record id."`
}

func (cmd *showCmd) Run(ctx context.Context, g *Globals) error {
	s, err := g.session()
	if err != nil {
		return err
	}
	record, err := s.service.Record(ctx, s.viewer, cmd.Resource, cmd.ID)
	if err != nil {
		return err
	}
	return writeRecord(os.Stdout, record)
}

type actionCmd struct {
	Resource string            `arg:"" help:"Resource code."`
	ID       string            `arg:"" help:"Record id."`
	Action   string            `arg:"" help:"Configured action name (set_status, toggle_active, ...)."`
	Set      map[string]string `help:"Field values sent with the action as field=value (repeatable)."`
}

func (cmd *actionCmd) Run(ctx context.Context, g *Globals) error {
	s, err := g.session()
	if err != nil {
		return err
	}
	view, err := loadedView(ctx, s, cmd.Resource)
	if err != nil {
		return err
	}
	action, ok := view.Resource().Action(cmd.Action)
	if !ok {
		return fmt.Errorf("viewctl: %s has no action %q", cmd.Resource, cmd.Action)
	}
	if err := view.PerformRowAction(ctx, cmd.ID, action.WithValues(parseValues(cmd.Set))); err != nil {
		return err
	}
	if record, ok := findRecord(view, cmd.ID); ok {
		return writeRecord(os.Stdout, record)
	}
	return nil
}

// confirm asks before destructive calls. Swapped out in tests.
var confirm = func(message string) (bool, error) {
	ok := false
	if err := survey.AskOne(&survey.Confirm{Message: message}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

type deleteCmd struct {
	Resource string `arg:"" help:"Resource code."`
	ID       string `arg:"" help:"Record id."`
	Yes      bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (cmd *deleteCmd) Run(ctx context.Context, g *Globals) error {
	s, err := g.session()
	if err != nil {
		return err
	}
	view, err := loadedView(ctx, s, cmd.Resource)
	if err != nil {
		return err
	}
	if !cmd.Yes {
		ok, err := confirm(fmt.Sprintf("Delete %s %s?", view.Resource().NameForLocale(s.viewer.Locale), cmd.ID))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stdout, "aborted")
			return nil
		}
	}
	if err := view.DeleteRecord(ctx, cmd.ID); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Deleted %s %s\n", cmd.Resource, cmd.ID)
	return nil
}

func loadedView(ctx context.Context, s *session, code string) (*dataview.View, error) {
	snap, err := s.service.Snapshot(ctx, s.viewer, code)
	if err != nil {
		return nil, err
	}
	if snap.Status == dataview.StatusError {
		return nil, fmt.Errorf("viewctl: load %s: %s", code, snap.Error)
	}
	return s.service.Open(ctx, s.viewer, code)
}

func findRecord(view *dataview.View, id string) (dataview.Record, bool) {
	idField := view.Resource().IDField
	for _, record := range view.Records() {
		if record.ID(idField) == id {
			return record, true
		}
	}
	return nil, false
}

func writeRecord(w io.Writer, record dataview.Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(map[string]any(record))
}
