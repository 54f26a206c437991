package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	dataview "github.com/goliatone/go-dataview/components/dataview"
)

type listCmd struct {
	Resource string            `arg:"" help:"Resource code (products, orders, ...)."`
	Search   string            `short:"s" help:"Free text search."`
	Filter   map[string]string `short:"f" help:"Equality filter as field=value (repeatable)."`
	Sort     string            `help:"Sort field."`
	Desc     bool              `help:"Sort descending."`
	Page     int               `default:"1" help:"1-based page number."`
	Output   string            `short:"o" enum:"table,json,yaml" default:"table" help:"Output format (table, json, yaml)."`
}

func (cmd *listCmd) Run(ctx context.Context, g *Globals) error {
	s, err := g.session()
	if err != nil {
		return err
	}
	view, err := s.service.Open(ctx, s.viewer, cmd.Resource)
	if err != nil {
		return err
	}
	cmd.apply(view)

	snap, err := s.service.Snapshot(ctx, s.viewer, cmd.Resource)
	if err != nil {
		return err
	}
	if snap.Status == dataview.StatusError {
		return fmt.Errorf("viewctl: load %s: %s", cmd.Resource, snap.Error)
	}
	return writeSnapshot(os.Stdout, cmd.Output, view.Resource(), snap, s.viewer.Locale)
}

func (cmd *listCmd) apply(view *dataview.View) {
	if cmd.Search != "" {
		view.SetSearchText(cmd.Search)
	}
	for field, raw := range cmd.Filter {
		view.SetEqualityFilter(field, parseValue(raw))
	}
	if cmd.Sort != "" {
		view.SetSort(cmd.Sort)
		if cmd.Desc {
			view.SetSort(cmd.Sort)
		}
	}
	view.SetPage(cmd.Page)
}

func writeSnapshot(w io.Writer, format string, resource dataview.ResourceConfig, snap dataview.Snapshot, locale string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(snap)
	}
	fmt.Fprintln(w, renderTable(resource, snap, locale))
	fmt.Fprintln(w, footer(snap))
	return nil
}

// parseValue reads a CLI value as a YAML scalar so numbers and booleans keep their type.
func parseValue(raw string) any {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return raw
	}
	switch v.(type) {
	case map[string]any, []any:
		return raw
	}
	return v
}

func parseValues(raw map[string]string) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = parseValue(v)
	}
	return out
}
