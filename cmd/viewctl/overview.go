package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	dataview "github.com/goliatone/go-dataview/components/dataview"
)

type overviewCmd struct {
	Resources []string `arg:"" optional:"" help:"Resource codes (default: every resource the viewer may open)."`
}

func (cmd *overviewCmd) Run(ctx context.Context, g *Globals) error {
	s, err := g.session()
	if err != nil {
		return err
	}
	views, err := s.service.LoadAll(ctx, s.viewer, cmd.Resources...)
	if err != nil {
		return err
	}
	return writeOverview(os.Stdout, views, s.viewer.Locale)
}

func writeOverview(w io.Writer, views []*dataview.View, locale string) error {
	rows := make([][]string, 0, len(views))
	for _, view := range views {
		res := view.Resource()
		snap := view.Snapshot()
		rows = append(rows, []string{res.Code, res.NameForLocale(locale), fmt.Sprint(snap.Total), string(snap.Status)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("Resource", "Name", "Records", "Status").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.String())
	return err
}
