package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	dataview "github.com/goliatone/go-dataview/components/dataview"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func renderTable(resource dataview.ResourceConfig, snap dataview.Snapshot, locale string) string {
	switch snap.Status {
	case dataview.StatusEmpty:
		return mutedStyle.Render(fmt.Sprintf("No %s yet.", strings.ToLower(resource.NameForLocale(locale))))
	case dataview.StatusNoResults:
		return mutedStyle.Render("No records match the current search or filters.")
	}

	headers := make([]string, 0, len(resource.Columns))
	for _, col := range resource.Columns {
		label := col.LabelForLocale(locale)
		if snap.Sort.Field == col.Field {
			if snap.Sort.Direction == dataview.Descending {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		headers = append(headers, label)
	}
	rows := make([][]string, 0, len(snap.Records))
	for _, record := range snap.Records {
		row := make([]string, len(resource.Columns))
		for i, col := range resource.Columns {
			value, _ := record.Field(col.Field)
			row[i] = display(value)
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

func footer(snap dataview.Snapshot) string {
	return mutedStyle.Render(fmt.Sprintf("page %d/%d · %d of %d records", snap.Page.Page, max(snap.Page.TotalPages, 1), snap.Matched, snap.Total))
}

func display(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%.2f", t)
	case map[string]any, []any:
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprint(t)
	}
}
