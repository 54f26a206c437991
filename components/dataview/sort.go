package dataview

import (
	"cmp"
	"slices"
	"strings"
)

// Direction is the sort direction of the active sort field.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState names the active sort field. An empty Field keeps fetch order.
type SortState struct {
	Field     string    `json:"field,omitempty" yaml:"field,omitempty"`
	Direction Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// Toggle returns the next sort state for a header click on field.
func (s SortState) Toggle(field string) SortState {
	if field == "" {
		return SortState{}
	}
	if s.Field == field {
		if s.Direction == Descending {
			return SortState{Field: field, Direction: Ascending}
		}
		return SortState{Field: field, Direction: Descending}
	}
	return SortState{Field: field, Direction: Ascending}
}

func sortRecords(records []Record, state SortState) {
	if state.Field == "" || len(records) < 2 {
		return
	}
	desc := state.Direction == Descending
	slices.SortStableFunc(records, func(a, b Record) int {
		av, _ := a.Field(state.Field)
		bv, _ := b.Field(state.Field)
		c := compareValues(av, bv)
		if desc {
			return -c
		}
		return c
	})
}

// compareValues is a total order: numbers sort before everything else and
// compare numerically, the rest compare as strings. A missing value sorts as zero.
func compareValues(a, b any) int {
	ar, an, as := sortKey(a)
	br, bn, bs := sortKey(b)
	if ar != br {
		return cmp.Compare(ar, br)
	}
	if ar == 0 {
		return cmp.Compare(an, bn)
	}
	return strings.Compare(as, bs)
}

func sortKey(v any) (rank int, num float64, str string) {
	if v == nil {
		return 0, 0, ""
	}
	if n, ok := toNumber(v); ok {
		return 0, n, ""
	}
	return 1, 0, formatScalar(v)
}
