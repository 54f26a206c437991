package dataview

import (
	"strings"
)

// FilterState holds the search text and the active equality filters.
type FilterState struct {
	Search   string         `json:"search,omitempty" yaml:"search,omitempty"`
	Equality map[string]any `json:"equality,omitempty" yaml:"equality,omitempty"`
}

func (f FilterState) clone() FilterState {
	out := FilterState{Search: f.Search}
	if len(f.Equality) > 0 {
		out.Equality = make(map[string]any, len(f.Equality))
		for k, v := range f.Equality {
			out.Equality[k] = v
		}
	}
	return out
}

// IsZero reports whether no search text and no equality filter is active.
func (f FilterState) IsZero() bool {
	return f.Search == "" && len(f.Equality) == 0
}

func (f FilterState) matches(r Record, searchFields []string) bool {
	return matchesSearch(r, f.Search, searchFields) && matchesEquality(r, f.Equality)
}

// matchesSearch is a case-insensitive substring match over the searchable fields.
func matchesSearch(r Record, text string, fields []string) bool {
	if text == "" {
		return true
	}
	query := strings.ToLower(text)
	for _, field := range fields {
		v, _ := r.Field(field)
		if strings.Contains(strings.ToLower(formatScalar(v)), query) {
			return true
		}
	}
	return false
}

// matchesEquality requires every active filter to match; absent fields compare as empty.
func matchesEquality(r Record, filters map[string]any) bool {
	for field, want := range filters {
		got, _ := r.Field(field)
		if !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	an, aNum := toNumber(a)
	bn, bNum := toNumber(b)
	if aNum && bNum {
		return an == bn
	}
	return formatScalar(a) == formatScalar(b)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
