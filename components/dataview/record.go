package dataview

import (
	"fmt"
	"strconv"
	"strings"
)

const defaultIDField = "id"

// Record is one fetched entity (product, order, user, plan) as an opaque field mapping.
type Record map[string]any

// Field resolves a field by name. Dotted names walk nested objects.
func (r Record) Field(name string) (any, bool) {
	if r == nil || name == "" {
		return nil, false
	}
	if v, ok := r[name]; ok {
		return v, true
	}
	if !strings.Contains(name, ".") {
		return nil, false
	}
	var current any = map[string]any(r)
	for _, part := range strings.Split(name, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			current = next
		case Record:
			next, ok := node[part]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, true
}

// ID returns the normalized identifier stored under idField.
func (r Record) ID(idField string) string {
	if idField == "" {
		idField = defaultIDField
	}
	v, ok := r.Field(idField)
	if !ok || v == nil {
		return ""
	}
	return formatScalar(v)
}

// Clone returns a shallow copy so patches never alias the fetched map.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// withPatch returns a copy of r with the patch applied; the id field is never overwritten.
func (r Record) withPatch(patch map[string]any, idField string) Record {
	out := r.Clone()
	if out == nil {
		out = Record{}
	}
	if idField == "" {
		idField = defaultIDField
	}
	for k, v := range patch {
		if k == idField {
			continue
		}
		out[k] = v
	}
	return out
}

func formatScalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

func cloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
