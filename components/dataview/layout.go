package dataview

// applyColumnOrder moves the listed fields first, keeping the rest in configured order.
// Unknown fields in order are ignored.
func applyColumnOrder(columns []Column, order []string) []Column {
	if len(order) == 0 {
		return columns
	}
	index := make(map[string]Column, len(columns))
	for _, c := range columns {
		index[c.Field] = c
	}
	result := make([]Column, 0, len(columns))
	seen := make(map[string]struct{}, len(order))
	for _, field := range order {
		if c, ok := index[field]; ok {
			if _, dup := seen[field]; dup {
				continue
			}
			result = append(result, c)
			seen[field] = struct{}{}
		}
	}
	for _, c := range columns {
		if _, ok := seen[c.Field]; !ok {
			result = append(result, c)
		}
	}
	return result
}
