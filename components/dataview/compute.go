package dataview

var defaultSearchFields = []string{"name", "description"}

// ComputeView derives the ordered sequence rendered for the given filter and sort state.
// The source slice and its records are never modified. Empty searchFields fall back to
// name and description.
func ComputeView(records []Record, filter FilterState, sort SortState, searchFields []string) []Record {
	if len(searchFields) == 0 {
		searchFields = defaultSearchFields
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if filter.matches(r, searchFields) {
			out = append(out, r)
		}
	}
	sortRecords(out, sort)
	return out
}

// Paginate slices a computed view. page is 1-based; a non-positive size returns everything.
func Paginate(records []Record, page, size int) ([]Record, PageInfo) {
	if size <= 0 {
		return records, PageInfo{Page: 1, PageSize: len(records), TotalPages: 1}
	}
	total := (len(records) + size - 1) / size
	if total == 0 {
		total = 1
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	start := (page - 1) * size
	end := start + size
	if start > len(records) {
		start = len(records)
	}
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], PageInfo{Page: page, PageSize: size, TotalPages: total}
}
