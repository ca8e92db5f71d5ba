package listview

import (
	"slices"
	"strings"
)

// VisibleRows returns copies of the records on the current page after
// filtering and sorting.
func (e *Engine) VisibleRows() []Record {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rows := e.matching()
	start := (e.page - 1) * e.cfg.PageSize
	if start >= len(rows) {
		return []Record{}
	}
	end := min(start+e.cfg.PageSize, len(rows))
	return cloneAll(rows[start:end])
}

// PageInfo reports the current page, page count and number of matching records.
func (e *Engine) PageInfo() PageInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := len(e.matching())
	return PageInfo{
		CurrentPage:   e.page,
		TotalPages:    e.totalPages(n),
		TotalMatching: n,
	}
}

// matching returns the filtered, sorted view. The slice shares records with
// e.records. Callers must hold e.mu.
func (e *Engine) matching() []Record {
	rows := make([]Record, 0, len(e.records))
	for _, r := range e.records {
		if e.matches(r) {
			rows = append(rows, r)
		}
	}

	if e.sort.Field == "" {
		return rows
	}

	field, desc := e.sort.Field, e.sort.Direction == Descending
	slices.SortStableFunc(rows, func(a, b Record) int {
		av, bv := a[field], b[field]
		// Missing values go last whatever the direction.
		switch {
		case av == nil && bv == nil:
			return 0
		case av == nil:
			return 1
		case bv == nil:
			return -1
		}
		c := compareValues(av, bv)
		if desc {
			return -c
		}
		return c
	})
	return rows
}

func (e *Engine) matches(r Record) bool {
	for field, query := range e.filters {
		value := Text(r[field])
		if e.exact[field] {
			if !strings.EqualFold(value, query) {
				return false
			}
			continue
		}
		if !strings.Contains(strings.ToLower(value), strings.ToLower(query)) {
			return false
		}
	}
	return true
}

func (e *Engine) totalPages(matching int) int {
	pages := (matching + e.cfg.PageSize - 1) / e.cfg.PageSize
	return max(pages, 1)
}

// clampPage keeps the current page inside [1, totalPages].
// Callers must hold e.mu for writing.
func (e *Engine) clampPage() {
	last := e.totalPages(len(e.matching()))
	if e.page > last {
		e.page = last
	}
	if e.page < 1 {
		e.page = 1
	}
}
