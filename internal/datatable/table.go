package datatable

import (
	"fmt"
	"html/template"
	"slices"
	"strings"
)

const DefaultItemsPerPage = 10

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type SortConfig struct {
	Key       string
	Direction Direction
}

// Column describes one table column. Value is used for search, sort and the
// default cell text; Render, when set, replaces the cell content.
type Column[T any] struct {
	Key        string
	Label      string
	Sortable   bool
	Searchable bool
	Value      func(T) any
	Render     func(T) template.HTML
}

// Table describes how rows of T are searched, sorted, paged and rendered.
// Actions, when set, adds a trailing column per row.
type Table[T any] struct {
	Columns      []Column[T]
	ItemsPerPage int
	Actions      func(T) template.HTML
}

func (t *Table[T]) perPage() int {
	if t.ItemsPerPage <= 0 {
		return DefaultItemsPerPage
	}
	return t.ItemsPerPage
}

func (t *Table[T]) column(key string) (Column[T], bool) {
	for _, c := range t.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

func (t *Table[T]) value(c Column[T], row T) any {
	if c.Value == nil {
		return nil
	}
	return c.Value(row)
}

// Filter keeps rows whose search column value contains the search text,
// case-insensitively. Rows are returned untouched when no searchable column
// or no text is set.
func (t *Table[T]) Filter(rows []T, s State) []T {
	if s.SearchColumn == "" || s.SearchText == "" {
		return rows
	}
	col, ok := t.column(s.SearchColumn)
	if !ok || !col.Searchable {
		return rows
	}

	needle := strings.ToLower(s.SearchText)
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		v := t.value(col, row)
		if isNil(v) {
			continue
		}
		if strings.Contains(strings.ToLower(fmt.Sprint(deref(v))), needle) {
			out = append(out, row)
		}
	}
	return out
}

// Sort returns a stably sorted copy of rows. Descending order negates the
// comparator, so equal rows keep their input order in both directions.
func (t *Table[T]) Sort(rows []T, sc *SortConfig) []T {
	if sc == nil {
		return rows
	}
	col, ok := t.column(sc.Key)
	if !ok || !col.Sortable {
		return rows
	}

	sign := 1
	if sc.Direction == Desc {
		sign = -1
	}

	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b T) int {
		return sign * Compare(t.value(col, a), t.value(col, b))
	})
	return out
}

// TotalPages is ceil(n / perPage).
func TotalPages(n, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultItemsPerPage
	}
	return (n + perPage - 1) / perPage
}

// ClampPage moves page into [1, max(totalPages, 1)].
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns the rows of one 1-based page.
func Paginate[T any](rows []T, page, perPage int) []T {
	if perPage <= 0 {
		perPage = DefaultItemsPerPage
	}
	start := (page - 1) * perPage
	if page < 1 || start >= len(rows) {
		return nil
	}
	end := min(start+perPage, len(rows))
	return rows[start:end]
}

// ToggleSort cycles unsorted, ascending, descending on one column. Selecting
// another column starts again at ascending. Non-sortable columns are ignored.
func (t *Table[T]) ToggleSort(s State, key string) State {
	col, ok := t.column(key)
	if !ok || !col.Sortable {
		return s
	}

	switch {
	case s.Sort == nil || s.Sort.Key != key:
		s.Sort = &SortConfig{Key: key, Direction: Asc}
	case s.Sort.Direction == Asc:
		s.Sort = &SortConfig{Key: key, Direction: Desc}
	default:
		s.Sort = nil
	}
	return s
}
