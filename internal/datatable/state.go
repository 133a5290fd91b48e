package datatable

import (
	"net/url"
	"strconv"
)

// State is the user-controlled part of a table: page, sort and search.
type State struct {
	Page         int
	Sort         *SortConfig
	SearchColumn string
	SearchText   string
}

// WithSearchColumn selects a search column and clears the search text.
func (s State) WithSearchColumn(key string) State {
	s.SearchColumn = key
	s.SearchText = ""
	return s
}

func (s State) WithSearchText(text string) State {
	s.SearchText = text
	return s
}

func (s State) WithPage(page int) State {
	s.Page = page
	return s
}

// Next advances one page without passing totalPages.
func (s State) Next(totalPages int) State {
	s.Page = ClampPage(s.Page+1, totalPages)
	return s
}

func (s State) Prev() State {
	s.Page = max(s.Page-1, 1)
	return s
}

// ParseState reads page, sort, dir, search_col and q. When prev_col names
// another column the search column was just switched and q is dropped.
func ParseState(q url.Values) State {
	s := State{Page: 1}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		s = s.WithPage(p)
	}
	if key := q.Get("sort"); key != "" {
		dir := Direction(q.Get("dir"))
		if dir != Desc {
			dir = Asc
		}
		s.Sort = &SortConfig{Key: key, Direction: dir}
	}
	s = s.WithSearchColumn(q.Get("search_col"))
	if s.SearchColumn == "" {
		return s
	}
	if prev := q.Get("prev_col"); prev != "" && prev != s.SearchColumn {
		return s
	}
	return s.WithSearchText(q.Get("q"))
}

// Query encodes the state back into query parameters, omitting defaults.
func (s State) Query() url.Values {
	q := url.Values{}
	if s.Page > 1 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	if s.Sort != nil {
		q.Set("sort", s.Sort.Key)
		q.Set("dir", string(s.Sort.Direction))
	}
	if s.SearchColumn != "" {
		q.Set("search_col", s.SearchColumn)
		if s.SearchText != "" {
			q.Set("q", s.SearchText)
		}
	}
	return q
}

// Href returns "?<query>" or "?" for the default state.
func (s State) Href() string {
	return "?" + s.Query().Encode()
}
