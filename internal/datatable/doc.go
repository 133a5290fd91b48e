// Package datatable filters, sorts and paginates an arbitrary row set for
// server-rendered list pages.
//
// A Table is generic over its row type. Columns expose typed accessors
// instead of field names, so rows can be any struct:
//
//	table := datatable.Table[entities.School]{
//		Columns: []datatable.Column[entities.School]{
//			{Key: "school_id", Label: "School ID", Sortable: true, Searchable: true,
//				Value: func(s entities.School) any { return s.SchoolID }},
//		},
//	}
//	view := table.Render(schools, datatable.ParseState(c.Request.URL.Query()))
//
// Rendering applies, in order: search filter, stable sort, pagination. The
// requested page is clamped into the range of available pages. State travels
// in the query string (page, sort, dir, search_col, q).
package datatable
