package datatable

import (
	"fmt"
	"html/template"
)

type Header struct {
	Key        string
	Label      string
	Sortable   bool
	Searchable bool
	// Direction is set on the currently sorted column.
	Direction Direction
	SortHref  string
}

// Indicator is the arrow shown next to the sorted column label.
func (h Header) Indicator() string {
	switch h.Direction {
	case Asc:
		return "↑"
	case Desc:
		return "↓"
	}
	return ""
}

type Row struct {
	Cells   []template.HTML
	Actions template.HTML
}

// View is a rendered page, ready for a template.
type View struct {
	Headers       []Header
	SearchColumns []Header
	Rows          []Row
	HasActions    bool

	State      State
	Page       int
	TotalPages int
	TotalRows  int
	HasPrev    bool
	HasNext    bool
	PrevHref   string
	NextHref   string
}

// Render filters, sorts and paginates rows for state s.
func (t *Table[T]) Render(rows []T, s State) View {
	filtered := t.Filter(rows, s)
	sorted := t.Sort(filtered, s.Sort)

	per := t.perPage()
	total := TotalPages(len(sorted), per)
	s.Page = ClampPage(s.Page, total)

	view := View{
		State:      s,
		Page:       s.Page,
		TotalPages: total,
		TotalRows:  len(sorted),
		HasPrev:    s.Page > 1,
		HasNext:    s.Page < total,
		HasActions: t.Actions != nil,
		PrevHref:   s.Prev().Href(),
		NextHref:   s.Next(total).Href(),
	}

	for _, c := range t.Columns {
		h := Header{
			Key:        c.Key,
			Label:      c.Label,
			Sortable:   c.Sortable,
			Searchable: c.Searchable,
		}
		if s.Sort != nil && s.Sort.Key == c.Key && c.Sortable {
			h.Direction = s.Sort.Direction
		}
		if c.Sortable {
			h.SortHref = t.ToggleSort(s, c.Key).Href()
		}
		view.Headers = append(view.Headers, h)
		if c.Searchable {
			view.SearchColumns = append(view.SearchColumns, h)
		}
	}

	for _, row := range Paginate(sorted, s.Page, per) {
		r := Row{Cells: make([]template.HTML, 0, len(t.Columns))}
		for _, c := range t.Columns {
			r.Cells = append(r.Cells, t.cell(c, row))
		}
		if t.Actions != nil {
			r.Actions = t.Actions(row)
		}
		view.Rows = append(view.Rows, r)
	}
	return view
}

func (t *Table[T]) cell(c Column[T], row T) template.HTML {
	if c.Render != nil {
		return c.Render(row)
	}
	v := t.value(c, row)
	if isNil(v) {
		return ""
	}
	return template.HTML(template.HTMLEscapeString(fmt.Sprint(deref(v))))
}
