package http

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Sa-tya/shelf-manager/internal/database/booknames"
	"github.com/Sa-tya/shelf-manager/internal/datatable"
	"github.com/Sa-tya/shelf-manager/internal/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"className": entities.ClassName,
	"inc":       func(n int) int { return n + 1 },
}

// LoadTemplates parses the page templates from dir, or the embedded copies
// when dir is empty.
func LoadTemplates(dir string) (*template.Template, error) {
	tmpl := template.New("").Funcs(templateFuncs)
	if dir == "" {
		return tmpl.ParseFS(templateFS, "templates/*.html")
	}
	return tmpl.ParseGlob(dir + "/*.html")
}

// navLinks is the menu shared by every page.
var navLinks = []NavLink{
	{Href: "/", Label: "Books"},
	{Href: "/schools", Label: "Schools"},
	{Href: "/booknames", Label: "Book Names"},
	{Href: "/subjects", Label: "Subjects"},
	{Href: "/publications", Label: "Publications"},
}

type NavLink struct {
	Href  string
	Label string
}

// UIStores are the read sides the list pages render.
type UIStores struct {
	Schools      SchoolStore
	Subjects     SubjectStore
	Publications PublicationStore
	BookNames    BookNameStore
	Books        BookEntryStore
}

type UIController struct {
	stores       UIStores
	itemsPerPage int
	readOnly     bool
}

// NewUIController serves the list pages. With readOnly set the add, edit
// and delete controls are left out.
func NewUIController(stores UIStores, itemsPerPage int, readOnly bool) *UIController {
	return &UIController{stores: stores, itemsPerPage: itemsPerPage, readOnly: readOnly}
}

func (controller *UIController) renderList(c *gin.Context, title, active string, view datatable.View, form *EntityForm, editErr string) {
	if controller.readOnly {
		form = nil
	}
	if form != nil {
		form.CSRF = csrfField(c)
		form.Return = returnQuery(c).Encode()
		form.CancelHref = "?" + form.Return
	}
	errMsg := c.Query("error")
	if editErr != "" {
		errMsg = editErr
	}
	c.HTML(http.StatusOK, "list", gin.H{
		"Title":  title,
		"Active": active,
		"Nav":    navLinks,
		"Table":  view,
		"Form":   form,
		"Notice": c.Query("notice"),
		"Error":  errMsg,
	})
}

// actionsFor renders Edit and Delete on each row of resource, or nothing on
// a read-only site.
func actionsFor[T any](controller *UIController, c *gin.Context, resource string, id func(T) uint) func(T) template.HTML {
	if controller.readOnly {
		return nil
	}
	return func(row T) template.HTML {
		return rowActions(c, resource, id(row))
	}
}

// editTarget loads the row named by ?edit=. A failed lookup becomes a page
// message and the add form is shown instead.
func editTarget[T any](c *gin.Context, resource string, get func(uint) (*T, error)) (*T, string) {
	id := editID(c)
	if id == 0 {
		return nil, ""
	}
	row, err := get(id)
	if err != nil {
		return nil, opMessage(c, lookupError(err, resource), "load "+resource)
	}
	return row, ""
}

func tableState(c *gin.Context) datatable.State {
	return datatable.ParseState(c.Request.URL.Query())
}

func text(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// BooksPage lists every book entry
// GET /
func (controller *UIController) BooksPage(c *gin.Context) {
	entries, err := controller.stores.Books.List()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading books: %s", err.Error())
		return
	}
	form, editErr, err := controller.bookEntryForm(c)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading books: %s", err.Error())
		return
	}

	table := datatable.Table[entities.BookEntry]{
		ItemsPerPage: controller.itemsPerPage,
		Columns: []datatable.Column[entities.BookEntry]{
			{Key: "book_name", Label: "Book Name", Sortable: true, Searchable: true,
				Value: func(b entities.BookEntry) any { return b.BookName }},
			{Key: "subject_name", Label: "Subject", Sortable: true, Searchable: true,
				Value: func(b entities.BookEntry) any { return b.SubjectName }},
			{Key: "publication_name", Label: "Publication", Sortable: true, Searchable: true,
				Value: func(b entities.BookEntry) any { return b.PublicationName }},
			{Key: "class", Label: "Class", Sortable: true, Searchable: true,
				Value: func(b entities.BookEntry) any { return b.Class }},
			{Key: "price", Label: "Price", Sortable: true,
				Value: func(b entities.BookEntry) any { return b.Price }},
			{Key: "quantity", Label: "Quantity", Sortable: true,
				Value: func(b entities.BookEntry) any { return b.Quantity }},
		},
		Actions: actionsFor(controller, c, "books", func(b entities.BookEntry) uint { return b.ID }),
	}
	controller.renderList(c, "Books", "/", table.Render(entries, tableState(c)), form, editErr)
}

// bookEntryForm adds one class of a title, or edits the class, price and
// quantity of an existing entry.
func (controller *UIController) bookEntryForm(c *gin.Context) (*EntityForm, string, error) {
	entry, editErr := editTarget(c, "Book", controller.stores.Books.GetByID)
	if entry != nil {
		form := newEntityForm("book entry", "books", entry.ID,
			selectField("class", "Class", entry.Class, classFormOptions()),
			numberField("price", "Price", formatPrice(entry.Price), "0.01"),
			numberField("quantity", "Quantity", strconv.Itoa(entry.Quantity), "1"),
		)
		if entry.BookName != "" {
			form.Title += ": " + entry.BookName
		}
		return form, "", nil
	}

	titles, err := controller.stores.BookNames.List(booknames.Filter{})
	if err != nil {
		return nil, "", err
	}
	options := make([]FormOption, 0, len(titles))
	for _, t := range titles {
		options = append(options, FormOption{Value: idString(t.ID), Label: t.Name})
	}
	return newEntityForm("book entry", "books", 0,
		selectField("book_name_id", "Book", "", options),
		selectField("class", "Class", "", classFormOptions()),
		numberField("price", "Price", "", "0.01"),
		numberField("quantity", "Quantity", "", "1"),
	), editErr, nil
}

// SchoolsPage lists schools; each name links to the school's booklists
// GET /schools
func (controller *UIController) SchoolsPage(c *gin.Context) {
	schools, err := controller.stores.Schools.List()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading schools: %s", err.Error())
		return
	}

	school, editErr := editTarget(c, "School", controller.stores.Schools.GetByID)
	if school == nil {
		school = &entities.School{}
	}
	form := newEntityForm("school", "schools", school.ID,
		textField("school_id", "School ID", school.SchoolID),
		textField("name", "Name", school.Name),
		textField("city", "Address", school.City),
		textField("contact", "Contact", school.Contact),
		FormField{Name: "email", Label: "Email", Type: "email", Value: school.Email},
	)

	table := datatable.Table[entities.School]{
		ItemsPerPage: controller.itemsPerPage,
		Columns: []datatable.Column[entities.School]{
			{Key: "school_id", Label: "School ID", Sortable: true, Searchable: true,
				Value: func(s entities.School) any { return s.SchoolID }},
			{Key: "name", Label: "Name", Sortable: true, Searchable: true,
				Value: func(s entities.School) any { return s.Name },
				Render: func(s entities.School) template.HTML {
					href := "/schools/" + url.PathEscape(s.SchoolID) + "/booklist"
					return template.HTML(fmt.Sprintf(`<a href="%s">%s</a>`, template.HTMLEscapeString(href), text(s.Name)))
				}},
			{Key: "city", Label: "Address", Sortable: true, Searchable: true,
				Value: func(s entities.School) any { return s.City }},
			{Key: "contact", Label: "Contact", Searchable: true,
				Value: func(s entities.School) any { return s.Contact }},
			{Key: "email", Label: "Email", Searchable: true,
				Value: func(s entities.School) any { return s.Email }},
		},
		Actions: actionsFor(controller, c, "schools", func(s entities.School) uint { return s.ID }),
	}
	controller.renderList(c, "Schools", "/schools", table.Render(schools, tableState(c)), form, editErr)
}

// SubjectsPage lists subjects
// GET /subjects
func (controller *UIController) SubjectsPage(c *gin.Context) {
	list, err := controller.stores.Subjects.List()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading subjects: %s", err.Error())
		return
	}

	subject, editErr := editTarget(c, "Subject", controller.stores.Subjects.GetByID)
	if subject == nil {
		subject = &entities.Subject{}
	}
	form := newEntityForm("subject", "subjects", subject.ID,
		textField("subid", "Subject ID", subject.SubID),
		textField("name", "Name", subject.Name),
	)

	table := datatable.Table[entities.Subject]{
		ItemsPerPage: controller.itemsPerPage,
		Columns: []datatable.Column[entities.Subject]{
			{Key: "subid", Label: "Subject ID", Sortable: true, Searchable: true,
				Value: func(s entities.Subject) any { return s.SubID }},
			{Key: "name", Label: "Name", Sortable: true, Searchable: true,
				Value: func(s entities.Subject) any { return s.Name }},
		},
		Actions: actionsFor(controller, c, "subjects", func(s entities.Subject) uint { return s.ID }),
	}
	controller.renderList(c, "Subjects", "/subjects", table.Render(list, tableState(c)), form, editErr)
}

// PublicationsPage lists publications
// GET /publications
func (controller *UIController) PublicationsPage(c *gin.Context) {
	list, err := controller.stores.Publications.List()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading publications: %s", err.Error())
		return
	}

	pub, editErr := editTarget(c, "Publication", controller.stores.Publications.GetByID)
	if pub == nil {
		pub = &entities.Publication{}
	}
	form := newEntityForm("publication", "publications", pub.ID,
		textField("pubid", "Publication ID", pub.PubID),
		textField("name", "Name", pub.Name),
		textField("city", "City", pub.City),
	)

	table := datatable.Table[entities.Publication]{
		ItemsPerPage: controller.itemsPerPage,
		Columns: []datatable.Column[entities.Publication]{
			{Key: "pubid", Label: "Publication ID", Sortable: true, Searchable: true,
				Value: func(p entities.Publication) any { return p.PubID }},
			{Key: "name", Label: "Name", Sortable: true, Searchable: true,
				Value: func(p entities.Publication) any { return p.Name }},
			{Key: "city", Label: "City", Sortable: true, Searchable: true,
				Value: func(p entities.Publication) any { return p.City }},
		},
		Actions: actionsFor(controller, c, "publications", func(p entities.Publication) uint { return p.ID }),
	}
	controller.renderList(c, "Publications", "/publications", table.Render(list, tableState(c)), form, editErr)
}

// BookNamesPage lists catalog titles
// GET /booknames
func (controller *UIController) BookNamesPage(c *gin.Context) {
	list, err := controller.stores.BookNames.List(booknames.Filter{})
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading book names: %s", err.Error())
		return
	}
	form, editErr, err := controller.bookNameForm(c)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading book names: %s", err.Error())
		return
	}

	table := datatable.Table[entities.BookName]{
		ItemsPerPage: controller.itemsPerPage,
		Columns: []datatable.Column[entities.BookName]{
			{Key: "book_name_id", Label: "Book ID", Sortable: true, Searchable: true,
				Value: func(b entities.BookName) any { return b.BookNameID }},
			{Key: "name", Label: "Name", Sortable: true, Searchable: true,
				Value: func(b entities.BookName) any { return b.Name }},
			{Key: "subject_name", Label: "Subject", Sortable: true, Searchable: true,
				Value: func(b entities.BookName) any { return b.SubjectName }},
			{Key: "publication_name", Label: "Publication", Sortable: true, Searchable: true,
				Value: func(b entities.BookName) any { return b.PublicationName }},
		},
		Actions: actionsFor(controller, c, "booknames", func(b entities.BookName) uint { return b.ID }),
	}
	controller.renderList(c, "Book Names", "/booknames", table.Render(list, tableState(c)), form, editErr)
}

func (controller *UIController) bookNameForm(c *gin.Context) (*EntityForm, string, error) {
	subjects, err := controller.stores.Subjects.List()
	if err != nil {
		return nil, "", err
	}
	pubs, err := controller.stores.Publications.List()
	if err != nil {
		return nil, "", err
	}
	subjectOptions := make([]FormOption, 0, len(subjects))
	for _, s := range subjects {
		subjectOptions = append(subjectOptions, FormOption{Value: idString(s.ID), Label: s.Name})
	}
	pubOptions := make([]FormOption, 0, len(pubs))
	for _, p := range pubs {
		pubOptions = append(pubOptions, FormOption{Value: idString(p.ID), Label: p.Name})
	}

	name, editErr := editTarget(c, "Book", controller.stores.BookNames.GetByID)
	if name == nil {
		name = &entities.BookName{}
	}
	selected := func(id uint) string {
		if id == 0 {
			return ""
		}
		return idString(id)
	}
	return newEntityForm("book", "booknames", name.ID,
		textField("book_name_id", "Book ID", name.BookNameID),
		textField("name", "Name", name.Name),
		selectField("subject_id", "Subject", selected(name.SubjectID), subjectOptions),
		selectField("company_id", "Publication", selected(name.CompanyID), pubOptions),
	), editErr, nil
}
