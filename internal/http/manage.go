package http

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

// FormOption is one choice of a select field.
type FormOption struct {
	Value    string
	Label    string
	Selected bool
}

// FormField is one input of a create or edit form. Type is an input type or
// "select".
type FormField struct {
	Name    string
	Label   string
	Type    string
	Value   string
	Step    string
	Options []FormOption
}

// EntityForm is the add or edit form shown above a list table. ID is set when
// editing.
type EntityForm struct {
	Title      string
	Action     string
	Submit     string
	ID         string
	Fields     []FormField
	CSRF       template.HTML
	Return     string
	CancelHref string
}

func textField(name, label, value string) FormField {
	return FormField{Name: name, Label: label, Type: "text", Value: value}
}

func numberField(name, label, value, step string) FormField {
	return FormField{Name: name, Label: label, Type: "number", Value: value, Step: step}
}

func selectField(name, label, selected string, options []FormOption) FormField {
	for i := range options {
		options[i].Selected = options[i].Value == selected
	}
	return FormField{Name: name, Label: label, Type: "select", Options: options}
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func classFormOptions() []FormOption {
	out := make([]FormOption, 0, len(entities.Classes))
	for _, c := range entities.Classes {
		out = append(out, FormOption{Value: c, Label: entities.ClassName(c)})
	}
	return out
}

func managePath(resource, op string) string {
	return "/manage/" + resource + "/" + op
}

// newEntityForm builds the add form of resource, or its edit form when id is
// not zero.
func newEntityForm(noun, resource string, id uint, fields ...FormField) *EntityForm {
	form := &EntityForm{
		Title:  "Add " + noun,
		Action: managePath(resource, "create"),
		Submit: "Add",
		Fields: fields,
	}
	if id != 0 {
		form.Title = "Edit " + noun
		form.Action = managePath(resource, "update")
		form.Submit = "Save"
		form.ID = idString(id)
	}
	return form
}

// returnQuery is the table state of the current page, without the edit and
// message parameters.
func returnQuery(c *gin.Context) url.Values {
	q := c.Request.URL.Query()
	q.Del("edit")
	q.Del("error")
	q.Del("notice")
	return q
}

// editID reads ?edit=<id>; 0 means no row is being edited.
func editID(c *gin.Context) uint {
	id, err := strconv.ParseUint(c.Query("edit"), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// rowActions renders the Edit link and the Delete button of one row.
func rowActions(c *gin.Context, resource string, id uint) template.HTML {
	sid := idString(id)
	back := returnQuery(c)
	edit := returnQuery(c)
	edit.Set("edit", sid)

	return template.HTML(`<a href="?` + template.HTMLEscapeString(edit.Encode()) + `">Edit</a> ` +
		`<form method="post" action="` + managePath(resource, "delete") + `" class="inline">` +
		string(csrfField(c)) +
		`<input type="hidden" name="id" value="` + sid + `">` +
		`<input type="hidden" name="return" value="` + template.HTMLEscapeString(back.Encode()) + `">` +
		`<button type="submit">Delete</button></form>`)
}

// opMessage is the text a page shows for a failed operation. Anything but a
// requestError is logged and hidden.
func opMessage(c *gin.Context, err error, op string) string {
	var re *requestError
	if errors.As(err, &re) {
		return re.message
	}
	log.Printf("[REQ %s] %s failed: %v", requestID(c), op, err)
	return "internal server error"
}

// redirectAfterPost sends a form post back to its list page, keeping the
// table state and reporting the outcome. A failed edit stays open.
func redirectAfterPost(c *gin.Context, back, notice string, err error) {
	q, _ := url.ParseQuery(c.PostForm("return"))
	q.Del("edit")
	q.Del("error")
	q.Del("notice")

	if err != nil {
		q.Set("error", opMessage(c, err, "form post to "+c.Request.URL.Path))
		if edit := c.PostForm("edit"); edit != "" {
			q.Set("edit", edit)
		}
	} else {
		q.Set("notice", notice)
	}
	c.Redirect(http.StatusSeeOther, back+"?"+q.Encode())
}

// formPost binds a form into R, runs op and redirects to back.
func formPost[R any](back, message, notice string, op func(req R, rid string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req R
		err := bindForm(c, &req, message)
		if err == nil {
			err = op(req, requestID(c))
		}
		redirectAfterPost(c, back, notice, err)
	}
}

func dropResult[R, T any](op func(R, string) (T, error)) func(R, string) error {
	return func(req R, rid string) error {
		_, err := op(req, rid)
		return err
	}
}

func byID(op func(uint, string) error) func(idRequest, string) error {
	return func(req idRequest, rid string) error {
		return op(req.ID, rid)
	}
}

// manageControllers carry the write operations behind the list page forms.
type manageControllers struct {
	schools      *SchoolsController
	subjects     *SubjectsController
	publications *PublicationsController
	bookNames    *BookNamesController
	books        *BooksController
}

func registerManageRoutes(g *gin.RouterGroup, m manageControllers) {
	g.POST("/schools/create", formPost("/schools", schoolFieldsRequired, "School added", dropResult(m.schools.create)))
	g.POST("/schools/update", formPost("/schools", schoolFieldsRequired, "School saved", dropResult(m.schools.update)))
	g.POST("/schools/delete", formPost("/schools", "School ID is required", "School deleted", byID(m.schools.delete)))

	g.POST("/subjects/create", formPost("/subjects", subjectCreateRequired, "Subject added", dropResult(m.subjects.create)))
	g.POST("/subjects/update", formPost("/subjects", subjectUpdateRequired, "Subject saved", dropResult(m.subjects.update)))
	g.POST("/subjects/delete", formPost("/subjects", "Subject ID is required", "Subject deleted", byID(m.subjects.delete)))

	g.POST("/publications/create", formPost("/publications", publicationCreateRequired, "Publication added", dropResult(m.publications.create)))
	g.POST("/publications/update", formPost("/publications", publicationUpdateRequired, "Publication saved", dropResult(m.publications.update)))
	g.POST("/publications/delete", formPost("/publications", "Publication ID is required", "Publication deleted", byID(m.publications.delete)))

	g.POST("/booknames/create", formPost("/booknames", bookNameFieldsRequired, "Book added", dropResult(m.bookNames.create)))
	g.POST("/booknames/update", formPost("/booknames", bookNameFieldsRequired, "Book saved", dropResult(m.bookNames.update)))
	g.POST("/booknames/delete", formPost("/booknames", "Book ID is required", "Book deleted", byID(m.bookNames.delete)))

	g.POST("/books/create", formPost("/", "Book, class and a price or quantity are required", "Book entry added",
		func(req bookFormRequest, rid string) error {
			_, err := m.books.create(req.createRequest(), rid)
			return err
		}))
	g.POST("/books/update", formPost("/", "All fields are required", "Book entry saved", dropResult(m.books.update)))
	g.POST("/books/delete", formPost("/", "Book ID is required", "Book entry deleted", byID(m.books.delete)))
}
