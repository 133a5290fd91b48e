package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sa-tya/shelf-manager/internal/database/booklists"
	"github.com/Sa-tya/shelf-manager/internal/entities"
	"github.com/Sa-tya/shelf-manager/internal/workflow"
)

// BooklistPageController renders a school's booklists and drives the
// booklist builder. Builder actions redirect back to the page.
type BooklistPageController struct {
	store    BooklistStore
	registry *workflow.Registry
	now      func() time.Time
}

func NewBooklistPageController(store BooklistStore, registry *workflow.Registry) *BooklistPageController {
	return &BooklistPageController{store: store, registry: registry, now: time.Now}
}

// ClassOption is one checkbox of the class picker.
type ClassOption struct {
	Label   string
	Name    string
	Checked bool
}

func classOptions(selected []string) []ClassOption {
	checked := make(map[string]bool, len(selected))
	for _, c := range selected {
		checked[c] = true
	}
	out := make([]ClassOption, 0, len(entities.Classes))
	for _, c := range entities.Classes {
		out = append(out, ClassOption{Label: c, Name: entities.ClassName(c), Checked: checked[c]})
	}
	return out
}

func pageURL(code string, session int, errMsg string) string {
	q := url.Values{}
	if session != 0 {
		q.Set("session", strconv.Itoa(session))
	}
	if errMsg != "" {
		q.Set("error", errMsg)
	}
	u := "/schools/" + url.PathEscape(code) + "/booklist"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// BooklistPage shows the saved items of one session grouped by class, the
// session selector and the builder.
// GET /schools/:schoolId/booklist?session=
func (bp *BooklistPageController) BooklistPage(c *gin.Context) {
	code := c.Param("schoolId")
	session, err := strconv.Atoi(c.DefaultQuery("session", "0"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid session")
		return
	}

	school, err := bp.store.FindSchool(code)
	if errors.Is(err, booklists.ErrSchoolNotFound) {
		c.String(http.StatusNotFound, "School not found")
		return
	}
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading school: %s", err.Error())
		return
	}

	overview, err := bp.store.Overview(school.ID, session, bp.now().Year())
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading booklists: %s", err.Error())
		return
	}

	ctrl := bp.registry.Get(school.SchoolID)
	if err := ctrl.Load(c.Request.Context(), overview.CurrentSession); err != nil {
		c.String(http.StatusInternalServerError, "Error loading catalog: %s", err.Error())
		return
	}
	state := ctrl.State()

	c.HTML(http.StatusOK, "booklist", gin.H{
		"Title":             school.Name,
		"Active":            "/schools",
		"Nav":               navLinks,
		"School":            school,
		"Overview":          overview,
		"Groups":            entities.GroupItemsByClass(ctrl.Items()),
		"Error":             c.Query("error"),
		"State":             state,
		"RemainingSubjects": workflow.RemainingSubjects(state),
		"AvailableBooks":    workflow.AvailableBooks(state),
		"Classes":           classOptions(state.SelectedClasses),
		"StagedCount":       workflow.StagedCount(state),
		"CSRFField":         csrfField(c),
	})
}

func formID(c *gin.Context, field string) uint {
	id, err := strconv.ParseUint(c.PostForm(field), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// builder returns the build of a known school, or answers 404.
func (bp *BooklistPageController) builder(c *gin.Context) (*workflow.Controller, bool) {
	school, err := bp.store.FindSchool(c.Param("schoolId"))
	if errors.Is(err, booklists.ErrSchoolNotFound) {
		c.String(http.StatusNotFound, "School not found")
		return nil, false
	}
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading school: %s", err.Error())
		return nil, false
	}
	return bp.registry.Get(school.SchoolID), true
}

func (bp *BooklistPageController) redirect(c *gin.Context, ctrl *workflow.Controller, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	c.Redirect(http.StatusSeeOther, pageURL(ctrl.School(), ctrl.Session(), msg))
}

// applyFilter moves the subject and publication filters to the posted
// values. changed reports whether either moved, which clears the title.
func applyFilter(c *gin.Context, ctrl *workflow.Controller) (changed bool, err error) {
	ctx := c.Request.Context()
	state := ctrl.State()

	if subject := formID(c, "subject_id"); subject != state.SelectedSubject {
		changed = true
		if err := ctrl.SelectSubject(ctx, subject); err != nil {
			return changed, err
		}
	}
	if pub := formID(c, "publication_id"); pub != state.SelectedPublication {
		changed = true
		if err := ctrl.SelectPublication(ctx, pub); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// Filter narrows the title picker by subject and publication. The picked
// classes are kept, and so is the title while the filters stay put.
// POST /schools/:schoolId/booklist/builder/filter
func (bp *BooklistPageController) Filter(c *gin.Context) {
	ctrl, ok := bp.builder(c)
	if !ok {
		return
	}

	changed, err := applyFilter(c, ctrl)
	if err == nil {
		if !changed {
			ctrl.SelectBook(formID(c, "book_id"))
		}
		ctrl.SelectClasses(c.PostFormArray("classes"))
	}
	bp.redirect(c, ctrl, err)
}

// Stage adds the chosen title to the chosen classes. Filters posted with it
// are applied first, so a subject and its title can be picked in one go.
// POST /schools/:schoolId/booklist/builder/stage
func (bp *BooklistPageController) Stage(c *gin.Context) {
	ctrl, ok := bp.builder(c)
	if !ok {
		return
	}

	if _, err := applyFilter(c, ctrl); err != nil {
		bp.redirect(c, ctrl, err)
		return
	}
	ctrl.SelectBook(formID(c, "book_id"))
	ctrl.SelectClasses(c.PostFormArray("classes"))
	bp.redirect(c, ctrl, ctrl.Simulate(c.Request.Context()))
}

// Remove unstages one title from one class.
// POST /schools/:schoolId/booklist/builder/remove
func (bp *BooklistPageController) Remove(c *gin.Context) {
	ctrl, ok := bp.builder(c)
	if !ok {
		return
	}
	ctrl.Remove(c.PostForm("class"), formID(c, "book_id"))
	bp.redirect(c, ctrl, nil)
}

// Save commits the staged build.
// POST /schools/:schoolId/booklist/builder/save
func (bp *BooklistPageController) Save(c *gin.Context) {
	ctrl, ok := bp.builder(c)
	if !ok {
		return
	}
	_, err := ctrl.Save(c.Request.Context())
	bp.redirect(c, ctrl, err)
}

// Cancel discards the staged build.
// POST /schools/:schoolId/booklist/builder/cancel
func (bp *BooklistPageController) Cancel(c *gin.Context) {
	ctrl, ok := bp.builder(c)
	if !ok {
		return
	}
	ctrl.Cancel()
	bp.redirect(c, ctrl, nil)
}
