package http

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/Sa-tya/shelf-manager/internal/audit"
	"github.com/Sa-tya/shelf-manager/internal/database"
	auditrepo "github.com/Sa-tya/shelf-manager/internal/database/audit"
	"github.com/Sa-tya/shelf-manager/internal/database/booklists"
	"github.com/Sa-tya/shelf-manager/internal/database/booknames"
	"github.com/Sa-tya/shelf-manager/internal/database/books"
	"github.com/Sa-tya/shelf-manager/internal/database/publications"
	"github.com/Sa-tya/shelf-manager/internal/database/schools"
	"github.com/Sa-tya/shelf-manager/internal/database/subjects"
	"github.com/Sa-tya/shelf-manager/internal/entities"
	"github.com/Sa-tya/shelf-manager/internal/metrics"
	"github.com/Sa-tya/shelf-manager/internal/services"
	"github.com/Sa-tya/shelf-manager/internal/workflow"
)

type testServer struct {
	db      *database.Database
	router  *gin.Engine
	audit   *audit.Service
	metrics *metrics.Metrics
	lists   *booklists.Repository
}

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.Open(database.Options{
		Path:     filepath.Join(t.TempDir(), "http.db"),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// setupServer builds the full router over a fresh database.
func setupServer(t *testing.T, mutate ...func(*RouterConfig)) *testServer {
	t.Helper()
	db := setupTestDB(t)

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	t.Cleanup(auditService.Wait)
	m := metrics.New()

	subjectRepo := subjects.NewRepository(db.DB)
	pubRepo := publications.NewRepository(db.DB)
	nameRepo := booknames.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	listRepo := booklists.NewRepository(db.DB)

	catalog := services.NewCatalog(subjectRepo, pubRepo, nameRepo, bookRepo, listRepo)
	committer := services.NewCommitter(services.CommitModeTransactional, 2, listRepo, m, auditService)

	cfg := RouterConfig{
		Database:     db,
		Audit:        auditService,
		Schools:      schools.NewRepository(db.DB),
		Subjects:     subjectRepo,
		Publications: pubRepo,
		BookNames:    nameRepo,
		Books:        bookRepo,
		Booklists:    listRepo,
		Builders:     workflow.NewRegistry(catalog, committer),
		ItemsPerPage: 10,
		Version:      "test",
		Metrics:      m,
	}
	for _, f := range mutate {
		f(&cfg)
	}

	router, err := NewRouter(cfg)
	require.NoError(t, err)
	return &testServer{db: db, router: router, audit: auditService, metrics: m, lists: listRepo}
}

// body is a JSON request body.
type body map[string]any

func (s *testServer) do(method, path string, payload any) *httptest.ResponseRecorder {
	reader := bytes.NewReader(nil)
	if payload != nil {
		raw, _ := json.Marshal(payload)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// catalogFixture is a school, two subjects, one publication and titles
// priced for a few classes.
type catalogFixture struct {
	school  entities.School
	math    entities.Subject
	english entities.Subject
	pub     entities.Publication
	maths   entities.BookName
	grammar entities.BookName
}

func (s *testServer) seedCatalog(t *testing.T) catalogFixture {
	t.Helper()
	db := s.db.DB
	f := catalogFixture{
		school:  entities.School{SchoolID: "SCH1", Name: "Green Valley", City: "Pune", Contact: "123", Email: "gv@example.com"},
		math:    entities.Subject{SubID: "S1", Name: "Math"},
		english: entities.Subject{SubID: "S2", Name: "English"},
		pub:     entities.Publication{PubID: "P1", Name: "Oxford", City: "Delhi"},
	}
	for _, v := range []any{&f.school, &f.math, &f.english, &f.pub} {
		require.NoError(t, db.Create(v).Error)
	}
	f.maths = entities.BookName{BookNameID: "B1", Name: "Maths Magic", SubjectID: f.math.ID, CompanyID: f.pub.ID}
	f.grammar = entities.BookName{BookNameID: "B2", Name: "Grammar", SubjectID: f.english.ID, CompanyID: f.pub.ID}
	require.NoError(t, db.Create(&f.maths).Error)
	require.NoError(t, db.Create(&f.grammar).Error)
	for _, e := range []entities.BookEntry{
		{BookNameID: f.maths.ID, Class: "3", Price: 120, Quantity: 10},
		{BookNameID: f.maths.ID, Class: "5", Price: 150, Quantity: 4},
		{BookNameID: f.grammar.ID, Class: "5", Price: 80, Quantity: 7},
	} {
		require.NoError(t, db.Create(&e).Error)
	}
	return f
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func currentYear() int {
	return time.Now().Year()
}
