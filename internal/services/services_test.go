package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Sa-tya/shelf-manager/internal/audit"
	"github.com/Sa-tya/shelf-manager/internal/database"
	auditrepo "github.com/Sa-tya/shelf-manager/internal/database/audit"
	"github.com/Sa-tya/shelf-manager/internal/database/booklists"
	"github.com/Sa-tya/shelf-manager/internal/database/booknames"
	"github.com/Sa-tya/shelf-manager/internal/database/books"
	"github.com/Sa-tya/shelf-manager/internal/database/publications"
	"github.com/Sa-tya/shelf-manager/internal/database/subjects"
	"github.com/Sa-tya/shelf-manager/internal/entities"
	"github.com/Sa-tya/shelf-manager/internal/workflow"
)

type fixture struct {
	db      *gorm.DB
	catalog *Catalog
	lists   *booklists.Repository
	maths   entities.BookName
	gram    entities.BookName
	orphan  entities.BookName
}

func setup(t *testing.T) *fixture {
	d, err := database.Open(database.Options{
		Path:     filepath.Join(t.TempDir(), "services.db"),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	db := d.DB

	require.NoError(t, db.Create(&entities.School{SchoolID: "SCH1", Name: "Green Valley"}).Error)
	math := entities.Subject{SubID: "S1", Name: "Math"}
	english := entities.Subject{SubID: "S2", Name: "English"}
	science := entities.Subject{SubID: "S3", Name: "Science"}
	pub := entities.Publication{PubID: "P1", Name: "Oxford"}
	for _, v := range []any{&math, &english, &science, &pub} {
		require.NoError(t, db.Create(v).Error)
	}

	f := &fixture{db: db}
	f.maths = entities.BookName{BookNameID: "B1", Name: "Maths Magic", SubjectID: math.ID, CompanyID: pub.ID}
	f.gram = entities.BookName{BookNameID: "B2", Name: "Grammar", SubjectID: english.ID, CompanyID: pub.ID}
	f.orphan = entities.BookName{BookNameID: "B3", Name: "Nature", SubjectID: science.ID, CompanyID: pub.ID}
	for _, b := range []*entities.BookName{&f.maths, &f.gram, &f.orphan} {
		require.NoError(t, db.Create(b).Error)
	}
	for _, e := range []entities.BookEntry{
		{BookNameID: f.maths.ID, Class: "3", Price: 120},
		{BookNameID: f.maths.ID, Class: "5", Price: 150},
		{BookNameID: f.gram.ID, Class: "5", Price: 80},
	} {
		require.NoError(t, db.Create(&e).Error)
	}

	f.lists = booklists.NewRepository(db)
	f.catalog = NewCatalog(
		subjects.NewRepository(db),
		publications.NewRepository(db),
		booknames.NewRepository(db),
		books.NewRepository(db),
		f.lists,
	)
	return f
}

func (f *fixture) count(t *testing.T, model any) int64 {
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

// build stages Maths Magic for classes 3 and 5 and Grammar for class 5.
func (f *fixture) build(t *testing.T, ctrl *workflow.Controller) {
	ctx := context.Background()
	require.NoError(t, ctrl.Load(ctx, time.Now().Year()))

	ctrl.SelectBook(f.maths.ID)
	ctrl.SelectClasses([]string{"5", "3"})
	require.NoError(t, ctrl.Simulate(ctx))

	require.NoError(t, ctrl.SelectSubject(ctx, f.gram.SubjectID))
	assert.Equal(t, f.gram.ID, ctrl.State().SelectedBook)
	ctrl.SelectClasses([]string{"5"})
	require.NoError(t, ctrl.Simulate(ctx))
}

func TestCatalog_Prices(t *testing.T) {
	f := setup(t)

	prices, err := f.catalog.Prices(context.Background(), f.maths.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"3": 120, "5": 150}, prices)

	_, err = f.catalog.Prices(context.Background(), f.orphan.ID)
	assert.ErrorIs(t, err, workflow.ErrNoPrices)
}

func TestCatalog_BookNamesFilter(t *testing.T) {
	f := setup(t)

	names, err := f.catalog.BookNames(context.Background(), workflow.BookFilter{SubjectID: f.gram.SubjectID})
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.Equal(t, "Grammar", names[0].Name)
	assert.Equal(t, "English", names[0].SubjectName)
}

func TestCatalog_BooklistItemsUnknownSchool(t *testing.T) {
	f := setup(t)

	_, err := f.catalog.BooklistItems(context.Background(), "NOPE", 2024)
	assert.ErrorIs(t, err, booklists.ErrSchoolNotFound)
}

func TestSimulate_TitleWithoutEntriesStagesUnknownPrice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ctrl := workflow.NewController("SCH1", f.catalog, NewTransactionalCommitter(f.lists))
	require.NoError(t, ctrl.Load(ctx, 2024))

	ctrl.SelectBook(f.orphan.ID)
	ctrl.SelectClasses([]string{"1"})
	require.NoError(t, ctrl.Simulate(ctx))

	staged := ctrl.State().Simulated
	require.Len(t, staged, 1)
	assert.Equal(t, "N/A", staged[0].Books[0].DisplayPrice())
}

func TestLocalGateway(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	gw := NewLocalGateway(f.lists)
	gw.now = func() time.Time { return time.Date(2031, 6, 1, 0, 0, 0, 0, time.UTC) }

	list, err := gw.CreateBooklist(ctx, "SCH1", "5")
	require.NoError(t, err)
	assert.Equal(t, 2031, list.Session)

	_, err = gw.CreateBooklist(ctx, "SCH1", "9")
	assert.ErrorIs(t, err, booklists.ErrInvalidClass)

	_, err = gw.CreateBooklist(ctx, "NOPE", "5")
	assert.ErrorIs(t, err, booklists.ErrSchoolNotFound)

	item, err := gw.AddBooklistItem(ctx, workflow.ItemRequest{SchoolCode: "SCH1", BooklistID: list.ID, BookNameID: f.gram.ID, Class: "5"})
	require.NoError(t, err)
	assert.Equal(t, "Grammar", item.BookName)
	assert.Equal(t, 80.0, item.BookPrice)

	_, err = gw.AddBooklistItem(ctx, workflow.ItemRequest{SchoolCode: "SCH1", BooklistID: list.ID, BookNameID: f.orphan.ID, Class: "5"})
	assert.ErrorIs(t, err, booklists.ErrBookNotFound)
}

func TestNewCommitter_Modes(t *testing.T) {
	tests := []struct {
		mode          string
		wantBooklists int64
	}{
		{mode: CommitModeTransactional, wantBooklists: 2},
		{mode: CommitModeFanOut, wantBooklists: 4},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			f := setup(t)
			ctrl := workflow.NewController("SCH1", f.catalog, NewCommitter(tt.mode, 2, f.lists, nil, nil))

			f.build(t, ctrl)
			res, err := ctrl.Save(context.Background())
			require.NoError(t, err)
			assert.Len(t, res.Booklists, 2)
			assert.Len(t, res.Items, 3)
			assert.Len(t, ctrl.Items(), 3)
			assert.Empty(t, ctrl.State().Simulated)

			// Saving the same build again reuses booklists only in transactional mode.
			f.build(t, ctrl)
			_, err = ctrl.Save(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantBooklists, f.count(t, &entities.Booklist{}))
		})
	}
}

func TestTransactionalCommitter_RollsBack(t *testing.T) {
	f := setup(t)

	staged := []workflow.StagedClass{
		{Class: "3", Books: []workflow.StagedBook{{Book: f.maths, Class: "3"}}},
		{Class: "5", Books: []workflow.StagedBook{{Book: f.orphan, Class: "5"}}},
	}
	_, err := NewTransactionalCommitter(f.lists).Commit(context.Background(), "SCH1", 2024, staged)
	assert.ErrorIs(t, err, workflow.ErrCommitFailed)
	assert.ErrorIs(t, err, booklists.ErrBookNotFound)
	assert.Zero(t, f.count(t, &entities.Booklist{}))
	assert.Zero(t, f.count(t, &entities.BooklistItem{}))
}

func TestTransactionalCommitter_DefaultsSession(t *testing.T) {
	f := setup(t)
	tc := NewTransactionalCommitter(f.lists)
	tc.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	res, err := tc.Commit(context.Background(), "SCH1", 0, []workflow.StagedClass{
		{Class: "3", Books: []workflow.StagedBook{{Book: f.maths, Class: "3"}}},
	})
	require.NoError(t, err)
	require.Len(t, res.Booklists, 1)
	assert.Equal(t, 2030, res.Booklists[0].Session)
}

func TestInstrumentedCommitter_Audits(t *testing.T) {
	f := setup(t)
	svc := audit.NewService(auditrepo.NewRepository(f.db))

	committer := NewCommitter("bogus", 0, f.lists, nil, svc)
	_, err := committer.Commit(context.Background(), "NOPE", 2024, []workflow.StagedClass{
		{Class: "3", Books: []workflow.StagedBook{{Book: f.maths, Class: "3"}}},
	})
	require.Error(t, err)
	svc.Wait()

	events, total, err := svc.List(entities.AuditQuery{Type: entities.AuditEventCommit, School: "NOPE"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "booklist_commit_transactional", events[0].Action)
	assert.Equal(t, entities.AuditStatusFailed, events[0].Status)
}

func TestPlansFromStaged(t *testing.T) {
	plans := PlansFromStaged([]workflow.StagedClass{
		{Class: "3", Books: []workflow.StagedBook{{Book: entities.BookName{ID: 1}}, {Book: entities.BookName{ID: 2}}}},
		{Class: "5", Books: []workflow.StagedBook{{Book: entities.BookName{ID: 1}}}},
	})
	assert.Equal(t, []booklists.ClassPlan{
		{Class: "3", BookNameIDs: []uint{1, 2}},
		{Class: "5", BookNameIDs: []uint{1}},
	}, plans)
}
