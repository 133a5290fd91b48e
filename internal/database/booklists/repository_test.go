package booklists

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

type fixture struct {
	repo   *Repository
	db     *gorm.DB
	school entities.School
	maths  entities.BookName
	gram   entities.BookName
}

func setupTestDB(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "booklists.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.School{},
		&entities.Subject{},
		&entities.Publication{},
		&entities.BookName{},
		&entities.BookEntry{},
		&entities.Booklist{},
		&entities.BooklistItem{},
	))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	f := &fixture{repo: NewRepository(db), db: db}

	f.school = entities.School{SchoolID: "SCH1", Name: "Green Valley"}
	require.NoError(t, db.Create(&f.school).Error)

	math := entities.Subject{SubID: "S1", Name: "Math"}
	english := entities.Subject{SubID: "S2", Name: "English"}
	pub := entities.Publication{PubID: "P1", Name: "Oxford"}
	require.NoError(t, db.Create(&math).Error)
	require.NoError(t, db.Create(&english).Error)
	require.NoError(t, db.Create(&pub).Error)

	f.maths = entities.BookName{BookNameID: "B1", Name: "Maths Magic", SubjectID: math.ID, CompanyID: pub.ID}
	f.gram = entities.BookName{BookNameID: "B2", Name: "Grammar", SubjectID: english.ID, CompanyID: pub.ID}
	require.NoError(t, db.Create(&f.maths).Error)
	require.NoError(t, db.Create(&f.gram).Error)

	for _, e := range []entities.BookEntry{
		{BookNameID: f.maths.ID, Class: "3", Price: 120},
		{BookNameID: f.maths.ID, Class: "5", Price: 150},
		{BookNameID: f.gram.ID, Class: "5", Price: 80},
	} {
		require.NoError(t, db.Create(&e).Error)
	}
	return f
}

func TestRepository_FindSchool(t *testing.T) {
	f := setupTestDB(t)

	school, err := f.repo.FindSchool("SCH1")
	require.NoError(t, err)
	assert.Equal(t, f.school.ID, school.ID)

	_, err = f.repo.FindSchool("nope")
	assert.ErrorIs(t, err, ErrSchoolNotFound)
}

func TestRepository_CreateAllowsDuplicates(t *testing.T) {
	f := setupTestDB(t)

	first := &entities.Booklist{SchoolID: f.school.ID, Class: "5", Session: 2025}
	second := &entities.Booklist{SchoolID: f.school.ID, Class: "5", Session: 2025}
	require.NoError(t, f.repo.Create(first))
	require.NoError(t, f.repo.Create(second))
	assert.NotEqual(t, first.ID, second.ID)

	lists, err := f.repo.ListBySession(f.school.ID, 2025)
	require.NoError(t, err)
	assert.Len(t, lists, 2)
}

func TestRepository_Overview(t *testing.T) {
	f := setupTestDB(t)

	for _, b := range []entities.Booklist{
		{SchoolID: f.school.ID, Class: "5", Session: 2024},
		{SchoolID: f.school.ID, Class: "LKG", Session: 2025},
		{SchoolID: f.school.ID, Class: "3", Session: 2025},
		{SchoolID: f.school.ID, Class: "Pre", Session: 2025},
	} {
		require.NoError(t, f.repo.Create(&b))
	}

	t.Run("defaults to latest session", func(t *testing.T) {
		overview, err := f.repo.Overview(f.school.ID, 0, 2030)
		require.NoError(t, err)
		assert.Equal(t, []int{2025, 2024}, overview.Sessions)
		assert.Equal(t, 2025, overview.CurrentSession)

		var classes []string
		for _, b := range overview.Booklists {
			classes = append(classes, b.Class)
		}
		assert.Equal(t, []string{"Pre", "LKG", "3"}, classes)
	})

	t.Run("requested session", func(t *testing.T) {
		overview, err := f.repo.Overview(f.school.ID, 2024, 2030)
		require.NoError(t, err)
		assert.Equal(t, 2024, overview.CurrentSession)
		assert.Len(t, overview.Booklists, 1)
	})

	t.Run("no booklists falls back to current year", func(t *testing.T) {
		other := entities.School{SchoolID: "SCH2", Name: "Other"}
		require.NoError(t, f.db.Create(&other).Error)

		overview, err := f.repo.Overview(other.ID, 0, 2030)
		require.NoError(t, err)
		assert.Empty(t, overview.Sessions)
		assert.Equal(t, 2030, overview.CurrentSession)
		assert.Empty(t, overview.Booklists)
	})
}

func TestRepository_AttachBook(t *testing.T) {
	f := setupTestDB(t)

	list := &entities.Booklist{SchoolID: f.school.ID, Class: "5", Session: 2025}
	require.NoError(t, f.repo.Create(list))

	t.Run("defaults to booklist class", func(t *testing.T) {
		view, err := f.repo.AttachBook(f.school.ID, list.ID, f.maths.ID, "")
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, "Maths Magic", view.BookName)
		assert.Equal(t, "Math", view.SubjectName)
		assert.Equal(t, "Oxford", view.PublicationName)
		assert.Equal(t, 150.0, view.BookPrice)
		assert.Equal(t, "5", view.Class)
	})

	t.Run("class mismatch", func(t *testing.T) {
		_, err := f.repo.AttachBook(f.school.ID, list.ID, f.maths.ID, "3")
		assert.ErrorIs(t, err, ErrClassMismatch)
	})

	t.Run("no entry for class", func(t *testing.T) {
		lkg := &entities.Booklist{SchoolID: f.school.ID, Class: "LKG", Session: 2025}
		require.NoError(t, f.repo.Create(lkg))
		_, err := f.repo.AttachBook(f.school.ID, lkg.ID, f.maths.ID, "")
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("booklist of another school", func(t *testing.T) {
		_, err := f.repo.AttachBook(f.school.ID+1, list.ID, f.maths.ID, "")
		assert.ErrorIs(t, err, ErrBooklistNotFound)
	})

	items, err := f.repo.Items(f.school.ID, 2025)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRepository_DeleteRemovesItems(t *testing.T) {
	f := setupTestDB(t)

	list := &entities.Booklist{SchoolID: f.school.ID, Class: "5", Session: 2025}
	require.NoError(t, f.repo.Create(list))
	_, err := f.repo.AttachBook(f.school.ID, list.ID, f.maths.ID, "")
	require.NoError(t, err)

	assert.ErrorIs(t, f.repo.Delete(f.school.ID+1, list.ID), ErrBooklistNotFound)

	require.NoError(t, f.repo.Delete(f.school.ID, list.ID))

	var count int64
	require.NoError(t, f.db.Model(&entities.BooklistItem{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.ErrorIs(t, f.repo.Delete(f.school.ID, list.ID), ErrBooklistNotFound)
}

func TestRepository_Commit(t *testing.T) {
	f := setupTestDB(t)

	plans := []ClassPlan{
		{Class: "3", BookNameIDs: []uint{f.maths.ID}},
		{Class: "5", BookNameIDs: []uint{f.maths.ID, f.gram.ID}},
	}

	result, err := f.repo.Commit("SCH1", 2025, plans)
	require.NoError(t, err)
	assert.Len(t, result.Booklists, 2)
	assert.Len(t, result.Items, 3)

	t.Run("reuses booklists and skips attached titles", func(t *testing.T) {
		again, err := f.repo.Commit("SCH1", 2025, plans)
		require.NoError(t, err)
		assert.Equal(t, result.Booklists[0].ID, again.Booklists[0].ID)
		assert.Equal(t, result.Booklists[1].ID, again.Booklists[1].ID)
		assert.Empty(t, again.Items)

		lists, err := f.repo.ListBySession(f.school.ID, 2025)
		require.NoError(t, err)
		assert.Len(t, lists, 2)
	})

	t.Run("rolls back on missing entry", func(t *testing.T) {
		_, err := f.repo.Commit("SCH1", 2026, []ClassPlan{
			{Class: "5", BookNameIDs: []uint{f.gram.ID}},
			{Class: "3", BookNameIDs: []uint{f.gram.ID}},
		})
		assert.ErrorIs(t, err, ErrBookNotFound)

		lists, err := f.repo.ListBySession(f.school.ID, 2026)
		require.NoError(t, err)
		assert.Empty(t, lists)
	})

	t.Run("unknown school", func(t *testing.T) {
		_, err := f.repo.Commit("nope", 2025, plans)
		assert.ErrorIs(t, err, ErrSchoolNotFound)
	})

	t.Run("invalid class", func(t *testing.T) {
		_, err := f.repo.Commit("SCH1", 2025, []ClassPlan{{Class: "12"}})
		assert.ErrorIs(t, err, ErrInvalidClass)
	})
}

func TestRepository_DeleteEmptyOlderThan(t *testing.T) {
	f := setupTestDB(t)

	old := time.Now().Add(-48 * time.Hour)
	orphan := &entities.Booklist{SchoolID: f.school.ID, Class: "3", Session: 2025, CreatedAt: old}
	filled := &entities.Booklist{SchoolID: f.school.ID, Class: "5", Session: 2025, CreatedAt: old}
	fresh := &entities.Booklist{SchoolID: f.school.ID, Class: "LKG", Session: 2025}
	require.NoError(t, f.repo.Create(orphan))
	require.NoError(t, f.repo.Create(filled))
	require.NoError(t, f.repo.Create(fresh))
	_, err := f.repo.AttachBook(f.school.ID, filled.ID, f.maths.ID, "")
	require.NoError(t, err)

	deleted, err := f.repo.DeleteEmptyOlderThan(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	lists, err := f.repo.ListBySchool(f.school.ID)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "LKG", lists[0].Class)
	assert.Equal(t, "5", lists[1].Class)
}
