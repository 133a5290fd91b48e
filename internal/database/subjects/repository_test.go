package subjects

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "subjects.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Subject{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func TestRepository_ListHighestIDFirst(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Create(&entities.Subject{SubID: "S1", Name: "Math"}))
	require.NoError(t, repo.Create(&entities.Subject{SubID: "S2", Name: "English"}))

	subjects, err := repo.List()
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "English", subjects[0].Name)
	assert.Equal(t, "Math", subjects[1].Name)
}

func TestRepository_SubIDNotUnique(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Create(&entities.Subject{SubID: "S1", Name: "Math"}))
	require.NoError(t, repo.Create(&entities.Subject{SubID: "S1", Name: "Maths"}))
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	repo := setupTestDB(t)

	subject := &entities.Subject{SubID: "S1", Name: "Math"}
	require.NoError(t, repo.Create(subject))

	subject.Name = "Mathematics"
	require.NoError(t, repo.Update(subject))

	got, err := repo.GetByID(subject.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", got.Name)

	require.NoError(t, repo.Delete(subject.ID))
	_, err = repo.GetByID(subject.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(subject.ID), gorm.ErrRecordNotFound)
}
