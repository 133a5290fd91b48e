package publications

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

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "publications.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Publication{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func TestRepository_List(t *testing.T) {
	repo := setupTestDB(t)

	now := time.Now()
	require.NoError(t, repo.Create(&entities.Publication{PubID: "P1", Name: "Oxford", CreatedAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.Create(&entities.Publication{PubID: "P2", Name: "Ratna Sagar", CreatedAt: now}))

	pubs, err := repo.List()
	require.NoError(t, err)
	require.Len(t, pubs, 2)
	assert.Equal(t, "Ratna Sagar", pubs[0].Name)
}

func TestRepository_ExistsPubID(t *testing.T) {
	repo := setupTestDB(t)

	pub := &entities.Publication{PubID: "P1", Name: "Oxford"}
	require.NoError(t, repo.Create(pub))

	tests := []struct {
		name    string
		pubID   string
		exclude uint
		want    bool
	}{
		{"taken on create", "P1", 0, true},
		{"own row on update", "P1", pub.ID, false},
		{"free", "P9", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ExistsPubID(tt.pubID, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepository_UpdateMissing(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.Update(&entities.Publication{ID: 42, PubID: "P1"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(42), gorm.ErrRecordNotFound)
}

func TestRepository_Update(t *testing.T) {
	repo := setupTestDB(t)

	pub := &entities.Publication{PubID: "P1", Name: "Oxford", City: "Delhi"}
	require.NoError(t, repo.Create(pub))

	pub.City = "Mumbai"
	require.NoError(t, repo.Update(pub))

	got, err := repo.GetByID(pub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", got.City)
}
