// Package databasetest opens throwaway SQLite databases for tests.
package databasetest

import (
	"path/filepath"
	"testing"

	"notehistory/cmd/internal/config"
	"notehistory/cmd/internal/domain/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated database backed by a file in t's temp dir. It is
// closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Init(config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "notes.db"),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// AssertPointersOwned fails t if any note points at a version that is missing
// or belongs to another note.
func AssertPointersOwned(t testing.TB, db *gorm.DB) {
	t.Helper()

	var broken int64
	err := db.Table("notes").
		Joins("LEFT JOIN note_versions ON note_versions.id = notes.current_version_id").
		Where("notes.current_version_id IS NOT NULL").
		Where("note_versions.id IS NULL OR note_versions.note_id <> notes.id").
		Count(&broken).Error
	require.NoError(t, err)
	require.Zero(t, broken, "notes with a pointer outside their own history")
}
