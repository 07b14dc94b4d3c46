package database

import (
	"ctlab_backend/internal/config"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "PostgreSQL", "sqlite", "sqlite3"} {
		d, err := Dialector(&config.DatabaseConfig{Driver: driver, Host: "localhost", Port: 1, Path: "x.db"})
		require.NoError(t, err, driver)
		assert.NotNil(t, d, driver)
	}

	_, err := Dialector(&config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestInitDB_SQLiteMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctlab.db")
	db, err := InitDB(&config.DatabaseConfig{Driver: "sqlite", Path: path, AutoMigrate: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	for _, table := range []string{"users", "lessons", "quizzes", "quiz_options", "quiz_results"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	// a second migration is a no-op
	assert.NoError(t, Migrate(db))
}
