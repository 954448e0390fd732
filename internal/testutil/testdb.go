// Package testutil builds throwaway databases for package tests.
package testutil

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"library-api/internal/config"
	"library-api/internal/database"
)

// NewDB returns a migrated, private in-memory SQLite database that is closed
// when the test ends. The pool holds a single connection because every
// connection to :memory: would otherwise see its own empty database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DBConfig{
		Driver:       config.DriverSQLite,
		SQLitePath:   "file::memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zerolog.Nop())
	require.NoError(t, err, "error in arranging test database")
	require.NoError(t, database.Migrate(db, false), "error in migrating test database")

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
