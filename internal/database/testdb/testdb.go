// Package testdb opens throwaway SQLite databases for tests.
package testdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/database"
)

// New returns a migrated database in a temp dir, closed when the test ends.
// A file is used instead of :memory: so that every pooled connection, and
// therefore every transaction, sees the same data.
func New(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "library.db"), database.Options{})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
