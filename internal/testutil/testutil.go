package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrev/phraseflash/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied,
// going through the same open path as production so pragmas and the migration
// runner get exercised too.
func NewTestDB(t *testing.T) *sql.DB {
	conn, err := db.Open("file::memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, conn.Close())
	})
	return conn
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
