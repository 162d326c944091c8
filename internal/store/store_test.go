package store

import (
	"testing"

	"github.com/AdamBeresnev/toilescoins/internal/db"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.InitMemoryDB()
	require.NoError(t, err, "Failed to open in-memory DB")
	t.Cleanup(func() { database.Close() })
	return database
}
