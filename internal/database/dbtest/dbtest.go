// Package dbtest provides migrated in-memory SQLite stores for tests.
package dbtest

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Nabhonil04/stockpredict/internal/config"
	"github.com/Nabhonil04/stockpredict/internal/database"
)

// New opens a private in-memory SQLite database with the production schema
// applied. It is closed when the test finishes.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DriverSQLite, "file::memory:?_foreign_keys=on", slog.LevelInfo)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite))

	t.Cleanup(func() {
		_ = database.Close(db)
	})

	return db
}
