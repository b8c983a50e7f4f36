package database

import (
	"context"
	"path/filepath"
	"testing"

	"minesweeper/internal/config"
	"minesweeper/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) Database {
	t.Helper()

	db, err := NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.AutoMigrate(context.Background()))
	return db
}

func TestSQLiteDB(t *testing.T) {
	testStore(t, context.Background(), newSQLite)
}

func TestSQLiteDB_File(t *testing.T) {
	// Given: a database file that is closed and reopened
	path := filepath.Join(t.TempDir(), "data", "scores.db")
	ctx := context.Background()

	db, err := New(config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: path})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(ctx))
	_, err = db.SubmitScore(ctx, 5, "carol", models.DifficultyEasy, 12)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// When: it is opened again and migrated twice
	db, err = NewSQLiteDB(path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.AutoMigrate(ctx))

	// Then: the score survived
	scores, err := db.UserScores(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, scores[models.DifficultyEasy])
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(config.DatabaseConfig{Driver: "mysql"})

	assert.Error(t, err)
}
