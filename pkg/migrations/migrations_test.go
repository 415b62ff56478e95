package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestBringUpToDate_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	group, err := BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	group, err = BringUpToDate(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, group.ID)

	var count int
	err = db.NewRaw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'audiobooks'").Scan(ctx, &count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBringUpToDate_AdoptsExistingTable(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	createLegacyLibrary(t, db)

	_, err := BringUpToDate(ctx, db)
	require.NoError(t, err)

	var title string
	err = db.NewRaw("SELECT title FROM audiobooks WHERE id = 1").Scan(ctx, &title)
	require.NoError(t, err)
	assert.Equal(t, "Dune", title)
}

func TestInspect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("new file", func(t *testing.T) {
		t.Parallel()
		db := newTestDB(t)

		report, err := Inspect(ctx, db)
		require.NoError(t, err)
		assert.Empty(t, report.Applied)
		assert.Contains(t, report.Pending, "20250801000000")
		assert.False(t, report.HasAudiobooks)
		assert.False(t, report.Untracked)
	})

	t.Run("library written before migrations were tracked", func(t *testing.T) {
		t.Parallel()
		db := newTestDB(t)
		createLegacyLibrary(t, db)

		report, err := Inspect(ctx, db)
		require.NoError(t, err)
		assert.True(t, report.HasAudiobooks)
		assert.True(t, report.Untracked)
		assert.Equal(t, 1, report.Audiobooks)

		_, err = BringUpToDate(ctx, db)
		require.NoError(t, err)

		report, err = Inspect(ctx, db)
		require.NoError(t, err)
		assert.False(t, report.Untracked)
		assert.Equal(t, []string{"20250801000000"}, report.Applied)
		assert.Empty(t, report.Pending)
		assert.Equal(t, 1, report.Audiobooks)
	})
}

// createLegacyLibrary lays out a file the way the server did before
// migrations were tracked, with one book in it.
func createLegacyLibrary(t *testing.T, db *bun.DB) {
	t.Helper()

	_, err := db.Exec(`CREATE TABLE audiobooks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		author TEXT,
		narrator TEXT,
		duration TEXT,
		genre TEXT,
		description TEXT,
		cover_url TEXT,
		goodreads_url TEXT,
		rating REAL,
		date_added DATETIME DEFAULT CURRENT_TIMESTAMP,
		date_started_listening DATETIME,
		date_end_listened DATETIME,
		notes TEXT,
		status TEXT DEFAULT 'to_listen'
	)`)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO audiobooks (title, status) VALUES ('Dune', 'completed')")
	require.NoError(t, err)
}
