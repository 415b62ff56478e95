package audiobooks

import (
	"context"
	"database/sql"
	"testing"

	"github.com/listenlog/listenlog/pkg/errcodes"
	"github.com/listenlog/listenlog/pkg/migrations"
	"github.com/listenlog/listenlog/pkg/models"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is its own database.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createAudiobook(t *testing.T, svc *Service, audiobook *models.Audiobook) *models.Audiobook {
	t.Helper()
	require.NoError(t, svc.CreateAudiobook(context.Background(), audiobook))
	return audiobook
}

func dateText(s string) *models.DateText {
	d := models.DateText(s)
	return &d
}

func TestCreateAudiobook(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(setupTestDB(t))

	audiobook := createAudiobook(t, svc, &models.Audiobook{
		Title:                "Dune",
		Author:               pointerutil.String("Frank Herbert"),
		DateStartedListening: dateText("2024-03-01"),
	})

	assert.NotZero(t, audiobook.ID)
	assert.False(t, audiobook.DateAdded.IsZero())
	assert.Equal(t, models.StatusCompleted, audiobook.Status)

	found, err := svc.RetrieveAudiobook(ctx, RetrieveAudiobookOptions{ID: audiobook.ID})
	require.NoError(t, err)
	assert.Equal(t, "Dune", found.Title)
	require.NotNil(t, found.Author)
	assert.Equal(t, "Frank Herbert", *found.Author)
	require.NotNil(t, found.DateStartedListening)
	assert.Equal(t, models.DateText("2024-03-01"), *found.DateStartedListening)
	assert.Nil(t, found.Narrator)
	assert.Nil(t, found.Rating)
	assert.Nil(t, found.DateEndListened)
}

func TestRetrieveAudiobook_NotFound(t *testing.T) {
	t.Parallel()
	svc := NewService(setupTestDB(t))

	_, err := svc.RetrieveAudiobook(context.Background(), RetrieveAudiobookOptions{ID: 99})
	assert.ErrorIs(t, err, errcodes.NotFound("Audiobook"))
}

func TestListAudiobooks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewService(db)

	_, err := db.ExecContext(ctx, `
		INSERT INTO audiobooks (title, author, narrator, status, date_added) VALUES
			('Old', 'Ann Leckie', NULL, 'completed', '2023-01-01 10:00:00'),
			('Middle', 'Becky Chambers', 'Rachel Dulude', 'listening', '2024-01-01 10:00:00'),
			('New', 'Martha Wells', 'Kevin R. Free', 'to_listen', '2025-01-01 10:00:00')
	`)
	require.NoError(t, err)

	t.Run("newest first", func(t *testing.T) {
		audiobooks, err := svc.ListAudiobooks(ctx, ListAudiobooksOptions{})
		require.NoError(t, err)
		require.Len(t, audiobooks, 3)
		assert.Equal(t, "New", audiobooks[0].Title)
		assert.Equal(t, "Middle", audiobooks[1].Title)
		assert.Equal(t, "Old", audiobooks[2].Title)
	})

	t.Run("status filter", func(t *testing.T) {
		audiobooks, err := svc.ListAudiobooks(ctx, ListAudiobooksOptions{Status: pointerutil.String("listening")})
		require.NoError(t, err)
		require.Len(t, audiobooks, 1)
		assert.Equal(t, "Middle", audiobooks[0].Title)
	})

	t.Run("search matches title, author and narrator", func(t *testing.T) {
		audiobooks, err := svc.ListAudiobooks(ctx, ListAudiobooksOptions{Search: pointerutil.String("LECKIE")})
		require.NoError(t, err)
		require.Len(t, audiobooks, 1)
		assert.Equal(t, "Old", audiobooks[0].Title)

		audiobooks, err = svc.ListAudiobooks(ctx, ListAudiobooksOptions{Search: pointerutil.String("free")})
		require.NoError(t, err)
		require.Len(t, audiobooks, 1)
		assert.Equal(t, "New", audiobooks[0].Title)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		audiobooks, err := svc.ListAudiobooks(ctx, ListAudiobooksOptions{Search: pointerutil.String("%")})
		require.NoError(t, err)
		assert.Empty(t, audiobooks)
	})

	t.Run("empty store returns an empty slice", func(t *testing.T) {
		audiobooks, err := NewService(setupTestDB(t)).ListAudiobooks(ctx, ListAudiobooksOptions{})
		require.NoError(t, err)
		assert.NotNil(t, audiobooks)
		assert.Empty(t, audiobooks)
	})
}

func TestListListened(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(setupTestDB(t))

	createAudiobook(t, svc, &models.Audiobook{Title: "Second", Status: models.StatusCompleted, DateStartedListening: dateText("2024-02-01")})
	createAudiobook(t, svc, &models.Audiobook{Title: "In Progress", Status: models.StatusListening, DateStartedListening: dateText("2023-01-01")})
	createAudiobook(t, svc, &models.Audiobook{Title: "First", Status: models.StatusCompleted, DateStartedListening: dateText("2024-01-01")})
	createAudiobook(t, svc, &models.Audiobook{Title: "Undated", Status: models.StatusCompleted})

	listened, err := svc.ListListened(ctx)
	require.NoError(t, err)
	require.Len(t, listened, 3)

	assert.Equal(t, 1, listened[0].Number)
	assert.Equal(t, "Undated", listened[0].Title)
	assert.Equal(t, 2, listened[1].Number)
	assert.Equal(t, "First", listened[1].Title)
	assert.Equal(t, 3, listened[2].Number)
	assert.Equal(t, "Second", listened[2].Title)
}

func TestUpdateAudiobook(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(setupTestDB(t))

	original := createAudiobook(t, svc, &models.Audiobook{
		Title:    "Dune",
		Author:   pointerutil.String("Frank Herbert"),
		Narrator: pointerutil.String("Scott Brick"),
		CoverURL: pointerutil.String("https://covers.openlibrary.org/b/id/1-L.jpg"),
	})

	err := svc.UpdateAudiobook(ctx, &models.Audiobook{
		ID:     original.ID,
		Title:  "Dune Messiah",
		Status: models.StatusListening,
		Rating: pointerutil.Float64(4.5),
	})
	require.NoError(t, err)

	found, err := svc.RetrieveAudiobook(ctx, RetrieveAudiobookOptions{ID: original.ID})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", found.Title)
	assert.Equal(t, models.StatusListening, found.Status)
	require.NotNil(t, found.Rating)
	assert.InDelta(t, 4.5, *found.Rating, 0.001)
	assert.Nil(t, found.Author)
	assert.Nil(t, found.Narrator)

	t.Run("leaves id, date added and cover alone", func(t *testing.T) {
		assert.Equal(t, original.ID, found.ID)
		assert.True(t, original.DateAdded.Equal(found.DateAdded))
		require.NotNil(t, found.CoverURL)
		assert.Equal(t, *original.CoverURL, *found.CoverURL)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := svc.UpdateAudiobook(ctx, &models.Audiobook{ID: 999, Title: "Nope", Status: models.StatusCompleted})
		assert.ErrorIs(t, err, errcodes.NotFound("Audiobook"))
	})
}

func TestDeleteAudiobook(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(setupTestDB(t))

	audiobook := createAudiobook(t, svc, &models.Audiobook{Title: "Dune"})
	other := createAudiobook(t, svc, &models.Audiobook{Title: "Emma"})

	require.NoError(t, svc.DeleteAudiobook(ctx, audiobook.ID))

	_, err := svc.RetrieveAudiobook(ctx, RetrieveAudiobookOptions{ID: audiobook.ID})
	assert.ErrorIs(t, err, errcodes.NotFound("Audiobook"))

	err = svc.DeleteAudiobook(ctx, audiobook.ID)
	assert.ErrorIs(t, err, errcodes.NotFound("Audiobook"))

	_, err = svc.RetrieveAudiobook(ctx, RetrieveAudiobookOptions{ID: other.ID})
	assert.NoError(t, err)
}

func TestRetrieveStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewService(setupTestDB(t))

	t.Run("empty store", func(t *testing.T) {
		stats, err := svc.RetrieveStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, &models.AudiobookStats{}, stats)
	})

	createAudiobook(t, svc, &models.Audiobook{Title: "A", Status: models.StatusCompleted})
	createAudiobook(t, svc, &models.Audiobook{Title: "B", Status: models.StatusCompleted})
	createAudiobook(t, svc, &models.Audiobook{Title: "C", Status: models.StatusListening})
	createAudiobook(t, svc, &models.Audiobook{Title: "D", Status: models.StatusToListen})

	stats, err := svc.RetrieveStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.AudiobookStats{Total: 4, Completed: 2, Listening: 1, ToListen: 1}, stats)
	assert.Equal(t, stats.Total, stats.Completed+stats.Listening+stats.ToListen)

	t.Run("unknown statuses only count toward the total", func(t *testing.T) {
		createAudiobook(t, svc, &models.Audiobook{Title: "E", Status: "abandoned"})
		stats, err := svc.RetrieveStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, &models.AudiobookStats{Total: 5, Completed: 2, Listening: 1, ToListen: 1}, stats)
	})
}
