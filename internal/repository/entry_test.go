package repository

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupEntryRepo(t *testing.T) (*gorm.DB, EntryRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(context.Background(), db))

	for _, name := range []string{"ada", "brendan"} {
		require.NoError(t, db.Create(&models.User{Username: name, PasswordHash: "x"}).Error)
	}
	return db, NewEntryRepository(db)
}

func TestEntryRepository_CreateAndGet(t *testing.T) {
	_, repo := setupEntryRepo(t)
	ctx := context.Background()

	entry := &models.Entry{
		UserID:    1,
		Date:      "2024-03-01",
		Gratitude: "morning light",
		Feeling:   "rested",
		OnMind:    "the week ahead",
	}
	require.NoError(t, repo.Create(ctx, entry))
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, 1, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2024-03-01", got.Date)
	assert.Equal(t, "morning light", got.Gratitude)
	assert.Equal(t, "rested", got.Feeling)
	assert.Equal(t, "the week ahead", got.OnMind)
}

func TestEntryRepository_EmptyFieldsRoundTrip(t *testing.T) {
	_, repo := setupEntryRepo(t)
	ctx := context.Background()

	entry := &models.Entry{UserID: 1, Date: "2024-03-01"}
	require.NoError(t, repo.Create(ctx, entry))

	got, err := repo.GetByID(ctx, 1, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "", got.Gratitude)
	assert.Equal(t, "", got.Feeling)
	assert.Equal(t, "", got.OnMind)
}

func TestEntryRepository_GetAbsent(t *testing.T) {
	_, repo := setupEntryRepo(t)

	got, err := repo.GetByID(context.Background(), 1, 999)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestEntryRepository_OwnerScoping(t *testing.T) {
	_, repo := setupEntryRepo(t)
	ctx := context.Background()

	entry := &models.Entry{UserID: 1, Date: "2024-03-01", Gratitude: "private"}
	require.NoError(t, repo.Create(ctx, entry))

	// A different user sees nothing, exactly as if the row did not exist.
	got, err := repo.GetByID(ctx, 2, entry.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)

	updated, err := repo.Update(ctx, 2, entry.ID, "stolen", "", "")
	assert.NoError(t, err)
	assert.Nil(t, updated)

	deleted, err := repo.Delete(ctx, 2, entry.ID)
	assert.NoError(t, err)
	assert.False(t, deleted)

	// The owner still sees the untouched row.
	got, err = repo.GetByID(ctx, 1, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "private", got.Gratitude)
}

func TestEntryRepository_Update(t *testing.T) {
	_, repo := setupEntryRepo(t)
	ctx := context.Background()

	entry := &models.Entry{UserID: 1, Date: "2024-03-01", Gratitude: "first draft", Feeling: "unsure"}
	require.NoError(t, repo.Create(ctx, entry))
	originalCreated := entry.CreatedAt
	originalUpdated := entry.UpdatedAt

	time.Sleep(10 * time.Millisecond)

	got, err := repo.Update(ctx, 1, entry.ID, "second draft", "", "an empty mind")
	require.NoError(t, err)
	require.NotNil(t, got)

	// All three text fields are replaced, empty strings included.
	assert.Equal(t, "second draft", got.Gratitude)
	assert.Equal(t, "", got.Feeling)
	assert.Equal(t, "an empty mind", got.OnMind)

	// Date and creation time are immutable; the update timestamp moved.
	assert.Equal(t, "2024-03-01", got.Date)
	assert.Equal(t, originalCreated.Unix(), got.CreatedAt.Unix())
	assert.True(t, got.UpdatedAt.After(originalUpdated))
}

func TestEntryRepository_UpdateMissing(t *testing.T) {
	_, repo := setupEntryRepo(t)

	got, err := repo.Update(context.Background(), 1, 999, "a", "b", "c")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestEntryRepository_ListByDateOrdering(t *testing.T) {
	_, repo := setupEntryRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, text := range []string{"morning", "noon", "evening"} {
		entry := &models.Entry{
			UserID:    1,
			Date:      "2024-03-01",
			Gratitude: text,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Create(ctx, entry))
	}
	// Noise: another day and another user on the same day.
	require.NoError(t, repo.Create(ctx, &models.Entry{UserID: 1, Date: "2024-03-02", Gratitude: "other day"}))
	require.NoError(t, repo.Create(ctx, &models.Entry{UserID: 2, Date: "2024-03-01", Gratitude: "other user"}))

	entries, err := repo.ListByDate(ctx, 1, "2024-03-01")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "morning", entries[0].Gratitude)
	assert.Equal(t, "noon", entries[1].Gratitude)
	assert.Equal(t, "evening", entries[2].Gratitude)
}

func TestEntryRepository_ListByDateEmpty(t *testing.T) {
	_, repo := setupEntryRepo(t)

	entries, err := repo.ListByDate(context.Background(), 1, "2024-03-01")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEntryRepository_Delete(t *testing.T) {
	_, repo := setupEntryRepo(t)
	ctx := context.Background()

	entry := &models.Entry{UserID: 1, Date: "2024-03-01"}
	require.NoError(t, repo.Create(ctx, entry))

	deleted, err := repo.Delete(ctx, 1, entry.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := repo.GetByID(ctx, 1, entry.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// A second delete of the same id reports nothing removed.
	deleted, err = repo.Delete(ctx, 1, entry.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestEntryRepository_ListDates(t *testing.T) {
	_, repo := setupEntryRepo(t)
	ctx := context.Background()

	for _, e := range []models.Entry{
		{UserID: 1, Date: "2024-03-01"},
		{UserID: 1, Date: "2024-03-01"},
		{UserID: 1, Date: "2024-02-15"},
		{UserID: 1, Date: "2024-03-10"},
		{UserID: 2, Date: "2024-03-05"},
	} {
		entry := e
		require.NoError(t, repo.Create(ctx, &entry))
	}

	summaries, err := repo.ListDates(ctx, 1)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	// Newest date first, each date once, with the number of entries it holds.
	assert.Equal(t, models.DateSummary{Date: "2024-03-10", EntryCount: 1}, summaries[0])
	assert.Equal(t, models.DateSummary{Date: "2024-03-01", EntryCount: 2}, summaries[1])
	assert.Equal(t, models.DateSummary{Date: "2024-02-15", EntryCount: 1}, summaries[2])
}

func TestEntryRepository_ListDatesEmpty(t *testing.T) {
	_, repo := setupEntryRepo(t)

	summaries, err := repo.ListDates(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
