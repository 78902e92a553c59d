package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

// createLegacyNoOwnerTable builds the original single-journal table: no
// user_id column at all.
func createLegacyNoOwnerTable(t *testing.T, db *gorm.DB, rows int) {
	t.Helper()
	require.NoError(t, db.Exec(`CREATE TABLE entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		gratitude TEXT DEFAULT '',
		feeling TEXT DEFAULT '',
		on_mind TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`).Error)
	for i := 0; i < rows; i++ {
		require.NoError(t, db.Exec(
			"INSERT INTO entries (date, gratitude) VALUES (?, ?)",
			fmt.Sprintf("2023-01-%02d", i+1), "pre-account entry").Error)
	}
}

// createLegacyUniquePerDayTable builds the per-user table that still enforces
// one entry per user per day.
func createLegacyUniquePerDayTable(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Exec(`CREATE TABLE entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		gratitude TEXT DEFAULT '',
		feeling TEXT DEFAULT '',
		on_mind TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, date)
	)`).Error)
}

type legacyRow struct {
	ID        uint
	UserID    uint
	Date      string
	Gratitude string
	Feeling   string
	OnMind    string
}

func insertLegacyRow(t *testing.T, db *gorm.DB, r legacyRow) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO entries (id, user_id, date, gratitude, feeling, on_mind, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Date, r.Gratitude, r.Feeling, r.OnMind,
		time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)).Error)
}

func TestInspectEntriesShape(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		db := openTestDB(t)
		shape, err := InspectEntriesShape(db)
		require.NoError(t, err)
		assert.Equal(t, ShapeAbsent, shape)
	})

	t.Run("legacy no owner", func(t *testing.T) {
		db := openTestDB(t)
		createLegacyNoOwnerTable(t, db, 0)
		shape, err := InspectEntriesShape(db)
		require.NoError(t, err)
		assert.Equal(t, ShapeLegacyNoOwner, shape)
	})

	t.Run("legacy unique per day", func(t *testing.T) {
		db := openTestDB(t)
		createLegacyUniquePerDayTable(t, db)
		shape, err := InspectEntriesShape(db)
		require.NoError(t, err)
		assert.Equal(t, ShapeLegacyUniquePerDay, shape)
	})

	t.Run("current", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, RunMigrations(context.Background(), db))
		shape, err := InspectEntriesShape(db)
		require.NoError(t, err)
		assert.Equal(t, ShapeCurrent, shape)
	})
}

func TestMigrateFreshDatabase(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, db))

	shape, err := InspectEntriesShape(db)
	require.NoError(t, err)
	assert.Equal(t, ShapeCurrent, shape)

	// Both steps are recorded in the version marker table.
	store := NewMigrationStore(db)
	applied, err := store.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)

	// The current shape allows several entries per user per day.
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&models.Entry{
			UserID: 1, Date: "2024-03-01", Gratitude: fmt.Sprintf("entry %d", i),
		}).Error)
	}
	var count int64
	require.NoError(t, db.Model(&models.Entry{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestMigrateDiscardsUnownedEntries(t *testing.T) {
	db := openTestDB(t)
	createLegacyNoOwnerTable(t, db, 3)

	require.NoError(t, RunMigrations(context.Background(), db))

	shape, err := InspectEntriesShape(db)
	require.NoError(t, err)
	assert.Equal(t, ShapeCurrent, shape)

	// The unattributable rows are gone, not remapped to any user.
	var count int64
	require.NoError(t, db.Model(&models.Entry{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestMigratePreservesOwnedEntries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	createLegacyUniquePerDayTable(t, db)

	rows := []legacyRow{
		{ID: 1, UserID: 1, Date: "2024-02-15", Gratitude: "coffee", Feeling: "calm", OnMind: "deadlines"},
		{ID: 2, UserID: 1, Date: "2024-03-01", Gratitude: "", Feeling: "tired", OnMind: ""},
		{ID: 7, UserID: 2, Date: "2024-03-01", Gratitude: "rain", Feeling: "", OnMind: "the garden"},
	}
	for _, r := range rows {
		insertLegacyRow(t, db, r)
	}

	require.NoError(t, RunMigrations(ctx, db))

	shape, err := InspectEntriesShape(db)
	require.NoError(t, err)
	assert.Equal(t, ShapeCurrent, shape)

	// Every row survived field-for-field, empty strings included.
	var migrated []models.Entry
	require.NoError(t, db.Order("id ASC").Find(&migrated).Error)
	require.Len(t, migrated, len(rows))
	for i, want := range rows {
		got := migrated[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.UserID, got.UserID)
		assert.Equal(t, want.Date, got.Date)
		assert.Equal(t, want.Gratitude, got.Gratitude)
		assert.Equal(t, want.Feeling, got.Feeling)
		assert.Equal(t, want.OnMind, got.OnMind)
		assert.EqualValues(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Unix(), got.CreatedAt.Unix())
	}

	// The one-per-day restriction is gone: a second entry for an existing
	// (user, date) pair now succeeds.
	second := &models.Entry{UserID: 1, Date: "2024-03-01", Gratitude: "an evening walk"}
	require.NoError(t, db.Create(second).Error)
	assert.Greater(t, second.ID, uint(7), "new ids continue past the copied rows")
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	createLegacyUniquePerDayTable(t, db)
	insertLegacyRow(t, db, legacyRow{ID: 1, UserID: 1, Date: "2024-02-15", Gratitude: "tea"})

	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))

	var count int64
	require.NoError(t, db.Model(&models.Entry{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var logCount int64
	require.NoError(t, db.Model(&MigrationLog{}).Count(&logCount).Error)
	assert.EqualValues(t, 2, logCount, "no duplicate marker rows after a second run")
}

func TestMigrateRecoversFromStaleSwapTable(t *testing.T) {
	// An interrupted earlier upgrade can leave entries_migrating behind.
	// The original table is still authoritative; the migration must rebuild
	// cleanly without duplicating or dropping rows.
	db := openTestDB(t)
	createLegacyUniquePerDayTable(t, db)
	insertLegacyRow(t, db, legacyRow{ID: 1, UserID: 1, Date: "2024-02-15", Gratitude: "tea"})
	require.NoError(t, db.Exec("CREATE TABLE entries_migrating (id INTEGER PRIMARY KEY)").Error)

	require.NoError(t, RunMigrations(context.Background(), db))

	var entries []models.Entry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, "tea", entries[0].Gratitude)
	assert.False(t, db.Migrator().HasTable("entries_migrating"))
}

func TestRollbackMultiEntriesPerDay(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, RunMigrations(ctx, db))

	require.NoError(t, db.Create(&models.Entry{UserID: 1, Date: "2024-03-01"}).Error)

	require.NoError(t, RollbackMigration(ctx, db, 2))

	shape, err := InspectEntriesShape(db)
	require.NoError(t, err)
	assert.Equal(t, ShapeLegacyUniquePerDay, shape)

	// The reinstated constraint rejects a second same-day entry.
	err = db.Create(&models.Entry{UserID: 1, Date: "2024-03-01"}).Error
	assert.Error(t, err)
}

func TestRollbackScopedEntriesIsRefused(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RollbackMigration(ctx, db, 2))

	err := RollbackMigration(ctx, db, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIrreversible)
}

func TestMigrateFailureLeavesOriginalTableIntact(t *testing.T) {
	db := openTestDB(t)
	createLegacyUniquePerDayTable(t, db)
	insertLegacyRow(t, db, legacyRow{ID: 1, UserID: 1, Date: "2024-02-15", Gratitude: "tea"})

	// Rename a column the copy statement depends on so the copy fails before
	// the destructive swap is reached.
	require.NoError(t, db.Exec("ALTER TABLE entries RENAME COLUMN gratitude TO gratitude_old").Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		return upMultiEntriesPerDay(context.Background(), tx)
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Table("entries").Count(&count).Error)
	assert.EqualValues(t, 1, count, "original rows untouched after failed copy")
}
