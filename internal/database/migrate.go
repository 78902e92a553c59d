package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"inkwell/internal/middleware"

	"gorm.io/gorm"
)

const (
	entriesTable   = "entries"
	usersTable     = "users"
	migratingTable = "entries_migrating"
)

// Migration is one named, ordered schema step. Every step is idempotent: it
// inspects the table shape it is about to change and no-ops when the change is
// already in place, so running against a pre-marker legacy database is safe.
type Migration struct {
	Version int
	Name    string
	Up      func(ctx context.Context, tx *gorm.DB) error
	Down    func(ctx context.Context, tx *gorm.DB) error
}

func (m *Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

// ErrIrreversible is returned when rolling back a migration whose forward step
// discarded data.
var ErrIrreversible = errors.New("migration cannot be rolled back")

var migrations = []Migration{
	{
		Version: 1,
		Name:    "scoped_entries",
		Up:      upScopedEntries,
		Down: func(ctx context.Context, tx *gorm.DB) error {
			// The forward step discarded the unowned legacy rows; there is
			// nothing to restore them from.
			return fmt.Errorf("scoped_entries: %w", ErrIrreversible)
		},
	},
	{
		Version: 2,
		Name:    "multi_entries_per_day",
		Up:      upMultiEntriesPerDay,
		Down:    downMultiEntriesPerDay,
	},
}

// GetMigrations returns the ordered migration chain.
func GetMigrations() []Migration {
	return migrations
}

// GetMigrationByVersion returns the migration with the given version, or nil.
func GetMigrationByVersion(version int) *Migration {
	for i := range migrations {
		if migrations[i].Version == version {
			return &migrations[i]
		}
	}
	return nil
}

// upScopedEntries is the lossy branch of the schema history: it retires the
// original single-journal table. Rows in that table carry no owner column and
// cannot be attributed to any user, so they are discarded by policy, with a
// loud operational log rather than an error. It then guarantees the users
// table and a current-shape entries table exist.
func upScopedEntries(ctx context.Context, tx *gorm.DB) error {
	shape, err := InspectEntriesShape(tx)
	if err != nil {
		return err
	}

	if shape == ShapeLegacyNoOwner {
		var discarded int64
		if err := tx.WithContext(ctx).Table(entriesTable).Count(&discarded).Error; err != nil {
			return fmt.Errorf("failed to count legacy rows: %w", err)
		}
		if err := tx.WithContext(ctx).Exec("DROP TABLE " + entriesTable).Error; err != nil {
			return fmt.Errorf("failed to drop unowned entries table: %w", err)
		}
		// Deliberate, designed data loss: the old rows had no owner and
		// were not migrated. This must stay visible in the logs.
		middleware.Logger.Warn("Discarded pre-account journal entries during schema upgrade",
			slog.Int64("discarded_rows", discarded),
			slog.String("reason", "legacy table has no user_id column; rows cannot be attributed to a user"))
	}

	if err := tx.WithContext(ctx).Exec(createUsersSQL(tx)).Error; err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	if err := tx.WithContext(ctx).Exec(createEntriesSQL(tx, entriesTable)).Error; err != nil {
		return fmt.Errorf("failed to create entries table: %w", err)
	}
	return ensureEntryIndexes(ctx, tx)
}

// upMultiEntriesPerDay is the lossless branch: it lifts the one-entry-per-day
// restriction by rebuilding the table without the unique (user_id, date)
// index. Every row is copied verbatim before the old table is touched; the
// drop-and-rename swap is the last step, so a failure anywhere earlier leaves
// the original table intact.
func upMultiEntriesPerDay(ctx context.Context, tx *gorm.DB) error {
	shape, err := InspectEntriesShape(tx)
	if err != nil {
		return err
	}
	if shape != ShapeLegacyUniquePerDay {
		return nil
	}
	if err := copyAndSwapEntries(ctx, tx, createEntriesSQL(tx, migratingTable)); err != nil {
		return err
	}
	return ensureEntryIndexes(ctx, tx)
}

// downMultiEntriesPerDay reintroduces the unique (user_id, date) index via the
// same copy-and-swap. It fails, leaving the table untouched, if any user
// already holds two entries for one day.
func downMultiEntriesPerDay(ctx context.Context, tx *gorm.DB) error {
	shape, err := InspectEntriesShape(tx)
	if err != nil {
		return err
	}
	if shape != ShapeCurrent {
		return nil
	}
	ddl := createEntriesSQL(tx, migratingTable)
	uniqueIdx := fmt.Sprintf("CREATE UNIQUE INDEX idx_entries_owner_date ON %s(user_id, date)", migratingTable)
	return copyAndSwapEntries(ctx, tx, ddl, uniqueIdx)
}

// copyAndSwapEntries rebuilds the entries table from the given DDL. The copy
// happens first; the destructive drop/rename pair runs only after every row
// has landed in the replacement table.
func copyAndSwapEntries(ctx context.Context, tx *gorm.DB, ddl string, extraDDL ...string) error {
	if tx.Migrator().HasTable(migratingTable) {
		// Leftover from an interrupted earlier run; the original table is
		// still authoritative, so rebuild from scratch.
		if err := tx.WithContext(ctx).Exec("DROP TABLE " + migratingTable).Error; err != nil {
			return fmt.Errorf("failed to clear stale migration table: %w", err)
		}
	}

	if err := tx.WithContext(ctx).Exec(ddl).Error; err != nil {
		return fmt.Errorf("failed to create replacement entries table: %w", err)
	}
	for _, stmt := range extraDDL {
		if err := tx.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to prepare replacement entries table: %w", err)
		}
	}

	copySQL := fmt.Sprintf(
		`INSERT INTO %s (id, user_id, date, gratitude, feeling, on_mind, created_at, updated_at)
		 SELECT id, user_id, date, gratitude, feeling, on_mind, created_at, updated_at FROM %s`,
		migratingTable, entriesTable)
	if err := tx.WithContext(ctx).Exec(copySQL).Error; err != nil {
		return fmt.Errorf("failed to copy entries into replacement table: %w", err)
	}

	// Destructive point. Only reached after the copy succeeded, and inside
	// the surrounding transaction.
	if err := tx.WithContext(ctx).Exec("DROP TABLE " + entriesTable).Error; err != nil {
		return fmt.Errorf("failed to drop old entries table: %w", err)
	}
	renameSQL := fmt.Sprintf("ALTER TABLE %s RENAME TO %s", migratingTable, entriesTable)
	if err := tx.WithContext(ctx).Exec(renameSQL).Error; err != nil {
		return fmt.Errorf("failed to rename replacement entries table: %w", err)
	}

	if tx.Dialector.Name() == "postgres" {
		// Copied rows keep their ids; move the identity sequence past them.
		reseed := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s','id'), COALESCE((SELECT MAX(id) FROM %s), 1))",
			entriesTable, entriesTable)
		if err := tx.WithContext(ctx).Exec(reseed).Error; err != nil {
			return fmt.Errorf("failed to reseed entries id sequence: %w", err)
		}
	}
	return nil
}

func ensureEntryIndexes(ctx context.Context, tx *gorm.DB) error {
	stmts := []string{
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_entries_user_id ON %s(user_id)", entriesTable),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_entries_user_date ON %s(user_id, date)", entriesTable),
	}
	for _, stmt := range stmts {
		if err := tx.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create entries index: %w", err)
		}
	}
	return nil
}

// createEntriesSQL returns the current-shape entries DDL for the connected
// dialect. No unique constraint over (user_id, date): multiplicity per day is
// the fixed policy of the current schema.
func createEntriesSQL(db *gorm.DB, table string) string {
	switch db.Dialector.Name() {
	case "postgres":
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES %s(id),
			date TEXT NOT NULL,
			gratitude TEXT NOT NULL DEFAULT '',
			feeling TEXT NOT NULL DEFAULT '',
			on_mind TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, table, usersTable)
	default:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			gratitude TEXT NOT NULL DEFAULT '',
			feeling TEXT NOT NULL DEFAULT '',
			on_mind TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES %s(id)
		)`, table, usersTable)
	}
}

func createUsersSQL(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "postgres":
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, usersTable)
	default:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, usersTable)
	}
}
