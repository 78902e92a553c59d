package database

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// TableShape classifies the persisted shape of the entries table. The
// classification looks only at columns and unique indexes, never at row data.
type TableShape int

const (
	// ShapeAbsent means no entries table exists.
	ShapeAbsent TableShape = iota
	// ShapeLegacyNoOwner is the original single-journal table: entries
	// exist but carry no user_id column, so rows cannot be attributed to
	// anyone.
	ShapeLegacyNoOwner
	// ShapeLegacyUniquePerDay is the per-user table that still enforces a
	// unique (user_id, date) pair, i.e. at most one entry per day.
	ShapeLegacyUniquePerDay
	// ShapeCurrent is the per-user table allowing many entries per day.
	ShapeCurrent
)

func (s TableShape) String() string {
	switch s {
	case ShapeAbsent:
		return "absent"
	case ShapeLegacyNoOwner:
		return "legacy-no-owner"
	case ShapeLegacyUniquePerDay:
		return "legacy-unique-per-day"
	case ShapeCurrent:
		return "current"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// InspectEntriesShape classifies the on-disk entries table of the connected
// database.
func InspectEntriesShape(db *gorm.DB) (TableShape, error) {
	if !db.Migrator().HasTable(entriesTable) {
		return ShapeAbsent, nil
	}

	cols, err := tableColumns(db, entriesTable)
	if err != nil {
		return ShapeAbsent, fmt.Errorf("failed to inspect %s columns: %w", entriesTable, err)
	}
	if !cols["user_id"] {
		return ShapeLegacyNoOwner, nil
	}

	unique, err := hasUniqueOwnerDateIndex(db, entriesTable)
	if err != nil {
		return ShapeAbsent, fmt.Errorf("failed to inspect %s indexes: %w", entriesTable, err)
	}
	if unique {
		return ShapeLegacyUniquePerDay, nil
	}
	return ShapeCurrent, nil
}

func tableColumns(db *gorm.DB, table string) (map[string]bool, error) {
	types, err := db.Migrator().ColumnTypes(table)
	if err != nil {
		return nil, err
	}
	cols := make(map[string]bool, len(types))
	for _, t := range types {
		cols[strings.ToLower(t.Name())] = true
	}
	return cols, nil
}

// hasUniqueOwnerDateIndex reports whether the table enforces uniqueness over
// exactly (user_id, date). SQLite expresses a table-level UNIQUE constraint as
// an auto index, which PRAGMA index_list reports but some migrator
// implementations hide, so both drivers are introspected with raw catalog
// queries.
func hasUniqueOwnerDateIndex(db *gorm.DB, table string) (bool, error) {
	switch db.Dialector.Name() {
	case "sqlite":
		return sqliteUniqueOwnerDateIndex(db, table)
	case "postgres":
		return postgresUniqueOwnerDateIndex(db, table)
	default:
		return false, fmt.Errorf("unsupported dialect %q", db.Dialector.Name())
	}
}

func sqliteUniqueOwnerDateIndex(db *gorm.DB, table string) (bool, error) {
	var indexes []struct {
		Seq    int    `gorm:"column:seq"`
		Name   string `gorm:"column:name"`
		Unique int    `gorm:"column:unique"`
		Origin string `gorm:"column:origin"`
	}
	if err := db.Raw(fmt.Sprintf("PRAGMA index_list(%q)", table)).Scan(&indexes).Error; err != nil {
		return false, err
	}

	for _, idx := range indexes {
		if idx.Unique == 0 {
			continue
		}
		var cols []struct {
			Name string `gorm:"column:name"`
		}
		if err := db.Raw(fmt.Sprintf("PRAGMA index_info(%q)", idx.Name)).Scan(&cols).Error; err != nil {
			return false, err
		}
		names := make([]string, 0, len(cols))
		for _, c := range cols {
			names = append(names, strings.ToLower(c.Name))
		}
		if isOwnerDatePair(names) {
			return true, nil
		}
	}
	return false, nil
}

func postgresUniqueOwnerDateIndex(db *gorm.DB, table string) (bool, error) {
	// One row per unique index on the table, with its column list aggregated
	// in index column order.
	const query = `
SELECT i.relname AS name, array_to_string(array_agg(a.attname ORDER BY x.ordinality), ',') AS columns
FROM pg_index ix
JOIN pg_class t ON t.oid = ix.indrelid
JOIN pg_class i ON i.oid = ix.indexrelid
JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS x(attnum, ordinality) ON TRUE
JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = x.attnum
WHERE t.relname = ? AND ix.indisunique AND NOT ix.indisprimary
GROUP BY i.relname`

	var indexes []struct {
		Name    string `gorm:"column:name"`
		Columns string `gorm:"column:columns"`
	}
	if err := db.Raw(query, table).Scan(&indexes).Error; err != nil {
		return false, err
	}

	for _, idx := range indexes {
		if isOwnerDatePair(strings.Split(strings.ToLower(idx.Columns), ",")) {
			return true, nil
		}
	}
	return false, nil
}

func isOwnerDatePair(cols []string) bool {
	if len(cols) != 2 {
		return false
	}
	sorted := append([]string(nil), cols...)
	sort.Strings(sorted)
	return sorted[0] == "date" && sorted[1] == "user_id"
}
