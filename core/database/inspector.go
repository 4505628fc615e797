package database

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string
	Extra   string
}

// GetTableColumns retrieves the column definitions for a given table.
// Field and Type are lower-cased on both dialects.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	if db.Dialector.Name() == DriverSQLite {
		type sqliteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string `gorm:"column:dflt_value"`
			Pk         int
		}
		var sqliteCols []sqliteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&sqliteCols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			null := "YES"
			if col.Notnull == 1 {
				null = "NO"
			}
			columns = append(columns, ColumnInfo{
				Field:   strings.ToLower(col.Name),
				Type:    strings.ToLower(col.Type),
				Null:    null,
				Default: col.DefaultVal,
			})
		}
		return columns, nil
	}

	if err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// SchemaMismatch lists the required columns a table lacks.
type SchemaMismatch struct {
	Table   string
	Missing []string
}

// VerifySchema checks that every table in required exists with at least the
// listed columns. It returns one mismatch per deficient table, sorted by table name.
func VerifySchema(db *gorm.DB, required map[string][]string) ([]SchemaMismatch, error) {
	tables := make([]string, 0, len(required))
	for table := range required {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var mismatches []SchemaMismatch
	for _, table := range tables {
		cols, err := GetTableColumns(db, table)
		if err != nil {
			return nil, err
		}
		present := make(map[string]bool, len(cols))
		for _, c := range cols {
			present[c.Field] = true
		}

		var missing []string
		for _, want := range required[table] {
			if !present[strings.ToLower(want)] {
				missing = append(missing, want)
			}
		}
		if len(missing) > 0 {
			mismatches = append(mismatches, SchemaMismatch{Table: table, Missing: missing})
		}
	}
	return mismatches, nil
}
