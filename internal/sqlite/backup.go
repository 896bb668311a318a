// This file implements JSONL backup export and import.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// backupTableMapping maps JSONL filenames to their SQLite tables and column
// lists. The order matters: tables with foreign keys come after the tables
// they reference.
var backupTableMapping = []struct {
	file    string
	table   string
	columns []string
}{
	{"clients.jsonl", "clients", strings.Split(clientColumns, ", ")},
	{"cases.jsonl", "cases", strings.Split(caseColumns, ", ")},
	{"prospects.jsonl", "prospects", strings.Split(prospectColumns, ", ")},
	{"consultations.jsonl", "consultations", strings.Split(consultationColumns, ", ")},
	{"parties.jsonl", "parties", strings.Split(partyColumns, ", ")},
	{"activities.jsonl", "activities", strings.Split(activityColumns, ", ")},
	{"catalog.jsonl", "catalog", []string{"catalog", "code", "label", "ordinal"}},
}

// BackupStats reports per-table record counts for an export or import.
type BackupStats struct {
	Written map[string]int `json:"written,omitempty"`
	Loaded  map[string]int `json:"loaded,omitempty"`
	Skipped map[string]int `json:"skipped,omitempty"`
}

// Export writes every table to <dir>/<table>.jsonl, one JSON object per
// row keyed by column name. Each file is replaced atomically.
func (b *Backend) Export(dir string) (*BackupStats, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup dir: %w", err)
	}
	stats := &BackupStats{Written: make(map[string]int)}
	err := b.withDB(func(db *sql.DB) error {
		for _, m := range backupTableMapping {
			records, err := dumpTable(db, m.table, m.columns)
			if err != nil {
				return err
			}
			if err := writeJSONL(filepath.Join(dir, m.file), records); err != nil {
				return fmt.Errorf("writing %s: %w", m.file, err)
			}
			stats.Written[m.table] = len(records)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.log.Info("backup exported", zap.String("dir", dir), zap.Any("written", stats.Written))
	return stats, nil
}

// dumpTable reads all rows of table as JSON objects.
func dumpTable(db *sql.DB, table string, columns []string) ([]json.RawMessage, error) {
	rows, err := db.Query(fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), table))
	if err != nil {
		return nil, fmt.Errorf("dumping %s: %w", table, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", table, err)
		}
		obj := make(map[string]any, len(columns))
		for i, col := range columns {
			if raw, ok := values[i].([]byte); ok {
				obj[col] = string(raw)
				continue
			}
			obj[col] = values[i]
		}
		data, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s row: %w", table, err)
		}
		records = append(records, data)
	}
	return records, rows.Err()
}

// Import replaces the contents of every table with the records found in
// dir. Loading is transactional: either all tables are replaced or none
// is. Missing files leave their table empty, malformed lines and records
// that violate constraints are skipped, and unknown fields are ignored.
func (b *Backend) Import(dir string) (*BackupStats, error) {
	stats := &BackupStats{Loaded: make(map[string]int), Skipped: make(map[string]int)}
	err := b.withWriteDB(func(db *sql.DB) error {
		// PRAGMA foreign_keys is a no-op inside a transaction; the backend
		// holds a single connection, so toggling it here covers the tx.
		if _, err := db.Exec("PRAGMA foreign_keys = OFF"); err != nil {
			return fmt.Errorf("disabling foreign keys for import: %w", err)
		}
		defer db.Exec("PRAGMA foreign_keys = ON")

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning import transaction: %w", err)
		}
		defer tx.Rollback()

		for i := len(backupTableMapping) - 1; i >= 0; i-- {
			if _, err := tx.Exec("DELETE FROM " + backupTableMapping[i].table); err != nil {
				return fmt.Errorf("clearing %s: %w", backupTableMapping[i].table, err)
			}
		}

		for _, m := range backupTableMapping {
			records, malformed, err := readJSONL(filepath.Join(dir, m.file))
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return err
			}
			loaded, rejected, err := insertRecords(tx, m.table, m.columns, records)
			if err != nil {
				return fmt.Errorf("loading %s into %s: %w", m.file, m.table, err)
			}
			stats.Loaded[m.table] = loaded
			stats.Skipped[m.table] = malformed + rejected
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing import transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := b.withDB(func(db *sql.DB) error { return seedCatalogs(db) }); err != nil {
		return nil, fmt.Errorf("reseeding catalogs: %w", err)
	}
	b.log.Info("backup imported", zap.String("dir", dir),
		zap.Any("loaded", stats.Loaded), zap.Any("skipped", stats.Skipped))
	return stats, nil
}

// insertRecords inserts parsed JSONL records into a SQLite table. Only the
// listed columns are read from each record; absent columns take their
// schema default, and rows the database rejects are counted as skipped.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) (int, int, error) {
	loaded, skipped := 0, 0
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			skipped++
			continue
		}

		var cols, placeholders []string
		var args []any
		for _, col := range columns {
			val, ok := obj[col]
			if !ok {
				continue
			}
			switch v := val.(type) {
			case float64:
				// JSON numbers decode as float64; every numeric column is an integer.
				val = int64(v)
			case map[string]any, []any:
				continue
			}
			cols = append(cols, col)
			placeholders = append(placeholders, "?")
			args = append(args, val)
		}
		if len(cols) == 0 {
			skipped++
			continue
		}

		insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
		if _, err := tx.Exec(insertSQL, args...); err != nil {
			skipped++
			continue
		}
		loaded++
	}
	return loaded, skipped, nil
}
