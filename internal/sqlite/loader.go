// This file implements JSONL snapshot export and import.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// jsonlTableMapping maps JSONL filenames to their SQLite tables and column lists.
// The order matters: tables with foreign keys must load after their referenced tables.
var jsonlTableMapping = []struct {
	file    string
	table   string
	columns []string
}{
	{"todos.jsonl", "todos", []string{"id", "text", "completed", "position", "created_at"}},
	{"categories.jsonl", "categories", []string{"id", "name", "created_at"}},
	{"notes.jsonl", "notes", []string{"id", "title", "content", "pinned", "category_id", "color", "created_at"}},
}

// ImportStats counts what an import did per table.
type ImportStats struct {
	Table   string `json:"table"`
	Loaded  int    `json:"loaded"`
	Skipped int    `json:"skipped"`
}

// ExportJSONL writes one JSONL file per table into dir.
func (b *Backend) ExportJSONL(ctx context.Context, dir string) error {
	db, release, err := b.conn()
	if err != nil {
		return err
	}
	defer release()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	for _, mapping := range jsonlTableMapping {
		records, err := dumpTable(ctx, db, mapping.table, mapping.columns)
		if err != nil {
			return err
		}
		if err := writeJSONL(filepath.Join(dir, mapping.file), records); err != nil {
			return fmt.Errorf("writing %s: %w", mapping.file, err)
		}
	}
	return nil
}

// ImportJSONL reads the JSONL files in dir and upserts their rows. Loading
// is transactional: all tables load or none do. Malformed lines and rows
// that violate constraints are skipped and counted. Unknown fields are
// ignored.
func (b *Backend) ImportJSONL(ctx context.Context, dir string) ([]ImportStats, error) {
	db, release, err := b.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	var stats []ImportStats
	for _, mapping := range jsonlTableMapping {
		records, skipped, err := readJSONL(filepath.Join(dir, mapping.file))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		loaded, rejected, err := insertRecords(ctx, tx, mapping.table, mapping.columns, records)
		if err != nil {
			return nil, fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
		stats = append(stats, ImportStats{Table: mapping.table, Loaded: loaded, Skipped: skipped + rejected})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import transaction: %w", err)
	}
	return stats, nil
}

// dumpTable reads every row of table as a JSON object keyed by column.
func dumpTable(ctx context.Context, db *sql.DB, table string, columns []string) ([]json.RawMessage, error) {
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid ASC", strings.Join(columns, ", "), table))
	if err != nil {
		return nil, fmt.Errorf("querying %s for JSONL: %w", table, err)
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
		rec := make(map[string]any, len(columns))
		for i, col := range columns {
			rec[col] = values[i]
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s row: %w", table, err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s for JSONL: %w", table, err)
	}
	return records, nil
}

// insertRecords upserts parsed JSONL records into a table. Only columns
// listed in the mapping are extracted. Returns loaded and rejected counts.
func insertRecords(ctx context.Context, tx *sql.Tx, table string, columns []string, records []json.RawMessage) (int, int, error) {
	if len(records) == 0 {
		return 0, 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders,
	))
	if err != nil {
		return 0, 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	var loaded, rejected int
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			rejected++
			continue
		}
		args := make([]any, len(columns))
		for i, col := range columns {
			args[i] = normalizeJSONValue(obj[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			rejected++
			continue
		}
		loaded++
	}
	return loaded, rejected, nil
}

// normalizeJSONValue turns decoded JSON into values SQLite accepts.
// Integral floats become int64 so positions round-trip as integers.
func normalizeJSONValue(v any) any {
	switch x := v.(type) {
	case float64:
		if x == float64(int64(x)) {
			return int64(x)
		}
		return x
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		return string(b)
	default:
		return x
	}
}
