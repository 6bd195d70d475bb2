package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mesh-intelligence/reffo/pkg/types"
)

// jsonlTableMapping maps JSONL files to their SQLite tables and columns.
// Tables with foreign keys load after the tables they reference.
var jsonlTableMapping = []struct {
	file    string
	table   string
	columns []string
}{
	{"refs.jsonl", types.TableRefs, refColumns},
	{"offers.jsonl", types.TableOffers, offerColumns},
	{"negotiations.jsonl", types.TableNegotiations, negotiationColumns},
	{"media.jsonl", types.TableMedia, mediaColumns},
	{"settings.jsonl", types.TableSettings, settingsColumns},
}

// jsonlFile returns the JSONL file name for a table.
func jsonlFile(table string) (string, bool) {
	for _, m := range jsonlTableMapping {
		if m.table == table {
			return m.file, true
		}
	}
	return "", false
}

// loadAllJSONL reads each JSONL file from dataDir and inserts its records
// into the matching table. Loading is transactional: all files load or the
// database stays empty. Malformed lines, records that violate constraints,
// and unknown fields are skipped. It returns the number of rows loaded per
// table.
func loadAllJSONL(db *sql.DB, dataDir string) (map[string]int, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA defer_foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("deferring foreign keys for load: %w", err)
	}

	loaded := make(map[string]int, len(jsonlTableMapping))
	for _, mapping := range jsonlTableMapping {
		records, err := readJSONL(filepath.Join(dataDir, mapping.file))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		if len(records) == 0 {
			continue
		}
		n, err := insertRecords(tx, mapping.table, mapping.columns, records)
		if err != nil {
			return nil, fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
		loaded[mapping.table] = n
	}

	// Orphans from a partial write would fail the deferred foreign key
	// check at commit; drop them first.
	for _, orphan := range []string{
		"DELETE FROM offers WHERE ref_id NOT IN (SELECT id FROM refs)",
		"DELETE FROM media WHERE ref_id NOT IN (SELECT id FROM refs)",
	} {
		if _, err := tx.Exec(orphan); err != nil {
			return nil, fmt.Errorf("dropping orphans: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing load transaction: %w", err)
	}
	return loaded, nil
}

// insertRecords inserts parsed JSONL records into a table. Only the mapped
// columns are read; a column absent from a record takes its SQL default.
// Nested JSON values are stored as JSON text.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) (int, error) {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}

	inserted := 0
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}

		var cols []string
		for col := range obj {
			if known[col] {
				cols = append(cols, col)
			}
		}
		if len(cols) == 0 {
			continue
		}
		sort.Strings(cols)

		args := make([]any, len(cols))
		for i, col := range cols {
			switch v := obj[col].(type) {
			case map[string]any, []any:
				b, err := json.Marshal(v)
				if err != nil {
					args[i] = nil
					continue
				}
				args[i] = string(b)
			case bool:
				if v {
					args[i] = 1
				} else {
					args[i] = 0
				}
			default:
				args[i] = v
			}
		}

		insertSQL := fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s)",
			table,
			strings.Join(cols, ", "),
			strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
		)
		if _, err := tx.Exec(insertSQL, args...); err != nil {
			// Constraint violations skip the record.
			continue
		}
		inserted++
	}
	return inserted, nil
}
