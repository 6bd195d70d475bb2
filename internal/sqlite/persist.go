package sqlite

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// persistTableJSONL writes every row of table to its JSONL file, keyed by
// column name, using the atomic write pattern. Rows are ordered by primary
// key so that files diff cleanly.
func persistTableJSONL(b *Backend, table string) error {
	file, ok := jsonlFile(table)
	if !ok {
		return fmt.Errorf("no JSONL file for table %s", table)
	}

	rows, err := b.db.Query("SELECT * FROM " + table + " ORDER BY id")
	if err != nil {
		return fmt.Errorf("querying %s for JSONL: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("getting columns for %s: %w", table, err)
	}

	var records []json.RawMessage
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scanning %s row: %w", table, err)
		}
		rec := make(map[string]any, len(cols))
		for i, col := range cols {
			rec[col] = jsonlValue(col, values[i])
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling %s row: %w", table, err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s for JSONL: %w", table, err)
	}

	return writeJSONL(filepath.Join(b.config.DataDir, file), records)
}

// jsonlValue converts a scanned column value for JSONL output.
func jsonlValue(col string, v any) any {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if s, ok := v.(string); ok && jsonColumns[col] {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if json.Valid([]byte(s)) {
			return json.RawMessage(s)
		}
	}
	return v
}

// persist rewrites the JSONL files of the given tables.
func (b *Backend) persist(tables ...string) error {
	for _, t := range tables {
		if err := persistTableJSONL(b, t); err != nil {
			return fmt.Errorf("persisting %s: %w", t, err)
		}
	}
	return nil
}
