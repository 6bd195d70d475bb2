package sqlite

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/reffo/pkg/types"
)

// selectQuery accumulates WHERE conditions from a Filter.
type selectQuery struct {
	conditions []string
	args       []any
}

// eq adds "column = ?" when filter has key. The value must be a string.
func (q *selectQuery) eq(column string, filter types.Filter, key string) error {
	v, ok := filter[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%w: %s must be a string", types.ErrInvalidFilter, key)
	}
	q.conditions = append(q.conditions, column+" = ?")
	q.args = append(q.args, s)
	return nil
}

// in adds "column IN (...)" when filter has key. The value may be a string
// or a []string; an empty slice matches everything.
func (q *selectQuery) in(column string, filter types.Filter, key string) error {
	v, ok := filter[key]
	if !ok {
		return nil
	}
	var values []string
	switch x := v.(type) {
	case string:
		values = []string{x}
	case []string:
		values = x
	default:
		return fmt.Errorf("%w: %s must be a string or []string", types.ErrInvalidFilter, key)
	}
	if len(values) == 0 {
		return nil
	}
	placeholders := make([]string, len(values))
	for i, s := range values {
		placeholders[i] = "?"
		q.args = append(q.args, s)
	}
	q.conditions = append(q.conditions, column+" IN ("+strings.Join(placeholders, ", ")+")")
	return nil
}

// build returns the full SELECT statement.
func (q *selectQuery) build(base, orderBy string) string {
	stmt := base
	if len(q.conditions) > 0 {
		stmt += " WHERE " + strings.Join(q.conditions, " AND ")
	}
	return stmt + " ORDER BY " + orderBy
}

// page reads the limit and offset filter keys. Zero means unset.
func page(filter types.Filter) (limit, offset int, err error) {
	if v, ok := filter["limit"]; ok {
		if limit, ok = v.(int); !ok || limit < 0 {
			return 0, 0, fmt.Errorf("%w: limit must be a non-negative int", types.ErrInvalidFilter)
		}
	}
	if v, ok := filter["offset"]; ok {
		if offset, ok = v.(int); !ok || offset < 0 {
			return 0, 0, fmt.Errorf("%w: offset must be a non-negative int", types.ErrInvalidFilter)
		}
	}
	return limit, offset, nil
}

// limitClause renders LIMIT/OFFSET. SQLite needs a LIMIT before OFFSET.
func limitClause(limit, offset int) string {
	switch {
	case limit > 0 && offset > 0:
		return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	case limit > 0:
		return fmt.Sprintf(" LIMIT %d", limit)
	case offset > 0:
		return fmt.Sprintf(" LIMIT -1 OFFSET %d", offset)
	}
	return ""
}

// paginate applies limit and offset to an in-memory result.
func paginate(results []any, limit, offset int) []any {
	if offset >= len(results) {
		return []any{}
	}
	results = results[offset:]
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results
}
