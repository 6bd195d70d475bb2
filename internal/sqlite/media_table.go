package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/reffo/pkg/types"
)

var _ types.Table = (*mediaTable)(nil)

// mediaTable implements the Table interface for ref media. Fetch accepts
// ref_id, media_type, limit and offset and returns media in display order.
type mediaTable struct {
	backend *Backend
}

var mediaColumns = []string{
	"id", "ref_id", "media_type", "file_path", "mime_type", "file_size", "sort_order", "created_at",
}

var mediaSelect = strings.Join(mediaColumns, ", ")

func scanMedia(row rowScanner) (*types.RefMedia, error) {
	var (
		m         types.RefMedia
		createdAt string
	)
	err := row.Scan(&m.ID, &m.RefID, &m.MediaType, &m.FilePath, &m.MimeType, &m.FileSize, &m.SortOrder, &createdAt)
	if err != nil {
		return nil, err
	}
	if m.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Get retrieves a media record by ID.
func (mt *mediaTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	unlock, err := mt.backend.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	m, err := scanMedia(mt.backend.db.QueryRow("SELECT "+mediaSelect+" FROM media WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting media %s: %w", id, err)
	}
	return m, nil
}

// Set creates or replaces a media record. The ref must exist.
func (mt *mediaTable) Set(id string, data any) (string, error) {
	m, ok := data.(*types.RefMedia)
	if !ok {
		return "", types.ErrInvalidData
	}
	unlock, err := mt.backend.begin()
	if err != nil {
		return "", err
	}
	defer unlock()

	db := mt.backend.db

	var existing sql.NullString
	if id != "" {
		err := db.QueryRow("SELECT created_at FROM media WHERE id = ?", id).Scan(&existing)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("checking media existence: %w", err)
		}
	}
	if existing.Valid {
		if m.CreatedAt, err = parseTime("created_at", existing.String); err != nil {
			return "", err
		}
	} else {
		if id == "" {
			if id, err = newID(); err != nil {
				return "", err
			}
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now()
		}
	}
	m.ID = id
	if err := m.Validate(); err != nil {
		return "", err
	}

	var refExists bool
	if err := db.QueryRow("SELECT 1 FROM refs WHERE id = ?", m.RefID).Scan(&refExists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("ref %s: %w", m.RefID, types.ErrNotFound)
		}
		return "", fmt.Errorf("checking ref existence: %w", err)
	}

	args := []any{m.ID, m.RefID, m.MediaType, m.FilePath, m.MimeType, m.FileSize, m.SortOrder, formatTime(m.CreatedAt)}
	if existing.Valid {
		_, err = db.Exec(`UPDATE media SET ref_id = ?, media_type = ?, file_path = ?, mime_type = ?,
    file_size = ?, sort_order = ?, created_at = ? WHERE id = ?`, append(args[1:], id)...)
	} else {
		_, err = db.Exec(insertSQL(types.TableMedia, mediaColumns), args...)
	}
	if err != nil {
		return "", fmt.Errorf("persisting media: %w", err)
	}

	if err := mt.backend.persist(types.TableMedia); err != nil {
		return "", err
	}
	mt.backend.log().Debug("media.saved", "id", id, "ref_id", m.RefID, "media_type", m.MediaType)
	return id, nil
}

// Delete removes a media record. The file itself is left in place.
func (mt *mediaTable) Delete(id string) error {
	return deleteByID(mt.backend, types.TableMedia, id)
}

// Fetch returns media matching the filter ordered by sort order, then age.
func (mt *mediaTable) Fetch(filter types.Filter) ([]any, error) {
	var q selectQuery
	if err := q.eq("ref_id", filter, "ref_id"); err != nil {
		return nil, err
	}
	if err := q.eq("media_type", filter, "media_type"); err != nil {
		return nil, err
	}
	limit, offset, err := page(filter)
	if err != nil {
		return nil, err
	}
	stmt := q.build("SELECT "+mediaSelect+" FROM media", "sort_order ASC, created_at ASC, id ASC") + limitClause(limit, offset)

	return fetchAll(mt.backend, stmt, q.args, func(r rowScanner) (any, error) { return scanMedia(r) })
}
