package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/reffo/pkg/types"
)

var _ types.Table = (*settingsTable)(nil)

// settingsTable holds the single BeaconSettings record. Its ID is the
// beacon ID and never changes.
type settingsTable struct {
	backend *Backend
}

var settingsColumns = []string{
	"id",
	"location_lat", "location_lng", "location_address", "location_city",
	"location_state", "location_zip", "location_country",
	"default_selling_scope", "default_selling_radius_miles",
}

var (
	settingsSelect    = strings.Join(settingsColumns, ", ")
	insertSettingsSQL = insertSQL(types.TableSettings, settingsColumns)
)

func settingsArgs(s *types.BeaconSettings) []any {
	return []any{
		s.ID,
		nullFloat(s.Lat), nullFloat(s.Lng), s.Address, s.City,
		s.State, s.Zip, s.Country,
		s.DefaultSellingScope, s.DefaultSellingRadiusMiles,
	}
}

func scanSettings(row rowScanner) (*types.BeaconSettings, error) {
	var (
		s        types.BeaconSettings
		lat, lng sql.NullFloat64
	)
	err := row.Scan(
		&s.ID,
		&lat, &lng, &s.Address, &s.City,
		&s.State, &s.Zip, &s.Country,
		&s.DefaultSellingScope, &s.DefaultSellingRadiusMiles,
	)
	if err != nil {
		return nil, err
	}
	s.Lat, s.Lng = floatPtr(lat), floatPtr(lng)
	return &s, nil
}

// Get returns the settings. The ID must be the beacon ID.
func (st *settingsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	unlock, err := st.backend.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err := scanSettings(st.backend.db.QueryRow("SELECT "+settingsSelect+" FROM settings WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}
	return s, nil
}

// Set replaces the settings. An empty id means the beacon ID; any other ID
// returns ErrInvalidID.
func (st *settingsTable) Set(id string, data any) (string, error) {
	s, ok := data.(*types.BeaconSettings)
	if !ok {
		return "", types.ErrInvalidData
	}
	unlock, err := st.backend.begin()
	if err != nil {
		return "", err
	}
	defer unlock()

	beaconID := st.backend.beaconID
	if id == "" {
		id = beaconID
	}
	if id != beaconID {
		return "", types.ErrInvalidID
	}
	s.ID = id
	if s.DefaultSellingScope == "" {
		s.DefaultSellingScope = types.DefaultSellingScope
	}
	if err := s.Validate(); err != nil {
		return "", err
	}

	_, err = st.backend.db.Exec(`UPDATE settings SET
    location_lat = ?, location_lng = ?, location_address = ?, location_city = ?,
    location_state = ?, location_zip = ?, location_country = ?,
    default_selling_scope = ?, default_selling_radius_miles = ?
    WHERE id = ?`, append(settingsArgs(s)[1:], id)...)
	if err != nil {
		return "", fmt.Errorf("updating settings: %w", err)
	}
	if err := st.backend.persist(types.TableSettings); err != nil {
		return "", err
	}
	return id, nil
}

// Delete always fails: a store keeps exactly one settings record.
func (st *settingsTable) Delete(id string) error {
	return fmt.Errorf("%w: beacon settings cannot be deleted", types.ErrInvalidData)
}

// Fetch returns the single settings record.
func (st *settingsTable) Fetch(filter types.Filter) ([]any, error) {
	return fetchAll(st.backend, "SELECT "+settingsSelect+" FROM settings ORDER BY id", nil,
		func(r rowScanner) (any, error) { return scanSettings(r) })
}
