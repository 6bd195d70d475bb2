package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/reffo/pkg/types"
)

// seedBeaconSettings returns the stored beacon settings, creating them with
// a new beacon ID and the default selling scope when settings.jsonl was
// empty. The bool result reports whether seeding happened.
func seedBeaconSettings(b *Backend) (*types.BeaconSettings, bool, error) {
	var count int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM settings").Scan(&count); err != nil {
		return nil, false, fmt.Errorf("counting settings: %w", err)
	}
	if count > 0 {
		s, err := scanSettings(b.db.QueryRow("SELECT " + settingsSelect + " FROM settings ORDER BY id LIMIT 1"))
		if err != nil {
			return nil, false, fmt.Errorf("reading settings: %w", err)
		}
		return s, false, nil
	}

	id, err := newID()
	if err != nil {
		return nil, false, err
	}
	s := &types.BeaconSettings{
		ID:                        id,
		DefaultSellingScope:       types.DefaultSellingScope,
		DefaultSellingRadiusMiles: types.DefaultSellingRadiusMiles,
	}
	if _, err := b.db.Exec(insertSettingsSQL, settingsArgs(s)...); err != nil {
		return nil, false, fmt.Errorf("inserting settings: %w", err)
	}
	if err := b.persist(types.TableSettings); err != nil {
		return nil, false, err
	}
	return s, true, nil
}
