package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/reffo/pkg/schema"
	"github.com/mesh-intelligence/reffo/pkg/types"
)

var _ types.Table = (*refsTable)(nil)

// refsTable implements the Table interface for refs. Get and Fetch return
// *types.Ref; Set takes one.
//
// Fetch accepts these filter keys:
//
//	category, subcategory, beacon_id   string
//	listing_status                     string or []string
//	search                             string, case-insensitive name match
//	near                               types.Point, with radius_miles float64
//	limit, offset                      int
//
// With near set, only located refs within radius_miles are returned,
// closest first.
type refsTable struct {
	backend *Backend
}

var refColumns = []string{
	"id", "name", "description", "category", "subcategory", "image", "sku",
	"listing_status", "quantity", "reffo_synced", "reffo_ref_id",
	"location_lat", "location_lng", "location_address", "location_city",
	"location_state", "location_zip", "location_country",
	"selling_scope", "selling_radius_miles", "attributes", "condition",
	"rental_terms", "rental_deposit", "rental_duration", "rental_duration_unit",
	"beacon_id", "created_at", "updated_at",
}

var refSelect = strings.Join(refColumns, ", ")

func scanRef(row rowScanner) (*types.Ref, error) {
	var (
		r                    types.Ref
		synced               int
		lat, lng             sql.NullFloat64
		radius, deposit      sql.NullFloat64
		duration             sql.NullInt64
		attrs                sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&r.ID, &r.Name, &r.Description, &r.Category, &r.Subcategory, &r.Image, &r.SKU,
		&r.ListingStatus, &r.Quantity, &synced, &r.ReffoRefID,
		&lat, &lng, &r.Address, &r.City,
		&r.State, &r.Zip, &r.Country,
		&r.SellingScope, &radius, &attrs, &r.Condition,
		&r.RentalTerms, &deposit, &duration, &r.RentalDurationUnit,
		&r.BeaconID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.ReffoSynced = synced != 0
	r.Lat, r.Lng = floatPtr(lat), floatPtr(lng)
	r.SellingRadiusMiles = floatPtr(radius)
	r.RentalDeposit = floatPtr(deposit)
	r.RentalDuration = intPtr(duration)
	if r.Attributes, err = decodeJSON(attrs); err != nil {
		return nil, fmt.Errorf("decoding attributes: %w", err)
	}
	if r.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func refArgs(r *types.Ref) ([]any, error) {
	attrs, err := encodeJSON(r.Attributes)
	if err != nil {
		return nil, fmt.Errorf("encoding attributes: %w", err)
	}
	synced := 0
	if r.ReffoSynced {
		synced = 1
	}
	return []any{
		r.ID, r.Name, r.Description, r.Category, r.Subcategory, r.Image, r.SKU,
		r.ListingStatus, r.Quantity, synced, r.ReffoRefID,
		nullFloat(r.Lat), nullFloat(r.Lng), r.Address, r.City,
		r.State, r.Zip, r.Country,
		r.SellingScope, nullFloat(r.SellingRadiusMiles), attrs, r.Condition,
		r.RentalTerms, nullFloat(r.RentalDeposit), nullInt(r.RentalDuration), r.RentalDurationUnit,
		r.BeaconID, formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	}, nil
}

// validateRef applies the entity checks plus the category's condition
// options.
func validateRef(r *types.Ref) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if !schema.AcceptsCondition(schema.GetCategorySchema(r.Category, r.Subcategory), r.Condition) {
		return fmt.Errorf("%w: %q for %s", types.ErrInvalidCondition, r.Condition, schema.Key(r.Category, r.Subcategory))
	}
	return nil
}

// Get retrieves a ref by ID.
func (rt *refsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	unlock, err := rt.backend.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	r, err := scanRef(rt.backend.db.QueryRow("SELECT "+refSelect+" FROM refs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting ref %s: %w", id, err)
	}
	return r, nil
}

// Set creates or replaces a ref. With an empty id a UUID v7 is generated;
// a new ref is stamped with the beacon ID and defaults to private. With a
// known id the stored row is replaced, keeping its CreatedAt.
func (rt *refsTable) Set(id string, data any) (string, error) {
	in, ok := data.(*types.Ref)
	if !ok || in == nil {
		return "", types.ErrInvalidData
	}
	// Defaults and stamps go on a copy; the caller's value is updated only
	// once the write succeeds.
	staged := *in
	r := &staged
	unlock, err := rt.backend.begin()
	if err != nil {
		return "", err
	}
	defer unlock()

	db := rt.backend.db
	ts := now()

	var existing sql.NullString
	if id != "" {
		err := db.QueryRow("SELECT created_at FROM refs WHERE id = ?", id).Scan(&existing)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("checking ref existence: %w", err)
		}
	}

	if existing.Valid {
		if r.CreatedAt, err = parseTime("created_at", existing.String); err != nil {
			return "", err
		}
	} else {
		if id == "" {
			if id, err = newID(); err != nil {
				return "", err
			}
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = ts
		}
	}
	r.ID = id
	r.UpdatedAt = ts
	if r.BeaconID == "" {
		r.BeaconID = rt.backend.beaconID
	}
	if r.ListingStatus == "" {
		r.ListingStatus = types.ListingPrivate
	}
	if err := validateRef(r); err != nil {
		return "", err
	}

	args, err := refArgs(r)
	if err != nil {
		return "", err
	}
	if existing.Valid {
		sets := make([]string, 0, len(refColumns)-1)
		for _, c := range refColumns[1:] {
			sets = append(sets, c+" = ?")
		}
		_, err = db.Exec("UPDATE refs SET "+strings.Join(sets, ", ")+" WHERE id = ?", append(args[1:], id)...)
	} else {
		_, err = db.Exec(insertSQL(types.TableRefs, refColumns), args...)
	}
	if err != nil {
		return "", fmt.Errorf("persisting ref: %w", err)
	}

	if err := rt.backend.persist(types.TableRefs); err != nil {
		return "", err
	}
	rt.backend.log().Debug("ref.saved", "id", id, "created", !existing.Valid, "listing_status", r.ListingStatus)
	*in = staged
	return id, nil
}

// Delete removes a ref together with its offers and media. Negotiations
// are kept as history.
func (rt *refsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	unlock, err := rt.backend.begin()
	if err != nil {
		return err
	}
	defer unlock()

	db := rt.backend.db
	var exists bool
	if err := db.QueryRow("SELECT 1 FROM refs WHERE id = ?", id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		return fmt.Errorf("checking ref existence: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM media WHERE ref_id = ?",
		"DELETE FROM offers WHERE ref_id = ?",
		"DELETE FROM refs WHERE id = ?",
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			return fmt.Errorf("deleting ref: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing ref deletion: %w", err)
	}

	if err := rt.backend.persist(types.TableRefs, types.TableOffers, types.TableMedia); err != nil {
		return err
	}
	rt.backend.log().Debug("ref.deleted", "id", id)
	return nil
}

// Fetch returns refs matching the filter, newest first.
func (rt *refsTable) Fetch(filter types.Filter) ([]any, error) {
	var q selectQuery
	for _, f := range []struct{ column, key string }{
		{"category", "category"},
		{"subcategory", "subcategory"},
		{"beacon_id", "beacon_id"},
	} {
		if err := q.eq(f.column, filter, f.key); err != nil {
			return nil, err
		}
	}
	if err := q.in("listing_status", filter, "listing_status"); err != nil {
		return nil, err
	}
	if v, ok := filter["search"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: search must be a string", types.ErrInvalidFilter)
		}
		if s != "" {
			q.conditions = append(q.conditions, "name LIKE ? ESCAPE '\\'")
			q.args = append(q.args, "%"+escapeLike(s)+"%")
		}
	}
	center, radius, near, err := nearFilter(filter)
	if err != nil {
		return nil, err
	}
	limit, offset, err := page(filter)
	if err != nil {
		return nil, err
	}

	if near {
		q.conditions = append(q.conditions, "location_lat IS NOT NULL", "location_lng IS NOT NULL")
	}
	stmt := q.build("SELECT "+refSelect+" FROM refs", "created_at DESC, id DESC")
	if !near {
		stmt += limitClause(limit, offset)
	}

	unlock, err := rt.backend.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	rows, err := rt.backend.db.Query(stmt, q.args...)
	if err != nil {
		return nil, fmt.Errorf("fetching refs: %w", err)
	}
	defer rows.Close()

	type located struct {
		ref  *types.Ref
		dist float64
	}
	var found []located
	for rows.Next() {
		r, err := scanRef(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ref: %w", err)
		}
		if near {
			p, _ := r.Point()
			d := center.DistanceMiles(p)
			if d > radius {
				continue
			}
			found = append(found, located{r, d})
			continue
		}
		found = append(found, located{ref: r})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating refs: %w", err)
	}

	if near {
		sort.SliceStable(found, func(i, j int) bool { return found[i].dist < found[j].dist })
	}
	results := make([]any, len(found))
	for i, l := range found {
		results[i] = l.ref
	}
	if near {
		results = paginate(results, limit, offset)
	}
	return results, nil
}

// nearFilter reads the near and radius_miles keys.
func nearFilter(filter types.Filter) (center types.Point, radius float64, ok bool, err error) {
	v, ok := filter["near"]
	if !ok {
		if _, has := filter["radius_miles"]; has {
			return center, 0, false, fmt.Errorf("%w: radius_miles requires near", types.ErrInvalidFilter)
		}
		return center, 0, false, nil
	}
	if center, ok = v.(types.Point); !ok {
		return center, 0, false, fmt.Errorf("%w: near must be a types.Point", types.ErrInvalidFilter)
	}
	r, has := filter["radius_miles"]
	if !has {
		return center, 0, false, fmt.Errorf("%w: near requires radius_miles", types.ErrInvalidFilter)
	}
	if radius, ok = r.(float64); !ok || radius < 0 {
		return center, 0, false, fmt.Errorf("%w: radius_miles must be a non-negative float64", types.ErrInvalidFilter)
	}
	return center, radius, true, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func insertSQL(table string, columns []string) string {
	return "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
}
