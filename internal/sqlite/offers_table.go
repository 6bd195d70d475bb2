package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/reffo/pkg/types"
)

var _ types.Table = (*offersTable)(nil)

// offersTable implements the Table interface for offers. Fetch accepts
// ref_id, seller_id (string), status (string or []string), limit and offset.
type offersTable struct {
	backend *Backend
}

var offerColumns = []string{
	"id", "ref_id", "price", "price_currency", "status", "seller_id", "location",
	"created_at", "updated_at",
}

var offerSelect = strings.Join(offerColumns, ", ")

func scanOffer(row rowScanner) (*types.Offer, error) {
	var (
		o                    types.Offer
		createdAt, updatedAt string
	)
	err := row.Scan(&o.ID, &o.RefID, &o.Price, &o.PriceCurrency, &o.Status, &o.SellerID, &o.Location,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if o.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func offerArgs(o *types.Offer) []any {
	return []any{o.ID, o.RefID, o.Price, o.PriceCurrency, o.Status, o.SellerID, o.Location,
		formatTime(o.CreatedAt), formatTime(o.UpdatedAt)}
}

// Get retrieves an offer by ID.
func (ot *offersTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	unlock, err := ot.backend.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	o, err := scanOffer(ot.backend.db.QueryRow("SELECT "+offerSelect+" FROM offers WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting offer %s: %w", id, err)
	}
	return o, nil
}

// Set creates or replaces an offer. The ref must exist and an offer never
// moves to another ref. New offers default to active, the configured
// currency, and this beacon as seller.
func (ot *offersTable) Set(id string, data any) (string, error) {
	in, ok := data.(*types.Offer)
	if !ok || in == nil {
		return "", types.ErrInvalidData
	}
	staged := *in
	o := &staged
	unlock, err := ot.backend.begin()
	if err != nil {
		return "", err
	}
	defer unlock()

	db := ot.backend.db
	ts := now()

	var existing *types.Offer
	if id != "" {
		existing, err = scanOffer(db.QueryRow("SELECT "+offerSelect+" FROM offers WHERE id = ?", id))
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("checking offer existence: %w", err)
		}
	}

	if existing != nil {
		if o.RefID != existing.RefID {
			return "", fmt.Errorf("%w: offer ref cannot change", types.ErrInvalidData)
		}
		o.CreatedAt = existing.CreatedAt
	} else {
		if id == "" {
			if id, err = newID(); err != nil {
				return "", err
			}
		}
		if o.CreatedAt.IsZero() {
			o.CreatedAt = ts
		}
	}
	o.ID = id
	o.UpdatedAt = ts
	if o.Status == "" {
		o.Status = types.OfferActive
	}
	if o.PriceCurrency == "" {
		o.PriceCurrency = ot.backend.config.Currency()
	}
	if o.SellerID == "" {
		o.SellerID = ot.backend.beaconID
	}
	if err := o.Validate(); err != nil {
		return "", err
	}

	var refExists bool
	if err := db.QueryRow("SELECT 1 FROM refs WHERE id = ?", o.RefID).Scan(&refExists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("ref %s: %w", o.RefID, types.ErrNotFound)
		}
		return "", fmt.Errorf("checking ref existence: %w", err)
	}

	args := offerArgs(o)
	if existing != nil {
		_, err = db.Exec(`UPDATE offers SET price = ?, price_currency = ?, status = ?, seller_id = ?,
    location = ?, created_at = ?, updated_at = ? WHERE id = ?`, append(args[2:], id)...)
	} else {
		_, err = db.Exec(insertSQL(types.TableOffers, offerColumns), args...)
	}
	if err != nil {
		return "", fmt.Errorf("persisting offer: %w", err)
	}

	if err := ot.backend.persist(types.TableOffers); err != nil {
		return "", err
	}
	ot.backend.log().Debug("offer.saved", "id", id, "ref_id", o.RefID, "status", o.Status)
	*in = staged
	return id, nil
}

// Delete removes an offer.
func (ot *offersTable) Delete(id string) error {
	return deleteByID(ot.backend, types.TableOffers, id)
}

// Fetch returns offers matching the filter, newest first.
func (ot *offersTable) Fetch(filter types.Filter) ([]any, error) {
	var q selectQuery
	if err := q.eq("ref_id", filter, "ref_id"); err != nil {
		return nil, err
	}
	if err := q.eq("seller_id", filter, "seller_id"); err != nil {
		return nil, err
	}
	if err := q.in("status", filter, "status"); err != nil {
		return nil, err
	}
	limit, offset, err := page(filter)
	if err != nil {
		return nil, err
	}
	stmt := q.build("SELECT "+offerSelect+" FROM offers", "created_at DESC, id DESC") + limitClause(limit, offset)

	return fetchAll(ot.backend, stmt, q.args, func(r rowScanner) (any, error) { return scanOffer(r) })
}

// deleteByID removes one row from a table without cascading and rewrites
// the table's JSONL file.
func deleteByID(b *Backend, table, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	unlock, err := b.begin()
	if err != nil {
		return err
	}
	defer unlock()

	res, err := b.db.Exec("DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	if err := b.persist(table); err != nil {
		return err
	}
	b.log().Debug("row.deleted", "table", table, "id", id)
	return nil
}

// fetchAll runs a query and scans every row. It never returns a nil slice.
func fetchAll(b *Backend, stmt string, args []any, scan func(rowScanner) (any, error)) ([]any, error) {
	unlock, err := b.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	rows, err := b.db.Query(stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return results, nil
}
