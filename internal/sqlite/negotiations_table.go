package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/reffo/pkg/types"
)

var _ types.Table = (*negotiationsTable)(nil)

// negotiationsTable implements the Table interface for negotiations.
// Both parties store a negotiation under the ID chosen by the buyer, so Set
// with an unknown id creates the row rather than failing.
//
// Fetch accepts ref_id (string), status and role (string or []string),
// limit and offset.
type negotiationsTable struct {
	backend *Backend
}

var negotiationColumns = []string{
	"id", "ref_id", "ref_name", "buyer_beacon_id", "seller_beacon_id",
	"price", "price_currency", "message", "status", "role",
	"counter_price", "countered_by", "response_message", "created_at", "updated_at",
}

var negotiationSelect = strings.Join(negotiationColumns, ", ")

func scanNegotiation(row rowScanner) (*types.Negotiation, error) {
	var (
		n                    types.Negotiation
		counter              sql.NullFloat64
		createdAt, updatedAt string
	)
	err := row.Scan(
		&n.ID, &n.RefID, &n.RefName, &n.BuyerBeaconID, &n.SellerBeaconID,
		&n.Price, &n.PriceCurrency, &n.Message, &n.Status, &n.Role,
		&counter, &n.CounteredBy, &n.ResponseMessage, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.CounterPrice = floatPtr(counter)
	if n.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func negotiationArgs(n *types.Negotiation) []any {
	return []any{
		n.ID, n.RefID, n.RefName, n.BuyerBeaconID, n.SellerBeaconID,
		n.Price, n.PriceCurrency, n.Message, n.Status, n.Role,
		nullFloat(n.CounterPrice), n.CounteredBy, n.ResponseMessage, formatTime(n.CreatedAt), formatTime(n.UpdatedAt),
	}
}

// Get retrieves a negotiation by ID.
func (nt *negotiationsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	unlock, err := nt.backend.read()
	if err != nil {
		return nil, err
	}
	defer unlock()

	n, err := scanNegotiation(nt.backend.db.QueryRow("SELECT "+negotiationSelect+" FROM negotiations WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting negotiation %s: %w", id, err)
	}
	return n, nil
}

// Set creates or replaces a negotiation. New negotiations default to
// pending and the configured currency.
func (nt *negotiationsTable) Set(id string, data any) (string, error) {
	in, ok := data.(*types.Negotiation)
	if !ok || in == nil {
		return "", types.ErrInvalidData
	}
	staged := *in
	n := &staged
	unlock, err := nt.backend.begin()
	if err != nil {
		return "", err
	}
	defer unlock()

	db := nt.backend.db
	ts := now()

	var existing sql.NullString
	if id != "" {
		err := db.QueryRow("SELECT created_at FROM negotiations WHERE id = ?", id).Scan(&existing)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("checking negotiation existence: %w", err)
		}
	}
	if existing.Valid {
		if n.CreatedAt, err = parseTime("created_at", existing.String); err != nil {
			return "", err
		}
	} else {
		if id == "" {
			if id, err = newID(); err != nil {
				return "", err
			}
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = ts
		}
	}
	n.ID = id
	n.UpdatedAt = ts
	if n.Status == "" {
		n.Status = types.NegotiationPending
	}
	if n.PriceCurrency == "" {
		n.PriceCurrency = nt.backend.config.Currency()
	}
	if err := n.Validate(); err != nil {
		return "", err
	}

	args := negotiationArgs(n)
	if existing.Valid {
		sets := make([]string, 0, len(negotiationColumns)-1)
		for _, c := range negotiationColumns[1:] {
			sets = append(sets, c+" = ?")
		}
		_, err = db.Exec("UPDATE negotiations SET "+strings.Join(sets, ", ")+" WHERE id = ?", append(args[1:], id)...)
	} else {
		_, err = db.Exec(insertSQL(types.TableNegotiations, negotiationColumns), args...)
	}
	if err != nil {
		return "", fmt.Errorf("persisting negotiation: %w", err)
	}

	if err := nt.backend.persist(types.TableNegotiations); err != nil {
		return "", err
	}
	nt.backend.log().Debug("negotiation.saved", "id", id, "role", n.Role, "status", n.Status)
	*in = staged
	return id, nil
}

// Delete removes a negotiation.
func (nt *negotiationsTable) Delete(id string) error {
	return deleteByID(nt.backend, types.TableNegotiations, id)
}

// Fetch returns negotiations matching the filter, newest first.
func (nt *negotiationsTable) Fetch(filter types.Filter) ([]any, error) {
	var q selectQuery
	if err := q.eq("ref_id", filter, "ref_id"); err != nil {
		return nil, err
	}
	if err := q.in("status", filter, "status"); err != nil {
		return nil, err
	}
	if err := q.in("role", filter, "role"); err != nil {
		return nil, err
	}
	limit, offset, err := page(filter)
	if err != nil {
		return nil, err
	}
	stmt := q.build("SELECT "+negotiationSelect+" FROM negotiations", "created_at DESC, id DESC") + limitClause(limit, offset)

	return fetchAll(nt.backend, stmt, q.args, func(r rowScanner) (any, error) { return scanNegotiation(r) })
}
