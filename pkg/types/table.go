package types

import "errors"

// Filter narrows a Fetch. Keys are table specific; an empty or nil filter
// matches every entity. All tables accept "limit" and "offset" (int).
type Filter map[string]any

// Table provides uniform CRUD operations for a single entity type.
// Get and Fetch return any; callers type-assert to the concrete entity struct.
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(id string) (any, error)

	// Set creates or updates an entity. When id is empty a new UUID v7 is
	// generated. Returns the actual ID used (generated or provided).
	Set(id string, data any) (string, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(id string) error

	// Fetch returns all entities matching the filter.
	Fetch(filter Filter) ([]any, error)
}

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter value type")
)

// Entity validation and method errors.
var (
	ErrInvalidName       = errors.New("invalid name")
	ErrInvalidStatus     = errors.New("invalid status value")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidCondition  = errors.New("condition not valid for category")
	ErrInvalidPrice      = errors.New("price must be finite and not negative")
	ErrInvalidQuantity   = errors.New("quantity must not be negative")
	ErrInvalidScope      = errors.New("invalid selling scope")
	ErrInvalidMediaType  = errors.New("invalid media type")
	ErrInvalidRole       = errors.New("invalid negotiation role")
	ErrWrongParty        = errors.New("party may not make this move")
	ErrNotCounterparty   = errors.New("sender is not the negotiation counterparty")
)
