package types

import "errors"

// Store defines the interface for backend-agnostic access to a beacon's
// local records. Callers attach to a backend, access tables by name, and
// detach when done.
type Store interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name string) (Table, error)

	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, GetTable returns ErrStoreDetached.
	Detach() error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrTableNotFound   = errors.New("table not found")
)

// BeaconStore is a Store owned by a single beacon. The beacon ID is fixed
// when the store is first attached and kept across restarts.
type BeaconStore interface {
	Store

	// BeaconID returns the owning beacon's ID, or "" before Attach.
	BeaconID() string

	// Info summarizes the beacon for the given software version.
	// Returns ErrStoreDetached if the store is not attached.
	Info(version string) (BeaconInfo, error)
}
