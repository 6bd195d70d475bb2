// Package sqlite provides the public API for the SQLite store backend.
// It exposes the factory function and keeps implementation details
// internal.
package sqlite

import (
	"github.com/mesh-intelligence/reffo/internal/sqlite"
	"github.com/mesh-intelligence/reffo/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".reffo",
//	})
//	defer store.Detach()
func NewBackend() types.BeaconStore {
	return sqlite.NewBackend()
}
