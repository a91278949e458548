// Package sqlite exposes the SQLite model store while keeping its
// implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/geokernel/internal/sqlite"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

// NewStore creates a detached model store.
//
// Example:
//
//	store := sqlite.NewStore()
//	err := store.Attach(types.Config{DataDir: "models", Compression: "zstd"})
//	defer store.Detach()
func NewStore() types.ModelStore {
	return sqlite.NewBackend()
}
