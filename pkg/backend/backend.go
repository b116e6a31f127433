// Package backend exposes the factory for Cupboard implementations while
// keeping the implementations internal.
package backend

import (
	"fmt"

	"github.com/mesh-intelligence/serbaguna/internal/postgrest"
	"github.com/mesh-intelligence/serbaguna/internal/sqlite"
	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// New creates an unattached Cupboard for the named backend.
//
// Example:
//
//	cupboard, err := backend.New(types.BackendSQLite)
//	err = cupboard.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".serbaguna-db",
//	})
//	defer cupboard.Detach()
func New(name string) (types.Cupboard, error) {
	switch name {
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	case types.BackendPostgREST:
		return postgrest.NewBackend(), nil
	case "":
		return nil, types.ErrBackendEmpty
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, name)
	}
}

// Open creates and attaches the backend named by config.
func Open(config types.Config) (types.Cupboard, error) {
	cupboard, err := New(config.Backend)
	if err != nil {
		return nil, err
	}
	if err := cupboard.Attach(config); err != nil {
		return nil, fmt.Errorf("attach %s backend: %w", config.Backend, err)
	}
	return cupboard, nil
}
