// Package sqlite implements the embedded remote store on SQLite.
// It plays the part of the hosted table service: it assigns identities,
// applies default positions, and answers ordered listings.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// DatabaseFile is the name of the SQLite file inside DataDir.
const DatabaseFile = "serbaguna.db"

// Compile-time interface check: Backend must implement Cupboard.
var _ types.Cupboard = (*Backend)(nil)

// Backend implements the Cupboard interface on a SQLite database file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	todos *todosTable
	notes *notesTable
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens (or creates) DataDir/serbaguna.db and applies the schema.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dsn := "file:" + filepath.Join(dataDir, DatabaseFile) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// Reorders fan out concurrent updates; a single connection serialises
	// them instead of surfacing SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.config.DataDir = dataDir
	b.todos = &todosTable{backend: b}
	b.notes = &notesTable{backend: b}
	b.attached = true

	return nil
}

// Detach closes the database. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	return nil
}

// Todos returns the ordered to-do collection.
func (b *Backend) Todos() (types.ItemStore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrCupboardDetached
	}
	return b.todos, nil
}

// Notes returns the notes and categories store.
func (b *Backend) Notes() (types.NoteStore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrCupboardDetached
	}
	return b.notes, nil
}

// DataDir returns the directory holding the database file.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.DataDir
}

// conn returns the open database, or ErrCupboardDetached. The returned
// release func must be called when the caller is done with the handle.
func (b *Backend) conn() (*sql.DB, func(), error) {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, nil, types.ErrCupboardDetached
	}
	return b.db, b.mu.RUnlock, nil
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// checkAffected maps "no row matched" to ErrNotFound.
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// wrapCtx converts a context failure into the remote-unavailable sentinel
// while keeping the original error in the chain.
func wrapCtx(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", types.ErrRemoteUnavailable, ctxErr)
	}
	return err
}

// notFoundOr maps sql.ErrNoRows to ErrNotFound.
func notFoundOr(ctx context.Context, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return types.ErrNotFound
	}
	return wrapCtx(ctx, err)
}
