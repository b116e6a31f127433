// Tests for SQLite backend lifecycle.
package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

func newAttached(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	err := b.Attach(config)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	// Verify database file created
	dbPath := filepath.Join(tmpDir, DatabaseFile)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("%s not created", DatabaseFile)
	}

	// Verify double attach fails
	err = b.Attach(config)
	if err != types.ErrAlreadyAttached {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}

	b.Detach()
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	b := NewBackend()
	if err := b.Attach(types.Config{}); err != types.ErrBackendEmpty {
		t.Errorf("expected ErrBackendEmpty, got %v", err)
	}
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})

	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}

	// Verify idempotent
	if err := b.Detach(); err != nil {
		t.Errorf("second Detach should not error, got %v", err)
	}

	// Verify operations fail after detach
	if _, err := b.Todos(); err != types.ErrCupboardDetached {
		t.Errorf("expected ErrCupboardDetached from Todos, got %v", err)
	}
	if _, err := b.Notes(); err != types.ErrCupboardDetached {
		t.Errorf("expected ErrCupboardDetached from Notes, got %v", err)
	}
}

func TestBackend_StoreHeldAcrossDetach(t *testing.T) {
	b := NewBackend()
	b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})

	todos, err := b.Todos()
	if err != nil {
		t.Fatalf("Todos failed: %v", err)
	}
	b.Detach()

	if _, err := todos.ListOrderedByPosition(t.Context()); err != types.ErrCupboardDetached {
		t.Errorf("expected ErrCupboardDetached from a held store, got %v", err)
	}
}

func TestBackend_ReattachKeepsData(t *testing.T) {
	dir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	if err := b.Attach(config); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	todos, _ := b.Todos()
	created, err := todos.Create(t.Context(), types.ItemFields{Text: "persist me"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	b.Detach()

	b2 := NewBackend()
	if err := b2.Attach(config); err != nil {
		t.Fatalf("re-Attach failed: %v", err)
	}
	defer b2.Detach()
	todos2, _ := b2.Todos()
	items, err := todos2.ListOrderedByPosition(t.Context())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != created.ID {
		t.Errorf("expected the created item to survive reattach, got %+v", items)
	}
}
