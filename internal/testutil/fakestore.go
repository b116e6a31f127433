// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// Call records one operation received by FakeItemStore.
type Call struct {
	Op     string
	ID     string
	Patch  types.Patch
	Fields types.ItemFields
}

// FakeItemStore is an in-memory implementation of types.ItemStore for testing.
// Rows are kept in insertion order; listing sorts stably by position.
type FakeItemStore struct {
	mu     sync.Mutex
	rows   []types.Item
	nextID int
	calls  []Call

	// Error injection for testing
	CreateErr    error
	UpdateErr    error
	UpdateErrFor map[string]error // id -> error
	RemoveErr    error
	ListErr      error

	// CreateResult, when set, is returned by Create instead of the stored row.
	CreateResult *types.Item

	// Gate, when non-nil, blocks every call until a value is received.
	Gate chan struct{}
}

// NewFakeItemStore creates a FakeItemStore seeded with rows.
func NewFakeItemStore(rows ...types.Item) *FakeItemStore {
	f := &FakeItemStore{UpdateErrFor: make(map[string]error)}
	f.rows = append(f.rows, rows...)
	return f
}

// Create implements types.ItemStore.
func (f *FakeItemStore) Create(ctx context.Context, fields types.ItemFields) (types.Item, error) {
	if err := f.wait(ctx); err != nil {
		return types.Item{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "create", Fields: fields})
	if f.CreateErr != nil {
		return types.Item{}, f.CreateErr
	}
	f.nextID++
	item := types.Item{
		ID:        fmt.Sprintf("new-%d", f.nextID),
		Text:      fields.Text,
		Completed: fields.Completed,
	}
	if f.CreateResult != nil {
		return *f.CreateResult, nil
	}
	f.rows = append(f.rows, item)
	return item, nil
}

// Update implements types.ItemStore.
func (f *FakeItemStore) Update(ctx context.Context, id string, patch types.Patch) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "update", ID: id, Patch: patch})
	if err := f.UpdateErrFor[id]; err != nil {
		return err
	}
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i] = patch.Apply(f.rows[i])
			return nil
		}
	}
	return types.ErrNotFound
}

// Remove implements types.ItemStore.
func (f *FakeItemStore) Remove(ctx context.Context, id string) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "remove", ID: id})
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return types.ErrNotFound
}

// ListOrderedByPosition implements types.ItemStore.
func (f *FakeItemStore) ListOrderedByPosition(ctx context.Context) ([]types.Item, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "list"})
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := slices.Clone(f.rows)
	slices.SortStableFunc(out, func(a, b types.Item) int { return a.Position - b.Position })
	return out, nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeItemStore) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallsOf returns the recorded calls with the given op.
func (f *FakeItemStore) CallsOf(op string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Rows returns the stored rows in insertion order.
func (f *FakeItemStore) Rows() []types.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.rows)
}

// SetErrors replaces the injected errors under the store lock.
func (f *FakeItemStore) SetErrors(create, update, remove, list error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateErr, f.UpdateErr, f.RemoveErr, f.ListErr = create, update, remove, list
}

func (f *FakeItemStore) wait(ctx context.Context) error {
	if f.Gate == nil {
		return nil
	}
	select {
	case <-f.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
