// Package ordered holds the client-side ordered sequence of items that the
// UI renders. It performs no I/O; persistence is the caller's job.
package ordered

import "github.com/mesh-intelligence/serbaguna/pkg/types"

// List is an in-memory ordered sequence of items. Every operation is total:
// an absent ID is a no-op, never an error.
//
// List is not safe for concurrent use. The dispatcher serialises access.
type List struct {
	items []types.Item
}

// New returns a List holding a copy of seq.
func New(seq []types.Item) *List {
	l := &List{}
	l.ReplaceAll(seq)
	return l
}

// InsertAtHead puts item in front of every other item.
func (l *List) InsertAtHead(item types.Item) {
	l.items = append([]types.Item{item}, l.items...)
}

// UpdateByID applies patch to the item with the given ID in place.
// Reports whether an item was found.
func (l *List) UpdateByID(id string, patch types.Patch) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	l.items[i] = patch.Apply(l.items[i])
	return true
}

// RemoveByID deletes the item with the given ID. Positions of the remaining
// items are left as they were.
func (l *List) RemoveByID(id string) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return true
}

// ReplaceAll discards the current sequence and adopts a copy of seq.
func (l *List) ReplaceAll(seq []types.Item) {
	l.items = make([]types.Item, len(seq))
	copy(l.items, seq)
}

// Items returns a copy of the sequence in render order.
func (l *List) Items() []types.Item {
	out := make([]types.Item, len(l.items))
	copy(out, l.items)
	return out
}

// Get returns the item with the given ID.
func (l *List) Get(id string) (types.Item, bool) {
	i := l.indexOf(id)
	if i < 0 {
		return types.Item{}, false
	}
	return l.items[i], true
}

// Len returns the number of items.
func (l *List) Len() int {
	return len(l.items)
}

func (l *List) indexOf(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}
