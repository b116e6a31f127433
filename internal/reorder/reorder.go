// Package reorder computes the sequence that results from a drag gesture.
// Functions here never mutate their input.
package reorder

import "github.com/mesh-intelligence/serbaguna/pkg/types"

// Move relocates the item sourceID to the slot currently held by destID,
// using array-move semantics, and rewrites every Position to its new index.
// It reports false and returns seq unchanged when the ids are equal or
// either id is absent.
func Move(seq []types.Item, sourceID, destID string) ([]types.Item, bool) {
	if sourceID == destID {
		return seq, false
	}
	from, to := -1, -1
	for i, it := range seq {
		switch it.ID {
		case sourceID:
			from = i
		case destID:
			to = i
		}
	}
	if from < 0 || to < 0 {
		return seq, false
	}
	return MoveIndex(seq, from, to)
}

// MoveIndex moves the item at index from to index to and renumbers.
// Out-of-range indexes leave seq unchanged.
func MoveIndex(seq []types.Item, from, to int) ([]types.Item, bool) {
	n := len(seq)
	if from < 0 || from >= n || to < 0 || to >= n {
		return seq, false
	}
	if from == to {
		return seq, false
	}

	out := make([]types.Item, 0, n)
	moved := seq[from]
	for i, it := range seq {
		if i == from {
			continue
		}
		out = append(out, it)
	}
	out = append(out[:to], append([]types.Item{moved}, out[to:]...)...)

	return Compact(out), true
}

// Compact returns a copy of seq with Position set to each item's index.
func Compact(seq []types.Item) []types.Item {
	out := make([]types.Item, len(seq))
	for i, it := range seq {
		it.Position = i
		out[i] = it
	}
	return out
}

// IsDense reports whether the positions in seq are exactly 0..n-1 in order.
func IsDense(seq []types.Item) bool {
	for i, it := range seq {
		if it.Position != i {
			return false
		}
	}
	return true
}
