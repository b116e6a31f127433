package types

import (
	"fmt"
	"strings"
)

// Item is one entry of an ordered collection.
// Position is dense and 0-based after a reorder; deletes leave gaps.
type Item struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Position  int    `json:"position"`
}

// ItemFields are the caller-supplied fields for Create. The store assigns
// the ID and the default position.
type ItemFields struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Patch is a field mask. Nil fields are left untouched.
type Patch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Position  *int    `json:"position,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil && p.Position == nil
}

// Validate rejects patches that would store a row Reload cannot accept.
func (p Patch) Validate() error {
	if p.Position != nil && *p.Position < 0 {
		return fmt.Errorf("position %d: %w", *p.Position, ErrMalformed)
	}
	return nil
}

// Apply returns a copy of item with the patch fields written over it.
func (p Patch) Apply(item Item) Item {
	if p.Text != nil {
		item.Text = *p.Text
	}
	if p.Completed != nil {
		item.Completed = *p.Completed
	}
	if p.Position != nil {
		item.Position = *p.Position
	}
	return item
}

// CompletedPatch sets only the completed flag.
func CompletedPatch(v bool) Patch {
	return Patch{Completed: &v}
}

// PositionPatch sets only the position.
func PositionPatch(pos int) Patch {
	return Patch{Position: &pos}
}

// Validate checks the shape of an item returned by a store. A row without
// an ID cannot be addressed by later mutations, and stores never write a
// negative position.
func (i Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return ErrMalformed
	}
	if i.Position < 0 {
		return ErrMalformed
	}
	return nil
}
