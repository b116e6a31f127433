package types

import "context"

// ItemStore is the remote side of an ordered collection. Implementations
// are stateless conduits: no caching, no retries.
type ItemStore interface {
	// Create inserts {text, completed} and returns the stored row,
	// including the store-assigned ID and default position.
	Create(ctx context.Context, fields ItemFields) (Item, error)

	// Update writes the non-nil patch fields to the row with the given ID.
	// Returns ErrNotFound if no row matches.
	Update(ctx context.Context, id string, patch Patch) error

	// Remove deletes the row with the given ID.
	// Returns ErrNotFound if no row matches.
	Remove(ctx context.Context, id string) error

	// ListOrderedByPosition returns every row in ascending position order.
	ListOrderedByPosition(ctx context.Context) ([]Item, error)
}

// NoteStore persists notes and their categories.
type NoteStore interface {
	ListNotes(ctx context.Context) ([]Note, error)
	CreateNote(ctx context.Context, fields NoteFields) (Note, error)
	UpdateNote(ctx context.Context, id string, patch NotePatch) error
	DeleteNote(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, name string) (Category, error)
	DeleteCategory(ctx context.Context, id string) error
}
