package types

// Cupboard is a backend that owns the connection to the remote store.
// Callers attach, take the collections they need, and detach when done.
type Cupboard interface {
	// Attach connects to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	// After Detach, store operations return ErrCupboardDetached.
	Detach() error

	// Todos returns the ordered to-do collection.
	Todos() (ItemStore, error)

	// Notes returns the notes and categories store.
	Notes() (NoteStore, error)
}
