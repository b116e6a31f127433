package types

import "errors"

// Cupboard lifecycle errors.
var (
	ErrCupboardDetached = errors.New("cupboard is detached")
	ErrAlreadyAttached  = errors.New("cupboard is already attached")
)

// Remote store errors. ErrRemoteUnavailable covers network and service
// failures; ErrMalformed covers rows of an unexpected shape.
var (
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrNotFound          = errors.New("entity not found")
	ErrMalformed         = errors.New("malformed remote response")
	ErrInvalidID         = errors.New("invalid entity ID")
)

// Validation errors.
var (
	ErrEmptyText     = errors.New("text must not be empty")
	ErrEmptyNote     = errors.New("note needs a title or content")
	ErrInvalidColor  = errors.New("color must be #rrggbb")
	ErrEmptyName     = errors.New("name must not be empty")
	ErrCategoryInUse = errors.New("category is still used by notes")
	ErrUnknownTool   = errors.New("unknown tool")
	ErrInvalidTheme  = errors.New("invalid theme")
)
