// Package postgrest implements the remote store over HTTP, speaking the
// PostgREST dialect used by Supabase: one resource per table under
// /rest/v1/, filters such as id=eq.<id>, and order=position.asc.
package postgrest

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// Compile-time interface check: Backend must implement Cupboard.
var _ types.Cupboard = (*Backend)(nil)

// Backend implements Cupboard against a PostgREST endpoint.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	client   *client

	// HTTPClient is used for requests when set before Attach.
	HTTPClient *http.Client
}

// NewBackend creates a new, unattached PostgREST backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach validates the remote configuration and prepares the client.
// No request is made; the endpoint is first contacted by a store call.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if config.Backend == "" {
		config.Backend = types.BackendPostgREST
	}
	if err := config.Validate(); err != nil {
		return err
	}

	base, err := url.Parse(strings.TrimRight(config.Remote.URL, "/"))
	if err != nil {
		return fmt.Errorf("parse remote url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return fmt.Errorf("parse remote url: unsupported scheme %q", base.Scheme)
	}

	hc := b.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	b.client = &client{
		base:    base,
		apiKey:  config.Remote.APIKey,
		http:    hc,
		timeout: config.Remote.GetTimeout(),
	}
	b.attached = true
	return nil
}

// Detach releases the client. Stores obtained earlier return
// ErrCupboardDetached afterwards. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.http().CloseIdleConnections()
	b.attached = false
	b.client = nil
	return nil
}

// Todos returns the store for the todos table.
func (b *Backend) Todos() (types.ItemStore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrCupboardDetached
	}
	return &todosTable{backend: b}, nil
}

// Notes returns the store for the notes and categories tables.
func (b *Backend) Notes() (types.NoteStore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrCupboardDetached
	}
	return &notesTable{backend: b}, nil
}

func (b *Backend) http() *http.Client {
	if b.client == nil {
		return http.DefaultClient
	}
	return b.client.http
}

// rest returns the active client or ErrCupboardDetached.
func (b *Backend) rest() (*client, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrCupboardDetached
	}
	return b.client, nil
}
