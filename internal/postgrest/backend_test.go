package postgrest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/serbaguna/internal/postgrest"
	"github.com/mesh-intelligence/serbaguna/internal/server"
	"github.com/mesh-intelligence/serbaguna/internal/sqlite"
	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// newRemote serves a fresh SQLite cupboard over HTTP and returns an
// attached client backend pointed at it.
func newRemote(t *testing.T) *postgrest.Backend {
	t.Helper()
	store := sqlite.NewBackend()
	require.NoError(t, store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { store.Detach() })

	ts := httptest.NewServer(server.New(store, nil).Handler())
	t.Cleanup(ts.Close)

	b := postgrest.NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendPostgREST,
		Remote:  types.RemoteConfig{URL: ts.URL, APIKey: "anon"},
	}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestBackend_AttachValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  types.Config
		wantErr error
	}{
		{"missing url", types.Config{Backend: types.BackendPostgREST}, types.ErrRemoteURLEmpty},
		{"wrong backend", types.Config{Backend: "redis"}, types.ErrBackendUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := postgrest.NewBackend().Attach(tt.config)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	err := postgrest.NewBackend().Attach(types.Config{Remote: types.RemoteConfig{URL: "ftp://example.com"}})
	assert.Error(t, err, "unsupported scheme")
}

func TestBackend_DetachedStores(t *testing.T) {
	b := newRemote(t)
	todos, err := b.Todos()
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	_, err = todos.ListOrderedByPosition(t.Context())
	assert.ErrorIs(t, err, types.ErrCupboardDetached)
	_, err = b.Notes()
	assert.ErrorIs(t, err, types.ErrCupboardDetached)
	assert.NoError(t, b.Attach(types.Config{Remote: types.RemoteConfig{URL: "http://x"}}), "reattach after detach")
}

func TestTodos_RoundTrip(t *testing.T) {
	ctx := t.Context()
	todos, err := newRemote(t).Todos()
	require.NoError(t, err)

	a, err := todos.Create(ctx, types.ItemFields{Text: "A"})
	require.NoError(t, err)
	b, err := todos.Create(ctx, types.ItemFields{Text: "B"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, 0, a.Position)

	require.NoError(t, todos.Update(ctx, a.ID, types.PositionPatch(1)))
	require.NoError(t, todos.Update(ctx, b.ID, types.CompletedPatch(true)))

	items, err := todos.ListOrderedByPosition(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
	assert.True(t, items[0].Completed)
	assert.Equal(t, a.ID, items[1].ID)

	require.NoError(t, todos.Remove(ctx, a.ID))
	assert.ErrorIs(t, todos.Remove(ctx, a.ID), types.ErrNotFound)
	assert.ErrorIs(t, todos.Update(ctx, a.ID, types.CompletedPatch(false)), types.ErrNotFound)
	assert.ErrorIs(t, todos.Update(ctx, "", types.CompletedPatch(false)), types.ErrInvalidID)
}

func TestTodos_FalseIsSent(t *testing.T) {
	ctx := t.Context()
	todos, _ := newRemote(t).Todos()
	it, err := todos.Create(ctx, types.ItemFields{Text: "flip"})
	require.NoError(t, err)
	require.NoError(t, todos.Update(ctx, it.ID, types.CompletedPatch(true)))
	require.NoError(t, todos.Update(ctx, it.ID, types.CompletedPatch(false)))

	items, _ := todos.ListOrderedByPosition(ctx)
	require.Len(t, items, 1)
	assert.False(t, items[0].Completed)
}

func TestTodos_NegativePositionRejected(t *testing.T) {
	ctx := t.Context()
	todos, _ := newRemote(t).Todos()

	item, err := todos.Create(ctx, types.ItemFields{Text: "A"})
	require.NoError(t, err)

	assert.ErrorIs(t, todos.Update(ctx, item.ID, types.PositionPatch(-1)), types.ErrMalformed)

	items, err := todos.ListOrderedByPosition(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Position)
}

func TestNotes_RoundTrip(t *testing.T) {
	ctx := t.Context()
	notes, err := newRemote(t).Notes()
	require.NoError(t, err)

	cat, err := notes.CreateCategory(ctx, "work")
	require.NoError(t, err)
	n, err := notes.CreateNote(ctx, types.NoteFields{Title: "plan", CategoryID: &cat.ID})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultNoteColor, n.Color)

	assert.ErrorIs(t, notes.DeleteCategory(ctx, cat.ID), types.ErrCategoryInUse)

	require.NoError(t, notes.UpdateNote(ctx, n.ID, types.NotePatch{ClearCategory: true}))
	all, err := notes.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Nil(t, all[0].CategoryID)

	require.NoError(t, notes.DeleteCategory(ctx, cat.ID))
	require.NoError(t, notes.DeleteNote(ctx, n.ID))
	assert.ErrorIs(t, notes.DeleteNote(ctx, n.ID), types.ErrNotFound)

	_, err = notes.CreateCategory(ctx, "")
	assert.ErrorIs(t, err, types.ErrEmptyName)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantErr: types.ErrRemoteUnavailable,
		},
		{
			name: "undecodable body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(`{"oops":`))
			},
			wantErr: types.ErrMalformed,
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"code":"PGRST301","message":"JWT expired"}`))
			},
			wantErr: types.ErrRemoteUnavailable,
		},
		{
			name: "slow server",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			wantErr: types.ErrRemoteUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			b := postgrest.NewBackend()
			require.NoError(t, b.Attach(types.Config{Remote: types.RemoteConfig{URL: ts.URL, Timeout: 100 * time.Millisecond}}))
			defer b.Detach()
			todos, _ := b.Todos()

			_, err := todos.ListOrderedByPosition(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_SendsHeaders(t *testing.T) {
	var got http.Header
	var query string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		query = r.URL.RawQuery
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	b := postgrest.NewBackend()
	require.NoError(t, b.Attach(types.Config{Remote: types.RemoteConfig{URL: ts.URL + "/", APIKey: "secret"}}))
	defer b.Detach()
	todos, _ := b.Todos()

	items, err := todos.ListOrderedByPosition(t.Context())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, "secret", got.Get(postgrest.HeaderAPIKey))
	assert.Equal(t, "Bearer secret", got.Get("Authorization"))
	assert.Contains(t, query, "order=position.asc")
}
