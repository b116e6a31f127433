package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

func TestTodos_Create(t *testing.T) {
	todos, err := newAttached(t).Todos()
	require.NoError(t, err)

	item, err := todos.Create(t.Context(), types.ItemFields{Text: "buy milk"})
	require.NoError(t, err)

	parsed, err := uuid.Parse(item.ID)
	require.NoError(t, err, "ID must be a UUID")
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Equal(t, "buy milk", item.Text)
	assert.False(t, item.Completed)
	assert.Equal(t, 0, item.Position, "store default position")
	assert.NoError(t, item.Validate())
}

func TestTodos_ListOrderedByPosition(t *testing.T) {
	ctx := t.Context()
	todos, _ := newAttached(t).Todos()

	a, _ := todos.Create(ctx, types.ItemFields{Text: "A"})
	b, _ := todos.Create(ctx, types.ItemFields{Text: "B"})
	c, _ := todos.Create(ctx, types.ItemFields{Text: "C"})

	require.NoError(t, todos.Update(ctx, a.ID, types.PositionPatch(2)))
	require.NoError(t, todos.Update(ctx, b.ID, types.PositionPatch(0)))
	require.NoError(t, todos.Update(ctx, c.ID, types.PositionPatch(1)))

	items, err := todos.ListOrderedByPosition(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, []string{items[0].ID, items[1].ID, items[2].ID})
	for i, it := range items {
		assert.Equal(t, i, it.Position)
	}
}

func TestTodos_ListTiesInInsertionOrder(t *testing.T) {
	ctx := t.Context()
	todos, _ := newAttached(t).Todos()

	first, _ := todos.Create(ctx, types.ItemFields{Text: "first"})
	second, _ := todos.Create(ctx, types.ItemFields{Text: "second"})

	items, err := todos.ListOrderedByPosition(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.ID, items[0].ID)
	assert.Equal(t, second.ID, items[1].ID)
}

func TestTodos_ListEmpty(t *testing.T) {
	todos, _ := newAttached(t).Todos()
	items, err := todos.ListOrderedByPosition(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestTodos_Update(t *testing.T) {
	ctx := t.Context()
	todos, _ := newAttached(t).Todos()
	item, _ := todos.Create(ctx, types.ItemFields{Text: "walk dog"})

	require.NoError(t, todos.Update(ctx, item.ID, types.CompletedPatch(true)))

	items, _ := todos.ListOrderedByPosition(ctx)
	require.Len(t, items, 1)
	assert.True(t, items[0].Completed)
	assert.Equal(t, "walk dog", items[0].Text, "unpatched fields are untouched")
	assert.Equal(t, 0, items[0].Position)

	text := "walk cat"
	require.NoError(t, todos.Update(ctx, item.ID, types.Patch{Text: &text}))
	items, _ = todos.ListOrderedByPosition(ctx)
	assert.Equal(t, "walk cat", items[0].Text)
	assert.True(t, items[0].Completed)
}

func TestTodos_UpdateErrors(t *testing.T) {
	ctx := t.Context()
	todos, _ := newAttached(t).Todos()

	assert.ErrorIs(t, todos.Update(ctx, "", types.CompletedPatch(true)), types.ErrInvalidID)
	assert.ErrorIs(t, todos.Update(ctx, "missing", types.CompletedPatch(true)), types.ErrNotFound)
	assert.ErrorIs(t, todos.Update(ctx, "missing", types.Patch{}), types.ErrNotFound)

	item, _ := todos.Create(ctx, types.ItemFields{Text: "x"})
	assert.NoError(t, todos.Update(ctx, item.ID, types.Patch{}), "empty patch on existing row")
}

func TestTodos_UpdateRejectsNegativePosition(t *testing.T) {
	ctx := t.Context()
	todos, _ := newAttached(t).Todos()

	a, _ := todos.Create(ctx, types.ItemFields{Text: "A"})
	b, _ := todos.Create(ctx, types.ItemFields{Text: "B"})

	err := todos.Update(ctx, a.ID, types.PositionPatch(-1))
	require.ErrorIs(t, err, types.ErrMalformed)

	items, err := todos.ListOrderedByPosition(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []string{a.ID, b.ID}, []string{items[0].ID, items[1].ID})
	for _, it := range items {
		assert.NoError(t, it.Validate(), "every listed row must survive a reload")
	}
}

func TestTodos_RemoveLeavesGap(t *testing.T) {
	ctx := t.Context()
	todos, _ := newAttached(t).Todos()

	var created []types.Item
	for i, text := range []string{"A", "B", "C"} {
		it, err := todos.Create(ctx, types.ItemFields{Text: text})
		require.NoError(t, err)
		require.NoError(t, todos.Update(ctx, it.ID, types.PositionPatch(i)))
		created = append(created, it)
	}

	require.NoError(t, todos.Remove(ctx, created[1].ID))

	items, err := todos.ListOrderedByPosition(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].Position)
	assert.Equal(t, 2, items[1].Position, "remove does not compact")

	assert.ErrorIs(t, todos.Remove(ctx, created[1].ID), types.ErrNotFound)
	assert.ErrorIs(t, todos.Remove(ctx, ""), types.ErrInvalidID)
}

func TestTodos_CancelledContext(t *testing.T) {
	todos, _ := newAttached(t).Todos()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := todos.ListOrderedByPosition(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrRemoteUnavailable)
}
