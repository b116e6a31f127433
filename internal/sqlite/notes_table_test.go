package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

func TestNotes_CreateAndList(t *testing.T) {
	ctx := t.Context()
	notes, err := newAttached(t).Notes()
	require.NoError(t, err)

	n, err := notes.CreateNote(ctx, types.NoteFields{Title: "groceries", Content: "eggs"})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, types.DefaultNoteColor, n.Color, "color defaults when blank")
	assert.Nil(t, n.CategoryID)
	assert.False(t, n.Pinned)

	all, err := notes.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, n, all[0])
}

func TestNotes_UpdateFields(t *testing.T) {
	ctx := t.Context()
	notes, _ := newAttached(t).Notes()

	cat, err := notes.CreateCategory(ctx, "work")
	require.NoError(t, err)
	n, _ := notes.CreateNote(ctx, types.NoteFields{Title: "t", Color: "#f87171"})

	pinned := true
	title := "renamed"
	require.NoError(t, notes.UpdateNote(ctx, n.ID, types.NotePatch{
		Title:      &title,
		Pinned:     &pinned,
		CategoryID: &cat.ID,
	}))

	all, _ := notes.ListNotes(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "renamed", all[0].Title)
	assert.True(t, all[0].Pinned)
	require.NotNil(t, all[0].CategoryID)
	assert.Equal(t, cat.ID, *all[0].CategoryID)
	assert.Equal(t, "#f87171", all[0].Color)

	require.NoError(t, notes.UpdateNote(ctx, n.ID, types.NotePatch{ClearCategory: true}))
	all, _ = notes.ListNotes(ctx)
	assert.Nil(t, all[0].CategoryID)

	assert.ErrorIs(t, notes.UpdateNote(ctx, "missing", types.NotePatch{Title: &title}), types.ErrNotFound)
}

func TestNotes_Delete(t *testing.T) {
	ctx := t.Context()
	notes, _ := newAttached(t).Notes()
	n, _ := notes.CreateNote(ctx, types.NoteFields{Title: "bye"})

	require.NoError(t, notes.DeleteNote(ctx, n.ID))
	assert.ErrorIs(t, notes.DeleteNote(ctx, n.ID), types.ErrNotFound)

	all, _ := notes.ListNotes(ctx)
	assert.Empty(t, all)
}

func TestCategories_DeleteRefusedWhileInUse(t *testing.T) {
	ctx := t.Context()
	notes, _ := newAttached(t).Notes()

	cat, _ := notes.CreateCategory(ctx, "home")
	n, err := notes.CreateNote(ctx, types.NoteFields{Title: "fix sink", CategoryID: &cat.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, notes.DeleteCategory(ctx, cat.ID), types.ErrCategoryInUse)

	require.NoError(t, notes.DeleteNote(ctx, n.ID))
	require.NoError(t, notes.DeleteCategory(ctx, cat.ID))

	cats, _ := notes.ListCategories(ctx)
	assert.Empty(t, cats)
	assert.ErrorIs(t, notes.DeleteCategory(ctx, cat.ID), types.ErrNotFound)
}

func TestCategories_CreateRejectsBlankName(t *testing.T) {
	notes, _ := newAttached(t).Notes()
	_, err := notes.CreateCategory(t.Context(), "  ")
	assert.ErrorIs(t, err, types.ErrEmptyName)
}

func TestNotes_UnknownCategoryRejected(t *testing.T) {
	notes, _ := newAttached(t).Notes()
	ghost := "no-such-category"
	_, err := notes.CreateNote(t.Context(), types.NoteFields{Title: "x", CategoryID: &ghost})
	assert.Error(t, err, "foreign key is enforced")
}
