package postgrest

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

var _ types.NoteStore = (*notesTable)(nil)

type notesTable struct {
	backend *Backend
}

func (n *notesTable) ListNotes(ctx context.Context) ([]types.Note, error) {
	c, err := n.backend.rest()
	if err != nil {
		return nil, err
	}
	rows := []types.Note{}
	if err := c.do(ctx, http.MethodGet, types.NotesTable, url.Values{ParamSelect: {"*"}}, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (n *notesTable) CreateNote(ctx context.Context, fields types.NoteFields) (types.Note, error) {
	c, err := n.backend.rest()
	if err != nil {
		return types.Note{}, err
	}
	var rows []types.Note
	if err := c.do(ctx, http.MethodPost, types.NotesTable, nil, []types.NoteFields{fields}, &rows); err != nil {
		return types.Note{}, err
	}
	return single(rows, types.NotesTable, "")
}

func (n *notesTable) UpdateNote(ctx context.Context, id string, patch types.NotePatch) error {
	if strings.TrimSpace(id) == "" {
		return types.ErrInvalidID
	}
	c, err := n.backend.rest()
	if err != nil {
		return err
	}
	var rows []types.Note
	if err := c.do(ctx, http.MethodPatch, types.NotesTable, IDFilter(id), NotePatchBody(patch), &rows); err != nil {
		return err
	}
	_, err = single(rows, types.NotesTable, id)
	return err
}

func (n *notesTable) DeleteNote(ctx context.Context, id string) error {
	return n.delete(ctx, types.NotesTable, id)
}

func (n *notesTable) ListCategories(ctx context.Context) ([]types.Category, error) {
	c, err := n.backend.rest()
	if err != nil {
		return nil, err
	}
	rows := []types.Category{}
	if err := c.do(ctx, http.MethodGet, types.CategoriesTable, url.Values{ParamSelect: {"*"}}, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (n *notesTable) CreateCategory(ctx context.Context, name string) (types.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Category{}, types.ErrEmptyName
	}
	c, err := n.backend.rest()
	if err != nil {
		return types.Category{}, err
	}
	var rows []types.Category
	body := []map[string]string{{"name": name}}
	if err := c.do(ctx, http.MethodPost, types.CategoriesTable, nil, body, &rows); err != nil {
		return types.Category{}, err
	}
	return single(rows, types.CategoriesTable, "")
}

func (n *notesTable) DeleteCategory(ctx context.Context, id string) error {
	return n.delete(ctx, types.CategoriesTable, id)
}

func (n *notesTable) delete(ctx context.Context, table, id string) error {
	if strings.TrimSpace(id) == "" {
		return types.ErrInvalidID
	}
	c, err := n.backend.rest()
	if err != nil {
		return err
	}
	var rows []map[string]any
	if err := c.do(ctx, http.MethodDelete, table, IDFilter(id), nil, &rows); err != nil {
		return err
	}
	_, err = single(rows, table, id)
	return err
}

// NotePatchBody renders a NotePatch as a partial row. A cleared category
// is sent as an explicit null.
func NotePatchBody(p types.NotePatch) map[string]any {
	body := map[string]any{}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Content != nil {
		body["content"] = *p.Content
	}
	if p.Pinned != nil {
		body["pinned"] = *p.Pinned
	}
	if p.Color != nil {
		body["color"] = *p.Color
	}
	switch {
	case p.ClearCategory:
		body["category_id"] = nil
	case p.CategoryID != nil:
		body["category_id"] = *p.CategoryID
	}
	return body
}
