package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

var errMethodNotAllowed = errors.New("method not allowed on table")

// resource adapts one table to the four REST verbs. Every method returns
// a slice of rows; PATCH and DELETE against a missing id return an empty
// slice, as PostgREST does.
type resource interface {
	list(ctx context.Context, id string) (any, error)
	create(ctx context.Context, bodies []json.RawMessage) (any, error)
	update(ctx context.Context, id string, body []byte) (any, error)
	remove(ctx context.Context, id string) (any, error)
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", types.ErrMalformed, err)
	}
	return nil
}

func findByID[T any](rows []T, id string, key func(T) string) []T {
	for _, r := range rows {
		if key(r) == id {
			return []T{r}
		}
	}
	return []T{}
}

type todosResource struct{ s *Server }

func (t todosResource) store() (types.ItemStore, error) { return t.s.cupboard.Todos() }

func itemID(i types.Item) string { return i.ID }

func (t todosResource) list(ctx context.Context, id string) (any, error) {
	store, err := t.store()
	if err != nil {
		return nil, err
	}
	items, err := store.ListOrderedByPosition(ctx)
	if err != nil {
		return nil, err
	}
	if id != "" {
		return findByID(items, id, itemID), nil
	}
	return items, nil
}

func (t todosResource) create(ctx context.Context, bodies []json.RawMessage) (any, error) {
	store, err := t.store()
	if err != nil {
		return nil, err
	}
	created := make([]types.Item, 0, len(bodies))
	for _, b := range bodies {
		var fields types.ItemFields
		if err := decode(b, &fields); err != nil {
			return nil, err
		}
		item, err := store.Create(ctx, fields)
		if err != nil {
			return nil, err
		}
		created = append(created, item)
	}
	return created, nil
}

func (t todosResource) update(ctx context.Context, id string, body []byte) (any, error) {
	store, err := t.store()
	if err != nil {
		return nil, err
	}
	var patch types.Patch
	if err := decode(body, &patch); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if err := store.Update(ctx, id, patch); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return []types.Item{}, nil
		}
		return nil, err
	}
	return t.list(ctx, id)
}

func (t todosResource) remove(ctx context.Context, id string) (any, error) {
	store, err := t.store()
	if err != nil {
		return nil, err
	}
	rows, err := t.list(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := store.Remove(ctx, id); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return []types.Item{}, nil
		}
		return nil, err
	}
	return rows, nil
}

type notesResource struct{ s *Server }

func (n notesResource) store() (types.NoteStore, error) { return n.s.cupboard.Notes() }

func noteID(n types.Note) string { return n.ID }

func (n notesResource) list(ctx context.Context, id string) (any, error) {
	store, err := n.store()
	if err != nil {
		return nil, err
	}
	notes, err := store.ListNotes(ctx)
	if err != nil {
		return nil, err
	}
	if id != "" {
		return findByID(notes, id, noteID), nil
	}
	return notes, nil
}

func (n notesResource) create(ctx context.Context, bodies []json.RawMessage) (any, error) {
	store, err := n.store()
	if err != nil {
		return nil, err
	}
	created := make([]types.Note, 0, len(bodies))
	for _, b := range bodies {
		var fields types.NoteFields
		if err := decode(b, &fields); err != nil {
			return nil, err
		}
		note, err := store.CreateNote(ctx, fields)
		if err != nil {
			return nil, err
		}
		created = append(created, note)
	}
	return created, nil
}

func (n notesResource) update(ctx context.Context, id string, body []byte) (any, error) {
	store, err := n.store()
	if err != nil {
		return nil, err
	}
	patch, err := decodeNotePatch(body)
	if err != nil {
		return nil, err
	}
	if err := store.UpdateNote(ctx, id, patch); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return []types.Note{}, nil
		}
		return nil, err
	}
	return n.list(ctx, id)
}

func (n notesResource) remove(ctx context.Context, id string) (any, error) {
	store, err := n.store()
	if err != nil {
		return nil, err
	}
	rows, err := n.list(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := store.DeleteNote(ctx, id); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return []types.Note{}, nil
		}
		return nil, err
	}
	return rows, nil
}

// decodeNotePatch reads a partial note row. An explicit null category_id
// clears the category.
func decodeNotePatch(body []byte) (types.NotePatch, error) {
	var fields map[string]json.RawMessage
	if err := decode(body, &fields); err != nil {
		return types.NotePatch{}, err
	}
	var p types.NotePatch
	for key, raw := range fields {
		var err error
		switch key {
		case "title":
			p.Title = new(string)
			err = decode(raw, p.Title)
		case "content":
			p.Content = new(string)
			err = decode(raw, p.Content)
		case "pinned":
			p.Pinned = new(bool)
			err = decode(raw, p.Pinned)
		case "color":
			p.Color = new(string)
			err = decode(raw, p.Color)
		case "category_id":
			if string(raw) == "null" {
				p.ClearCategory = true
				continue
			}
			p.CategoryID = new(string)
			err = decode(raw, p.CategoryID)
		default:
			err = fmt.Errorf("%w: unknown column %q", types.ErrMalformed, key)
		}
		if err != nil {
			return types.NotePatch{}, err
		}
	}
	return p, nil
}

type categoriesResource struct{ s *Server }

func (c categoriesResource) store() (types.NoteStore, error) { return c.s.cupboard.Notes() }

func categoryID(c types.Category) string { return c.ID }

func (c categoriesResource) list(ctx context.Context, id string) (any, error) {
	store, err := c.store()
	if err != nil {
		return nil, err
	}
	cats, err := store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if id != "" {
		return findByID(cats, id, categoryID), nil
	}
	return cats, nil
}

func (c categoriesResource) create(ctx context.Context, bodies []json.RawMessage) (any, error) {
	store, err := c.store()
	if err != nil {
		return nil, err
	}
	created := make([]types.Category, 0, len(bodies))
	for _, b := range bodies {
		var row struct {
			Name string `json:"name"`
		}
		if err := decode(b, &row); err != nil {
			return nil, err
		}
		cat, err := store.CreateCategory(ctx, row.Name)
		if err != nil {
			return nil, err
		}
		created = append(created, cat)
	}
	return created, nil
}

func (c categoriesResource) update(context.Context, string, []byte) (any, error) {
	return nil, fmt.Errorf("%w: categories", errMethodNotAllowed)
}

func (c categoriesResource) remove(ctx context.Context, id string) (any, error) {
	store, err := c.store()
	if err != nil {
		return nil, err
	}
	rows, err := c.list(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := store.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return []types.Category{}, nil
		}
		return nil, err
	}
	return rows, nil
}
