package postgrest

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

var _ types.ItemStore = (*todosTable)(nil)

type todosTable struct {
	backend *Backend
}

func (t *todosTable) Create(ctx context.Context, fields types.ItemFields) (types.Item, error) {
	c, err := t.backend.rest()
	if err != nil {
		return types.Item{}, err
	}
	var rows []types.Item
	if err := c.do(ctx, http.MethodPost, types.TodosTable, nil, []types.ItemFields{fields}, &rows); err != nil {
		return types.Item{}, err
	}
	return single(rows, types.TodosTable, "")
}

func (t *todosTable) Update(ctx context.Context, id string, patch types.Patch) error {
	if strings.TrimSpace(id) == "" {
		return types.ErrInvalidID
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	c, err := t.backend.rest()
	if err != nil {
		return err
	}
	var rows []types.Item
	if err := c.do(ctx, http.MethodPatch, types.TodosTable, IDFilter(id), patch, &rows); err != nil {
		return err
	}
	_, err = single(rows, types.TodosTable, id)
	return err
}

func (t *todosTable) Remove(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return types.ErrInvalidID
	}
	c, err := t.backend.rest()
	if err != nil {
		return err
	}
	var rows []types.Item
	if err := c.do(ctx, http.MethodDelete, types.TodosTable, IDFilter(id), nil, &rows); err != nil {
		return err
	}
	_, err = single(rows, types.TodosTable, id)
	return err
}

func (t *todosTable) ListOrderedByPosition(ctx context.Context) ([]types.Item, error) {
	c, err := t.backend.rest()
	if err != nil {
		return nil, err
	}
	q := url.Values{ParamSelect: {"*"}, ParamOrder: {OrderByPos}}
	rows := []types.Item{}
	if err := c.do(ctx, http.MethodGet, types.TodosTable, q, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
