package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// Compile-time interface check: todosTable must implement ItemStore.
var _ types.ItemStore = (*todosTable)(nil)

// todosTable implements types.ItemStore on the todos table.
type todosTable struct {
	backend *Backend
}

// Create inserts a row with a fresh UUID v7 and the column default
// position (0), and returns it.
func (t *todosTable) Create(ctx context.Context, fields types.ItemFields) (types.Item, error) {
	db, release, err := t.backend.conn()
	if err != nil {
		return types.Item{}, err
	}
	defer release()

	id := generateUUID()
	_, err = db.ExecContext(ctx,
		"INSERT INTO todos (id, text, completed, created_at) VALUES (?, ?, ?, ?)",
		id, fields.Text, fields.Completed, now(),
	)
	if err != nil {
		return types.Item{}, wrapCtx(ctx, fmt.Errorf("inserting todo: %w", err))
	}

	row := db.QueryRowContext(ctx,
		"SELECT id, text, completed, position FROM todos WHERE id = ?", id)
	var item types.Item
	if err := row.Scan(&item.ID, &item.Text, &item.Completed, &item.Position); err != nil {
		return types.Item{}, wrapCtx(ctx, fmt.Errorf("reading back todo %s: %w", id, err))
	}
	return item, nil
}

// Update writes the non-nil patch fields. An empty patch only checks that
// the row exists. Negative positions are rejected with ErrMalformed.
func (t *todosTable) Update(ctx context.Context, id string, patch types.Patch) error {
	if id == "" {
		return types.ErrInvalidID
	}
	if err := patch.Validate(); err != nil {
		return err
	}
	db, release, err := t.backend.conn()
	if err != nil {
		return err
	}
	defer release()

	var (
		sets []string
		args []any
	)
	if patch.Text != nil {
		sets = append(sets, "text = ?")
		args = append(args, *patch.Text)
	}
	if patch.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, *patch.Completed)
	}
	if patch.Position != nil {
		sets = append(sets, "position = ?")
		args = append(args, *patch.Position)
	}
	if patch.IsEmpty() {
		var one int
		err := db.QueryRowContext(ctx, "SELECT 1 FROM todos WHERE id = ?", id).Scan(&one)
		if err != nil {
			return notFoundOr(ctx, err)
		}
		return nil
	}

	args = append(args, id)
	res, err := db.ExecContext(ctx,
		"UPDATE todos SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return wrapCtx(ctx, fmt.Errorf("updating todo %s: %w", id, err))
	}
	return checkAffected(res)
}

// Remove deletes the row. Other rows keep their positions.
func (t *todosTable) Remove(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, release, err := t.backend.conn()
	if err != nil {
		return err
	}
	defer release()

	res, err := db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return wrapCtx(ctx, fmt.Errorf("deleting todo %s: %w", id, err))
	}
	return checkAffected(res)
}

// ListOrderedByPosition returns all rows by ascending position; rows that
// share a position come back in insertion order.
func (t *todosTable) ListOrderedByPosition(ctx context.Context) ([]types.Item, error) {
	db, release, err := t.backend.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.QueryContext(ctx,
		"SELECT id, text, completed, position FROM todos ORDER BY position ASC, rowid ASC")
	if err != nil {
		return nil, wrapCtx(ctx, fmt.Errorf("querying todos: %w", err))
	}
	defer rows.Close()

	items := []types.Item{}
	for rows.Next() {
		var item types.Item
		if err := rows.Scan(&item.ID, &item.Text, &item.Completed, &item.Position); err != nil {
			return nil, fmt.Errorf("scanning todo: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapCtx(ctx, fmt.Errorf("iterating todos: %w", err))
	}
	return items, nil
}
