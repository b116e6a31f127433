package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// Compile-time interface check: notesTable must implement NoteStore.
var _ types.NoteStore = (*notesTable)(nil)

// notesTable implements types.NoteStore on the notes and categories tables.
type notesTable struct {
	backend *Backend
}

const noteColumns = "id, title, content, pinned, category_id, color"

// ListNotes returns every note in creation order.
func (n *notesTable) ListNotes(ctx context.Context) ([]types.Note, error) {
	db, release, err := n.backend.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.QueryContext(ctx, "SELECT "+noteColumns+" FROM notes ORDER BY rowid ASC")
	if err != nil {
		return nil, wrapCtx(ctx, fmt.Errorf("querying notes: %w", err))
	}
	defer rows.Close()

	notes := []types.Note{}
	for rows.Next() {
		note, err := hydrateNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapCtx(ctx, fmt.Errorf("iterating notes: %w", err))
	}
	return notes, nil
}

// CreateNote inserts a note and returns the stored row.
func (n *notesTable) CreateNote(ctx context.Context, fields types.NoteFields) (types.Note, error) {
	db, release, err := n.backend.conn()
	if err != nil {
		return types.Note{}, err
	}
	defer release()

	color := fields.Color
	if color == "" {
		color = types.DefaultNoteColor
	}

	id := generateUUID()
	_, err = db.ExecContext(ctx,
		"INSERT INTO notes (id, title, content, pinned, category_id, color, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, fields.Title, fields.Content, fields.Pinned, nullable(fields.CategoryID), color, now(),
	)
	if err != nil {
		return types.Note{}, wrapCtx(ctx, fmt.Errorf("inserting note: %w", err))
	}

	row := db.QueryRowContext(ctx, "SELECT "+noteColumns+" FROM notes WHERE id = ?", id)
	note, err := hydrateNote(row)
	if err != nil {
		return types.Note{}, wrapCtx(ctx, fmt.Errorf("reading back note %s: %w", id, err))
	}
	return note, nil
}

// UpdateNote writes the non-nil patch fields.
func (n *notesTable) UpdateNote(ctx context.Context, id string, patch types.NotePatch) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, release, err := n.backend.conn()
	if err != nil {
		return err
	}
	defer release()

	var (
		sets []string
		args []any
	)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *patch.Content)
	}
	if patch.Pinned != nil {
		sets = append(sets, "pinned = ?")
		args = append(args, *patch.Pinned)
	}
	switch {
	case patch.ClearCategory:
		sets = append(sets, "category_id = NULL")
	case patch.CategoryID != nil:
		sets = append(sets, "category_id = ?")
		args = append(args, *patch.CategoryID)
	}
	if patch.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *patch.Color)
	}
	if len(sets) == 0 {
		var one int
		if err := db.QueryRowContext(ctx, "SELECT 1 FROM notes WHERE id = ?", id).Scan(&one); err != nil {
			return notFoundOr(ctx, err)
		}
		return nil
	}

	args = append(args, id)
	res, err := db.ExecContext(ctx, "UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return wrapCtx(ctx, fmt.Errorf("updating note %s: %w", id, err))
	}
	return checkAffected(res)
}

// DeleteNote removes a note.
func (n *notesTable) DeleteNote(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, release, err := n.backend.conn()
	if err != nil {
		return err
	}
	defer release()

	res, err := db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return wrapCtx(ctx, fmt.Errorf("deleting note %s: %w", id, err))
	}
	return checkAffected(res)
}

// ListCategories returns every category in creation order.
func (n *notesTable) ListCategories(ctx context.Context) ([]types.Category, error) {
	db, release, err := n.backend.conn()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY rowid ASC")
	if err != nil {
		return nil, wrapCtx(ctx, fmt.Errorf("querying categories: %w", err))
	}
	defer rows.Close()

	cats := []types.Category{}
	for rows.Next() {
		var c types.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapCtx(ctx, fmt.Errorf("iterating categories: %w", err))
	}
	return cats, nil
}

// CreateCategory inserts a category and returns it.
func (n *notesTable) CreateCategory(ctx context.Context, name string) (types.Category, error) {
	if strings.TrimSpace(name) == "" {
		return types.Category{}, types.ErrEmptyName
	}
	db, release, err := n.backend.conn()
	if err != nil {
		return types.Category{}, err
	}
	defer release()

	c := types.Category{ID: generateUUID(), Name: name}
	_, err = db.ExecContext(ctx,
		"INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)", c.ID, c.Name, now())
	if err != nil {
		return types.Category{}, wrapCtx(ctx, fmt.Errorf("inserting category: %w", err))
	}
	return c, nil
}

// DeleteCategory removes a category. It refuses while any note still
// references it.
func (n *notesTable) DeleteCategory(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, release, err := n.backend.conn()
	if err != nil {
		return err
	}
	defer release()

	var used int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notes WHERE category_id = ?", id).Scan(&used); err != nil {
		return wrapCtx(ctx, fmt.Errorf("counting notes for category %s: %w", id, err))
	}
	if used > 0 {
		return types.ErrCategoryInUse
	}

	res, err := db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return wrapCtx(ctx, fmt.Errorf("deleting category %s: %w", id, err))
	}
	return checkAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

// hydrateNote scans one notes row.
func hydrateNote(s scanner) (types.Note, error) {
	var (
		note     types.Note
		category sql.NullString
	)
	if err := s.Scan(&note.ID, &note.Title, &note.Content, &note.Pinned, &category, &note.Color); err != nil {
		return types.Note{}, err
	}
	if category.Valid {
		note.CategoryID = &category.String
	}
	return note, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
