// Package notes implements the notes tool: notes filed under optional
// categories, pinned notes first, and a refresh from the store after
// every mutation.
package notes

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// UncategorizedName labels the group of notes without a category.
const UncategorizedName = "Uncategorized"

// Draft is the editor form for Save. An empty ID creates a note.
type Draft struct {
	ID         string
	Title      string
	Content    string
	CategoryID *string
	Color      string
}

// Group is one category section of the notes view.
type Group struct {
	// CategoryID is empty for the uncategorized group.
	CategoryID string
	Name       string
	Notes      []types.Note
}

// Service holds the last listing of notes and categories.
type Service struct {
	store types.NoteStore

	mu         sync.RWMutex
	notes      []types.Note
	categories []types.Category
}

// New returns a Service over store. Call Refresh to load it.
func New(store types.NoteStore) *Service {
	return &Service{store: store}
}

// Refresh replaces the cached notes and categories with the store's.
func (s *Service) Refresh(ctx context.Context) error {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	notes, err := s.store.ListNotes(ctx)
	if err != nil {
		return fmt.Errorf("list notes: %w", err)
	}

	s.mu.Lock()
	s.categories = cats
	s.notes = notes
	s.mu.Unlock()
	return nil
}

// refreshNotes reloads only the notes.
func (s *Service) refreshNotes(ctx context.Context) error {
	notes, err := s.store.ListNotes(ctx)
	if err != nil {
		return fmt.Errorf("list notes: %w", err)
	}
	s.mu.Lock()
	s.notes = notes
	s.mu.Unlock()
	return nil
}

// Notes returns a copy of the cached notes.
func (s *Service) Notes() []types.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Note(nil), s.notes...)
}

// Categories returns a copy of the cached categories.
func (s *Service) Categories() []types.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Category(nil), s.categories...)
}

// Save creates the draft as a new unpinned note, or edits the note named
// by d.ID. A draft with blank title and content is rejected.
func (s *Service) Save(ctx context.Context, d Draft) error {
	if strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Content) == "" {
		return types.ErrEmptyNote
	}
	if d.Color == "" {
		d.Color = types.DefaultNoteColor
	}
	if !types.ValidColor(d.Color) {
		return fmt.Errorf("%w: %q", types.ErrInvalidColor, d.Color)
	}
	if d.CategoryID != nil && *d.CategoryID == "" {
		d.CategoryID = nil
	}

	if d.ID == "" {
		note, err := s.store.CreateNote(ctx, types.NoteFields{
			Title:      d.Title,
			Content:    d.Content,
			CategoryID: d.CategoryID,
			Color:      d.Color,
		})
		if err != nil {
			return fmt.Errorf("create note: %w", err)
		}
		if err := note.Validate(); err != nil {
			return fmt.Errorf("create note: %w", err)
		}
	} else {
		patch := types.NotePatch{
			Title:         &d.Title,
			Content:       &d.Content,
			Color:         &d.Color,
			CategoryID:    d.CategoryID,
			ClearCategory: d.CategoryID == nil,
		}
		if err := s.store.UpdateNote(ctx, d.ID, patch); err != nil {
			return fmt.Errorf("update note %s: %w", d.ID, err)
		}
	}
	return s.refreshNotes(ctx)
}

// Delete removes a note.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteNote(ctx, id); err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	return s.refreshNotes(ctx)
}

// TogglePin flips the pinned flag of a cached note.
func (s *Service) TogglePin(ctx context.Context, id string) error {
	note, ok := s.find(id)
	if !ok {
		return fmt.Errorf("%w: note %s", types.ErrNotFound, id)
	}
	pinned := !note.Pinned
	if err := s.store.UpdateNote(ctx, id, types.NotePatch{Pinned: &pinned}); err != nil {
		return fmt.Errorf("pin note %s: %w", id, err)
	}
	return s.refreshNotes(ctx)
}

// AddCategory creates a category and appends it to the cache.
func (s *Service) AddCategory(ctx context.Context, name string) (types.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Category{}, types.ErrEmptyName
	}
	cat, err := s.store.CreateCategory(ctx, name)
	if err != nil {
		return types.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.mu.Lock()
	s.categories = append(s.categories, cat)
	s.mu.Unlock()
	return cat, nil
}

// DeleteCategory removes a category that no cached note references.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if s.inUse(id) {
		return types.ErrCategoryInUse
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	s.mu.Lock()
	kept := s.categories[:0:0]
	for _, c := range s.categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.categories = kept
	s.mu.Unlock()
	return nil
}

// Grouped returns the non-empty groups in category order with the
// uncategorized group last. Notes naming an unknown category count as
// uncategorized. Pinned notes come first within a group.
func (s *Service) Grouped() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	known := make(map[string]bool, len(s.categories))
	for _, c := range s.categories {
		known[c.ID] = true
	}
	byCat := make(map[string][]types.Note)
	for _, n := range s.notes {
		key := ""
		if n.CategoryID != nil && known[*n.CategoryID] {
			key = *n.CategoryID
		}
		byCat[key] = append(byCat[key], n)
	}

	var groups []Group
	for _, c := range s.categories {
		if notes := byCat[c.ID]; len(notes) > 0 {
			groups = append(groups, Group{CategoryID: c.ID, Name: c.Name, Notes: pinnedFirst(notes)})
		}
	}
	if notes := byCat[""]; len(notes) > 0 {
		groups = append(groups, Group{Name: UncategorizedName, Notes: pinnedFirst(notes)})
	}
	return groups
}

func pinnedFirst(notes []types.Note) []types.Note {
	out := make([]types.Note, 0, len(notes))
	for _, n := range notes {
		if n.Pinned {
			out = append(out, n)
		}
	}
	for _, n := range notes {
		if !n.Pinned {
			out = append(out, n)
		}
	}
	return out
}

func (s *Service) find(id string) (types.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notes {
		if n.ID == id {
			return n, true
		}
	}
	return types.Note{}, false
}

func (s *Service) inUse(categoryID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notes {
		if n.CategoryID != nil && *n.CategoryID == categoryID {
			return true
		}
	}
	return false
}
