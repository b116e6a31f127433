package types

import "regexp"

// DefaultNoteColor is applied when a note is saved without a color.
const DefaultNoteColor = "#60a5fa"

// DefaultColorPresets are offered by the notes tool on first use.
var DefaultColorPresets = []string{
	"#f87171",
	"#60a5fa",
	"#34d399",
	"#facc15",
	"#a78bfa",
	"#9ca3af",
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Note is a free-form note, optionally filed under a category.
type Note struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Pinned     bool    `json:"pinned"`
	CategoryID *string `json:"category_id"`
	Color      string  `json:"color"`
}

// NoteFields are the writable fields of a note.
type NoteFields struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Pinned     bool    `json:"pinned"`
	CategoryID *string `json:"category_id"`
	Color      string  `json:"color"`
}

// NotePatch is a field mask for note updates. ClearCategory distinguishes
// "set category to none" from "leave category alone".
type NotePatch struct {
	Title         *string
	Content       *string
	Pinned        *bool
	CategoryID    *string
	ClearCategory bool
	Color         *string
}

// Category groups notes.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ValidColor reports whether c is a #rrggbb hex color.
func ValidColor(c string) bool {
	return colorPattern.MatchString(c)
}

// Validate checks the shape of a note returned by a store.
func (n Note) Validate() error {
	if n.ID == "" {
		return ErrMalformed
	}
	return nil
}
