// Package prefs persists home page preferences: the theme and the
// pinned tools. Every change is written to disk immediately.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// FileName is the preferences file inside the config directory.
const FileName = "prefs.yaml"

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Prefs is the persisted document.
type Prefs struct {
	Theme  string   `yaml:"theme" json:"theme"`
	Pinned []string `yaml:"pinned_tools" json:"pinned_tools"`
}

// Defaults returns the preferences used before anything is saved.
func Defaults() Prefs {
	return Prefs{Theme: ThemeLight, Pinned: []string{}}
}

// Store owns a Prefs value and its file.
type Store struct {
	path string

	mu    sync.Mutex
	prefs Prefs
}

// Load reads path, returning defaults when the file does not exist.
func Load(path string) (*Store, error) {
	s := &Store{path: path, prefs: Defaults()}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read prefs: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.prefs); err != nil {
		return nil, fmt.Errorf("parse prefs %s: %w", path, err)
	}
	if s.prefs.Theme != ThemeDark {
		s.prefs.Theme = ThemeLight
	}
	if s.prefs.Pinned == nil {
		s.prefs.Pinned = []string{}
	}
	return s, nil
}

// Get returns a copy of the current preferences.
func (s *Store) Get() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.prefs
	p.Pinned = slices.Clone(s.prefs.Pinned)
	return p
}

// IsPinned reports whether name is pinned.
func (s *Store) IsPinned(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.prefs.Pinned, name)
}

// TogglePin pins name if unpinned, unpins it otherwise, and saves.
// It returns the new pinned state.
func (s *Store) TogglePin(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pinned := !slices.Contains(s.prefs.Pinned, name)
	s.setPinned(name, pinned)
	return pinned, s.save()
}

// SetPinned pins or unpins name and saves.
func (s *Store) SetPinned(name string, pinned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPinned(name, pinned)
	return s.save()
}

func (s *Store) setPinned(name string, pinned bool) {
	idx := slices.Index(s.prefs.Pinned, name)
	switch {
	case pinned && idx < 0:
		s.prefs.Pinned = append(s.prefs.Pinned, name)
	case !pinned && idx >= 0:
		s.prefs.Pinned = slices.Delete(s.prefs.Pinned, idx, idx+1)
	}
}

// SetTheme sets the theme and saves.
func (s *Store) SetTheme(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("%w: %q", types.ErrInvalidTheme, theme)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.Theme = theme
	return s.save()
}

// ToggleTheme flips between light and dark and saves. It returns the
// new theme.
func (s *Store) ToggleTheme() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prefs.Theme == ThemeDark {
		s.prefs.Theme = ThemeLight
	} else {
		s.prefs.Theme = ThemeDark
	}
	return s.prefs.Theme, s.save()
}

// save writes the file atomically. Callers hold mu.
func (s *Store) save() error {
	data, err := yaml.Marshal(s.prefs)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename prefs: %w", err)
	}
	return nil
}
