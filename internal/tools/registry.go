// Package tools lists the utilities shown on the home page.
package tools

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// Tool is one registry entry.
type Tool struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ComingSoon  bool   `json:"coming_soon"`
	Maintenance bool   `json:"maintenance"`
}

// Available reports whether the tool can be opened.
func (t Tool) Available() bool {
	return !t.ComingSoon && !t.Maintenance
}

// Status is a short label for unavailable tools, empty otherwise.
func (t Tool) Status() string {
	switch {
	case t.ComingSoon:
		return "coming soon"
	case t.Maintenance:
		return "maintenance"
	default:
		return ""
	}
}

var registry = []Tool{
	{Name: "Calculator", Slug: "calculator", Description: "Quick arithmetic"},
	{Name: "Notes", Slug: "notes", Description: "Notes filed by category"},
	{Name: "Todo List", Slug: "todolist", Description: "Daily tasks you can tick off and reorder"},
	{Name: "Converter", Slug: "converter", Description: "Length and temperature conversion"},
	{Name: "Summarize", Slug: "summarize", Description: "Summarize long text"},
	{Name: "Quiz", Slug: "quiz", Description: "Short quizzes", ComingSoon: true},
	{Name: "YouTube Downloader", Slug: "youtube-downloader", Description: "Save videos for offline use", Maintenance: true},
	{Name: "Mini Games", Slug: "mini-games", Description: "Simple games"},
}

// All returns the registry in display order.
func All() []Tool {
	return slices.Clone(registry)
}

// Lookup finds a tool by name or slug, ignoring case.
func Lookup(key string) (Tool, error) {
	key = strings.TrimSpace(key)
	for _, t := range registry {
		if strings.EqualFold(t.Name, key) || strings.EqualFold(t.Slug, key) {
			return t, nil
		}
	}
	return Tool{}, fmt.Errorf("%w: %q", types.ErrUnknownTool, key)
}

// Partition splits the registry into pinned and other tools, each in
// registry order. Pins are tool names; unknown names are ignored.
func Partition(pinned []string) (pinnedTools, others []Tool) {
	for _, t := range registry {
		if slices.Contains(pinned, t.Name) {
			pinnedTools = append(pinnedTools, t)
		} else {
			others = append(others, t)
		}
	}
	return pinnedTools, others
}
