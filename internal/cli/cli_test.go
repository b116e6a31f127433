package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/serbaguna/internal/notes"
	"github.com/mesh-intelligence/serbaguna/internal/prefs"
	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// env is an isolated config and data directory pair.
type env struct {
	configDir string
	dataDir   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	t.Setenv("SERBAGUNA_CONFIG_DIR", "")
	t.Setenv("SERBAGUNA_DATA_DIR", "")
	t.Setenv("SERBAGUNA_BACKEND", "")
	return env{configDir: t.TempDir(), dataDir: t.TempDir()}
}

func (e env) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	code := run(full, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func (e env) runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, errOut, code := e.run(t, append([]string{"--json"}, args...)...)
	require.Equal(t, exitSuccess, code, errOut)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out, _, code := e.run(t, "version")
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "serbaguna v"+Version)
}

func TestInit(t *testing.T) {
	e := newEnv(t)
	out, errOut, code := e.run(t, "init")
	require.Equal(t, exitSuccess, code, errOut)
	assert.Contains(t, out, "initialized successfully")

	_, err := os.Stat(filepath.Join(e.configDir, "config.yaml"))
	assert.NoError(t, err, "default config written")
	_, err = os.Stat(filepath.Join(e.dataDir, "serbaguna.db"))
	assert.NoError(t, err, "database created")
}

func TestTodoWorkflow(t *testing.T) {
	e := newEnv(t)

	for _, text := range []string{"A", "B", "C"} {
		var item types.Item
		e.runJSON(t, &item, "todo", "add", text)
		assert.Equal(t, text, item.Text)
	}

	var items []types.Item
	e.runJSON(t, &items, "todo", "list")
	require.Len(t, items, 3)
	assert.Equal(t, []string{"A", "B", "C"}, texts(items), "ties keep creation order")

	// Drag the first row onto the third.
	e.runJSON(t, &items, "todo", "move", "1", "3")
	assert.Equal(t, []string{"B", "C", "A"}, texts(items))
	for i, it := range items {
		assert.Equal(t, i, it.Position)
	}

	// A fresh invocation sees the persisted order.
	e.runJSON(t, &items, "todo", "list")
	assert.Equal(t, []string{"B", "C", "A"}, texts(items))

	var toggled types.Item
	e.runJSON(t, &toggled, "todo", "toggle", "2")
	assert.Equal(t, "C", toggled.Text)
	assert.True(t, toggled.Completed)

	e.runJSON(t, &toggled, "todo", "toggle", "--done", items[1].ID)
	assert.True(t, toggled.Completed, "--done is idempotent")

	var deleted map[string]string
	e.runJSON(t, &deleted, "todo", "delete", "1")
	assert.Equal(t, items[0].ID, deleted["deleted"])

	e.runJSON(t, &items, "todo", "list")
	require.Len(t, items, 2)
	assert.Equal(t, []int{1, 2}, []int{items[0].Position, items[1].Position}, "delete leaves a gap")

	e.runJSON(t, &items, "todo", "compact")
	assert.Equal(t, []int{0, 1}, []int{items[0].Position, items[1].Position})
}

func TestTodoErrors(t *testing.T) {
	e := newEnv(t)

	_, errOut, code := e.run(t, "todo", "toggle", "99")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, errOut, "not found")

	_, _, code = e.run(t, "todo", "add", "   ")
	assert.Equal(t, exitUserError, code)

	_, _, code = e.run(t, "todo", "move", "1")
	assert.Equal(t, exitUserError, code, "argument errors are user errors")
}

func TestNoteWorkflow(t *testing.T) {
	e := newEnv(t)

	var cat types.Category
	e.runJSON(t, &cat, "category", "add", "Work")

	var groups []notes.Group
	e.runJSON(t, &groups, "note", "add", "--title", "standup", "--category", "work")
	e.runJSON(t, &groups, "note", "add", "--title", "loose", "--content", "thought")
	require.Len(t, groups, 2)
	assert.Equal(t, "Work", groups[0].Name)
	assert.Equal(t, notes.UncategorizedName, groups[1].Name)

	loose := groups[1].Notes[0]
	e.runJSON(t, &groups, "note", "pin", loose.ID)
	assert.True(t, groups[1].Notes[0].Pinned)

	e.runJSON(t, &groups, "note", "edit", loose.ID, "--color", "#f87171")
	assert.Equal(t, "#f87171", groups[1].Notes[0].Color)
	assert.Equal(t, "thought", groups[1].Notes[0].Content, "unset flags keep values")

	_, _, code := e.run(t, "category", "delete", cat.ID)
	assert.Equal(t, exitUserError, code, "category in use")

	_, _, code = e.run(t, "note", "add", "--title", "x", "--color", "red")
	assert.Equal(t, exitUserError, code)

	_, _, code = e.run(t, "note", "add")
	assert.Equal(t, exitUserError, code, "empty note")
}

func TestToolsAndTheme(t *testing.T) {
	e := newEnv(t)

	_, _, code := e.run(t, "tools", "pin", "spreadsheet")
	assert.Equal(t, exitUserError, code)

	var p prefs.Prefs
	e.runJSON(t, &p, "tools", "pin", "notes")
	assert.Equal(t, []string{"Notes"}, p.Pinned)

	out, _, code := e.run(t, "tools", "pin", "Notes")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "Notes already pinned")

	out, _, code = e.run(t, "tools", "list")
	require.Equal(t, exitSuccess, code)
	assert.True(t, strings.HasPrefix(out, "Pinned:"))
	assert.Contains(t, out, "[coming soon]")

	var theme map[string]string
	e.runJSON(t, &theme, "theme", "toggle")
	assert.Equal(t, prefs.ThemeDark, theme["theme"])
	e.runJSON(t, &theme, "theme", "show")
	assert.Equal(t, prefs.ThemeDark, theme["theme"])

	_, _, code = e.run(t, "theme", "set", "sepia")
	assert.Equal(t, exitUserError, code)
}

func TestExportImport(t *testing.T) {
	e := newEnv(t)
	var item types.Item
	e.runJSON(t, &item, "todo", "add", "carry me")

	dump := t.TempDir()
	_, errOut, code := e.run(t, "export", dump)
	require.Equal(t, exitSuccess, code, errOut)

	other := env{configDir: e.configDir, dataDir: t.TempDir()}
	out, errOut, code := other.run(t, "import", dump)
	require.Equal(t, exitSuccess, code, errOut)
	assert.Contains(t, out, "todos")

	var items []types.Item
	other.runJSON(t, &items, "todo", "list")
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitUserError, exitCode(types.ErrNotFound))
	assert.Equal(t, exitSysError, exitCode(types.ErrRemoteUnavailable))
	assert.Equal(t, exitSysError, exitCode(sysErr("disk: %w", os.ErrPermission)))
	assert.Equal(t, exitUserError, exitCode(assert.AnError))
}

func texts(items []types.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}
