// Package sqlite implements the embedded remote store on SQLite.
package sqlite

// Schema DDL for all tables. Statements are idempotent so an existing
// database file is reused across runs.
const (
	createTodos = `CREATE TABLE IF NOT EXISTS todos (
    id TEXT PRIMARY KEY,
    text TEXT NOT NULL,
    completed INTEGER NOT NULL DEFAULT 0,
    position INTEGER NOT NULL DEFAULT 0 CHECK (position >= 0),
    created_at TEXT NOT NULL
);`

	createCategories = `CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createNotes = `CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    pinned INTEGER NOT NULL DEFAULT 0,
    category_id TEXT,
    color TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (category_id) REFERENCES categories(id)
);`
)

// Index DDL for common queries.
const (
	idxTodosPosition = `CREATE INDEX IF NOT EXISTS idx_todos_position ON todos(position);`
	idxNotesCategory = `CREATE INDEX IF NOT EXISTS idx_notes_category ON notes(category_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createTodos,
	createCategories,
	createNotes,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxTodosPosition,
	idxNotesCategory,
}
