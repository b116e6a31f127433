package types

// Remote table names.
const (
	TodosTable      = "todos"
	NotesTable      = "notes"
	CategoriesTable = "categories"
)

// StandardTableNames lists all table names for enumeration.
var StandardTableNames = []string{
	TodosTable,
	NotesTable,
	CategoriesTable,
}
