// Package types defines the Cupboard and store interfaces, entity types,
// and standard error types for Serbaguna.
//
// An Item is a row of an ordered collection (the to-do list). Notes and
// categories back the notes tool. Stores are stateless conduits to a remote
// table; ordering and optimistic mutation live in internal/ordered and
// internal/dispatch.
package types
