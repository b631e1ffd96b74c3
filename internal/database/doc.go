// Package database opens the SQLite store and migrates the schema.
// Per-relation repositories live in the subpackages users, tokens,
// grants and books.
package database
