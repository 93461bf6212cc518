// Package storage provides file storage for uploaded medical reports.
// It defines the FileStore interface, a local-disk implementation, and an
// orphan sweep that reconciles stored files against the set of names still
// referenced by the database.
package storage

import (
	"errors"
	"io"
)

var (
	// ErrFileNotFound is returned when the named file does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrMissingFileName is returned when an empty name is given.
	ErrMissingFileName = errors.New("file name is required")
)

// FileStore stores and removes uploaded report files. Names returned by Save
// are opaque; callers persist them and hand them back for Remove.
type FileStore interface {
	// Save writes src under a new unique name derived from originalName
	// and returns that name.
	Save(originalName string, src io.Reader) (string, error)
	// Remove deletes the named file. Removing a missing file returns
	// ErrFileNotFound.
	Remove(name string) error
	// Exists reports whether the named file is present.
	Exists(name string) bool
	// URL returns the public URL path for the named file.
	URL(name string) string
	// Sweep deletes every stored file whose name is not in referenced and
	// returns the names it removed.
	Sweep(referenced map[string]bool) ([]string, error)
}
