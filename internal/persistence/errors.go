// Package persistence defines the stored record shapes and the repository
// contracts the JSON store implements.
package persistence

import "errors"

var (
	// ErrNotFound reports a missing record or resource file.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate reports a create that collides with an existing key.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrCorrupt reports a resource file that cannot be parsed at all. It is
	// never treated as an empty resource.
	ErrCorrupt = errors.New("persistence: corrupt resource")
)
