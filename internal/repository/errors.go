// Package repository implements the data access layer over MySQL.  The
// sentinel values defined here let handlers distinguish failure scenarios
// without inspecting driver errors: ErrNotFound maps to HTTP 404 and
// ErrConflict to 409.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a signup collides with an existing email.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when an insert or delete cannot proceed because of
// conflicting state, such as a duplicate unique key.
var ErrConflict = errors.New("conflict")

// isDuplicate reports whether err is a MySQL duplicate-key violation.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
