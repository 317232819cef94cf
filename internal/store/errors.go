package store

import "errors"

// ErrNotFound is returned when a record does not exist, or when an
// owner-scoped mutation matched no row. Callers must not distinguish
// "absent" from "owned by someone else".
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert violates a uniqueness
// constraint, such as registering an email twice.
var ErrConflict = errors.New("already exists")
