// Package repository holds the in-memory tables behind the development
// API server.  Each repository guards its own table; cross-table rules
// (a class needs an existing course, a score an existing assessment) are
// enforced by the handlers.
package repository

import "errors"

// ErrNotFound is returned when no row has the requested key.  Handlers
// translate it into a 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate it into a 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write would violate a uniqueness rule or
// leave dependent rows behind.  Handlers translate it into a 409 response.
var ErrConflict = errors.New("conflict")
