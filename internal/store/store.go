// Package store provides PostgreSQL persistence for the tracker's records.
// Monetary values are stored and returned as text: the engine parses amounts
// exactly once at its own boundary and must not depend on a wire encoding.
package store

import "errors"

// ErrNotFound indicates that the requested record was not found.
var ErrNotFound = errors.New("record not found")
