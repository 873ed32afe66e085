// Package repository holds the MySQL-backed stores: bookings, courts and
// permission lookups.  The sentinel errors below let the service layer
// tell a rejected write from an infrastructure failure.
package repository

import "errors"

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as inserting a booking whose interval overlaps
// an active booking on the same court and date.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when an update addresses a row that does not
// exist.
var ErrNotFound = errors.New("not found")

// ErrNotActive is returned when a status change addresses a booking that
// is no longer active.
var ErrNotActive = errors.New("booking not active")
