// Package repository defines data access for the occupancy service.
// Sentinel errors declared here are shared across repositories so that
// handlers can translate failure modes into HTTP statuses without
// string matching.
package repository

import "errors"

// ErrUnknownCredential is returned when a barcode or student ID does
// not resolve to an active patron. Handlers translate this into 404.
var ErrUnknownCredential = errors.New("unknown credential")

// ErrConflict is returned when an insert or update collides with
// existing state, such as registering a barcode that is already bound
// to another patron. Handlers translate this into 409.
var ErrConflict = errors.New("conflict")
