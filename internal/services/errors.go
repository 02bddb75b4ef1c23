// Package services defines the business logic for the cafe directory.
// This file centralizes service-level error values so that they can be
// returned consistently by service methods and checked by callers.
//
// Translation into user-facing messages and HTTP status codes is performed
// at the handler layer.
package services

import "errors"

// Lookup errors.
var (
	// ErrCafeNotFound indicates that no cafe exists with the requested id.
	ErrCafeNotFound = errors.New("cafe not found")

	// ErrNoCafesAtLocation is returned by Search when the location filter
	// matches nothing.
	ErrNoCafesAtLocation = errors.New("no cafes at location")

	// ErrNoCafes is returned by Random when the store is empty.
	ErrNoCafes = errors.New("no cafes available")
)

// Write errors.
var (
	// ErrMissingFields is returned when an add request lacks a required field
	// or carries a blank one.
	ErrMissingFields = errors.New("missing required field(s)")

	// ErrDuplicateName is returned when another cafe already uses the name.
	ErrDuplicateName = errors.New("cafe name already exists")

	// ErrMissingPrice is returned when a price update carries no price.
	ErrMissingPrice = errors.New("missing new price")

	// ErrMissingAPIKey is returned when a delete request carries no api key.
	ErrMissingAPIKey = errors.New("missing api key")

	// ErrInvalidAPIKey is returned when the api key does not match.
	ErrInvalidAPIKey = errors.New("invalid api key")
)
