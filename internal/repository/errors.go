package repository

import "errors"

// ErrTripNotFound is returned when a trip identifier does not exist.
// Handlers should translate this into an HTTP 404 response. Seat-level
// failures use the reservation package's error taxonomy instead, since
// those conditions are decided by the coordinator, not the store.
var ErrTripNotFound = errors.New("trip not found")
