// Package reservation implements the seat hold/purchase coordination
// core: the operations that prevent two callers from buying the same
// seat, expire unconfirmed holds, and decide what gets broadcast to
// connected seat-map viewers.
package reservation

import (
	"errors"
	"fmt"
)

// ErrSeatNotFound is returned when a seat identifier does not exist.
var ErrSeatNotFound = errors.New("seat not found")

// ErrSeatUnavailable is returned when a hold is attempted on a seat whose
// persisted status is not available (already held or sold). Callers
// should retry with a different seat or wait.
var ErrSeatUnavailable = errors.New("seat is not available for hold")

// ErrSeatHeld is returned when the hold registry already contains an
// active hold for the seat, meaning another caller won the race for it.
var ErrSeatHeld = errors.New("seat is already held by another user")

// ErrNotHolder is returned when a release is attempted by a caller that
// does not own the active hold. The caller's local state is stale and it
// should re-sync its seat map.
var ErrNotHolder = errors.New("no active hold owned by caller")

// ErrNoSeats is returned when a purchase is requested with an empty seat
// list.
var ErrNoSeats = errors.New("no seats selected for purchase")

// Purchase abort reasons. The whole transaction rolls back when any seat
// fails its check; the reason names the condition for the offending seat.
const (
	ReasonNotFound = "seat does not exist"
	ReasonNoHold   = "no valid hold on seat"
	ReasonNotHeld  = "seat is not in a held state"
)

// PurchaseError reports which seat caused a purchase transaction to
// abort. No partial effects remain: every seat in the request, including
// ones already processed, is rolled back.
type PurchaseError struct {
	SeatID uint64
	Reason string
}

func (e *PurchaseError) Error() string {
	return fmt.Sprintf("purchase aborted: seat %d: %s", e.SeatID, e.Reason)
}
