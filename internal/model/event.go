package model

// EventSeatUpdate is the type tag carried by every seat-state broadcast.
const EventSeatUpdate = "SEAT_UPDATE"

// SeatUpdate is the event published to all viewers of a trip whenever a
// seat changes state for any reason (hold, release, purchase, expiry).
// Delivery is best effort: no persistence, no replay.
type SeatUpdate struct {
	Type string `json:"type"`
	Seat Seat   `json:"seat"`
}

// NewSeatUpdate wraps a seat snapshot in a broadcastable event.
func NewSeatUpdate(seat Seat) SeatUpdate {
	return SeatUpdate{Type: EventSeatUpdate, Seat: seat}
}
