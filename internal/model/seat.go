package model

// SeatStatus is the authoritative persisted state of a seat. Transitions
// are monotonic along available -> held -> sold, or held -> available on
// release/expiry. A seat never leaves sold, and never jumps from
// available straight to sold.
type SeatStatus string

const (
	StatusAvailable SeatStatus = "available"
	StatusHeld      SeatStatus = "held"
	StatusSold      SeatStatus = "sold"
)

// Seat is a single purchasable seat on a trip. Seats are created in bulk
// when their trip is created and are mutated only through the reservation
// coordinator. The persisted Status is a cached projection of the hold
// registry plus the sold state; the registry key is the authority for
// "currently held".
//
// Fields:
//
//	ID         – primary key identifier.
//	TripID     – trip to which this seat belongs.
//	SeatNumber – human readable label, e.g. "A12".
//	Status     – available, held or sold.
//	Price      – ticket price for this seat.
type Seat struct {
	ID         uint64     `json:"id"`         // seats.id
	TripID     uint64     `json:"tripId"`     // seats.trip_id
	SeatNumber string     `json:"seatNumber"` // seats.seat_number
	Status     SeatStatus `json:"status"`     // seats.status
	Price      float64    `json:"price"`      // seats.price
}
