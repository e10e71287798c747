// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into confirmation emails.
package queue

// BookingConfirmedEvent is published after a purchase transaction
// commits. It contains enough information for downstream consumers to
// send the confirmation email and invoice without querying the primary
// database.
type BookingConfirmedEvent struct {
	TripID        uint64   `json:"trip_id"`
	RouteName     string   `json:"route_name"`
	BusName       string   `json:"bus_name"`
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	DepartureTime string   `json:"departure_time"`
	ArrivalTime   string   `json:"arrival_time"`
	SeatNumbers   []string `json:"seats"`
	TotalPrice    float64  `json:"total_price"`
	Email         string   `json:"email"`
	ConfirmedAt   string   `json:"confirmed_at"`
}
