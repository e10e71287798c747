package model

import "time"

// Trip represents a single scheduled bus journey between two cities.
// Trips are immutable once created: there is no edit path, and a trip
// owns the lifetime of its seats (deleting a trip cascades to them).
//
// Fields:
//
//	ID            – primary key identifier.
//	RouteName     – human readable route label, e.g. "Gurugram to Jaipur".
//	BusName       – name of the coach operating the trip.
//	Origin        – departure city.
//	Destination   – arrival city.
//	DepartureTime – scheduled departure (UTC).
//	ArrivalTime   – scheduled arrival (UTC).
//	CreatedAt     – creation timestamp.
type Trip struct {
	ID            uint64    `json:"id"`            // trips.id
	RouteName     string    `json:"routeName"`     // trips.route_name
	BusName       string    `json:"busName"`       // trips.bus_name
	Origin        string    `json:"origin"`        // trips.origin
	Destination   string    `json:"destination"`   // trips.destination
	DepartureTime time.Time `json:"departureTime"` // trips.departure_time
	ArrivalTime   time.Time `json:"arrivalTime"`   // trips.arrival_time
	CreatedAt     time.Time `json:"-"`             // trips.created_at

	// Seats is populated only on the trip detail endpoint, ordered by
	// seat id ascending. It is nil on trip list responses.
	Seats []Seat `json:"seats,omitempty"`
}
