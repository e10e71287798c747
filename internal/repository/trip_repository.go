package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/transitbook/bus-reservation/internal/model"
)

// TripRepo provides read access to the trips table. Trips are immutable
// after creation, so the repository only exposes lookups; rows are
// inserted once by the startup seed (or an external admin process).
type TripRepo struct {
	db *sql.DB
}

// NewTripRepo returns a TripRepo bound to the provided database.
func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{db: db} }

const tripColumns = `id, route_name, bus_name, origin, destination, departure_time, arrival_time, created_at`

// GetByID fetches a single trip by its primary key. It returns
// ErrTripNotFound when no row exists.
func (r *TripRepo) GetByID(ctx context.Context, id uint64) (*model.Trip, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = ?`, id)
	var t model.Trip
	err := row.Scan(&t.ID, &t.RouteName, &t.BusName, &t.Origin, &t.Destination,
		&t.DepartureTime, &t.ArrivalTime, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns summary metadata for every trip, ordered by departure
// time. Seats are not loaded; use SeatRepo.ListByTrip for the seat map.
func (r *TripRepo) List(ctx context.Context) ([]model.Trip, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY departure_time, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var trips []model.Trip
	for rows.Next() {
		var t model.Trip
		if err := rows.Scan(&t.ID, &t.RouteName, &t.BusName, &t.Origin, &t.Destination,
			&t.DepartureTime, &t.ArrivalTime, &t.CreatedAt); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trips, nil
}
