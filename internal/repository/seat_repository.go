package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/transitbook/bus-reservation/internal/model"
	"github.com/transitbook/bus-reservation/internal/reservation"
)

// SeatRepo provides data access to the seats table and implements the
// reservation coordinator's SeatStore contract. Status writes are
// conditional UPDATEs so that concurrent transitions resolve on the row
// itself: a write that matched zero rows means the caller lost the race.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to the provided database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

const seatColumns = `id, trip_id, seat_number, status, price`

func scanSeat(row interface{ Scan(...any) error }) (*model.Seat, error) {
	var s model.Seat
	if err := row.Scan(&s.ID, &s.TripID, &s.SeatNumber, &s.Status, &s.Price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// SeatByID loads one seat. Returns reservation.ErrSeatNotFound when the
// id is unknown.
func (r *SeatRepo) SeatByID(ctx context.Context, id uint64) (*model.Seat, error) {
	return scanSeat(r.db.QueryRowContext(ctx, `SELECT `+seatColumns+` FROM seats WHERE id = ?`, id))
}

// ListByTrip returns every seat of a trip ordered by seat id ascending,
// the order the seat-map endpoint promises.
func (r *SeatRepo) ListByTrip(ctx context.Context, tripID uint64) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE trip_id = ? ORDER BY id ASC`, tripID)
	if err != nil {
		return nil, err
	}
	return collectSeats(rows)
}

// HeldSeats returns every seat persisted as held, across all trips. The
// expiry sweeper uses this to find rows whose registry key has vanished.
func (r *SeatRepo) HeldSeats(ctx context.Context) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE status = ? ORDER BY id ASC`, model.StatusHeld)
	if err != nil {
		return nil, err
	}
	return collectSeats(rows)
}

func collectSeats(rows *sql.Rows) ([]model.Seat, error) {
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.TripID, &s.SeatNumber, &s.Status, &s.Price); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// MarkHeld flips a seat from available to held. False means the seat was
// not available anymore.
func (r *SeatRepo) MarkHeld(ctx context.Context, id uint64) (bool, error) {
	return r.updateStatus(ctx, id, model.StatusAvailable, model.StatusHeld)
}

// ReleaseHeld flips a seat from held back to available. False means the
// seat was not held anymore (e.g. a purchase committed in between).
func (r *SeatRepo) ReleaseHeld(ctx context.Context, id uint64) (bool, error) {
	return r.updateStatus(ctx, id, model.StatusHeld, model.StatusAvailable)
}

func (r *SeatRepo) updateStatus(ctx context.Context, id uint64, from, to model.SeatStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE seats SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Begin opens a purchase transaction. The caller must Commit or
// Rollback; row locks taken by SeatForUpdate are held until then.
func (r *SeatRepo) Begin(ctx context.Context) (reservation.SeatTx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &seatTx{tx: tx}, nil
}

// seatTx adapts *sql.Tx to the coordinator's SeatTx contract.
type seatTx struct {
	tx *sql.Tx
}

// SeatForUpdate re-reads a seat under SELECT ... FOR UPDATE. The row
// lock defends against a concurrent purchase or hold-expiry sweep
// racing the registry check that preceded it.
func (t *seatTx) SeatForUpdate(ctx context.Context, id uint64) (*model.Seat, error) {
	return scanSeat(t.tx.QueryRowContext(ctx,
		`SELECT `+seatColumns+` FROM seats WHERE id = ? FOR UPDATE`, id))
}

// MarkSold sets the locked seat to sold.
func (t *seatTx) MarkSold(ctx context.Context, id uint64) error {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE seats SET status = ? WHERE id = ?`, model.StatusSold, id)
	return err
}

func (t *seatTx) Commit() error   { return t.tx.Commit() }
func (t *seatTx) Rollback() error { return t.tx.Rollback() }
