package reservation

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"github.com/transitbook/bus-reservation/internal/model"
)

// SeatStore is the durable side of the coordinator: the relational store
// that owns authoritative seat status. Status writes are conditional so
// that a stale caller can never clobber a sold seat.
type SeatStore interface {
	// SeatByID loads a seat snapshot. Returns ErrSeatNotFound for
	// unknown identifiers.
	SeatByID(ctx context.Context, id uint64) (*model.Seat, error)
	// MarkHeld flips available -> held. The false return means the seat
	// was no longer available, i.e. the caller lost a race on the row.
	MarkHeld(ctx context.Context, id uint64) (bool, error)
	// ReleaseHeld flips held -> available. The false return means the
	// seat was not held anymore (for example a purchase committed in
	// between), and the caller must not publish a correction.
	ReleaseHeld(ctx context.Context, id uint64) (bool, error)
	// HeldSeats lists every seat persisted as held, for expiry
	// reconciliation.
	HeldSeats(ctx context.Context) ([]model.Seat, error)
	// Begin opens the all-or-nothing purchase transaction.
	Begin(ctx context.Context) (SeatTx, error)
}

// SeatTx is a purchase transaction over the durable store. Row locks
// taken by SeatForUpdate are held until Commit or Rollback.
type SeatTx interface {
	// SeatForUpdate re-reads a seat under a row-level exclusive lock.
	// Returns ErrSeatNotFound for unknown identifiers.
	SeatForUpdate(ctx context.Context, id uint64) (*model.Seat, error)
	MarkSold(ctx context.Context, id uint64) error
	Commit() error
	Rollback() error
}

// TripStore supplies trip summaries for the confirmation side-effect.
type TripStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Trip, error)
}

// HoldRegistry is the ephemeral side of the coordinator: a TTL-capable
// key-value store whose conditional write is the sole mutual-exclusion
// point between concurrent hold attempts. Existence of a key is the
// authority for "this seat is currently held by this holder"; keys
// evaporate on their own when the TTL elapses.
type HoldRegistry interface {
	// Acquire writes the hold only if absent. The false return means
	// another holder's key is already present.
	Acquire(ctx context.Context, seatID uint64, holderID string) (bool, error)
	// Holder returns the current holder identity, or "" when no hold
	// exists (expired or never taken).
	Holder(ctx context.Context, seatID uint64) (string, error)
	// Release deletes the hold key only while holderID still owns it,
	// atomically, so a stale caller can never drop a hold that expired
	// and was re-acquired by someone else. The false return means no
	// key owned by holderID existed, and nothing was deleted.
	Release(ctx context.Context, seatID uint64, holderID string) (bool, error)
	// TTL reports the fixed hold duration applied by Acquire.
	TTL() time.Duration
}

// Publisher fans a seat-update event out to every connected viewer.
// Best effort: no delivery guarantee and publishing never blocks.
type Publisher interface {
	Publish(ev model.SeatUpdate)
}

// Confirmation carries everything the downstream confirmation pipeline
// needs (email with attached invoice) without re-querying the stores.
type Confirmation struct {
	Trip        model.Trip
	SeatNumbers []string
	TotalPrice  float64
	Email       string
	ConfirmedAt time.Time
}

// Notifier triggers the asynchronous purchase confirmation. Failures are
// logged, never surfaced to the purchaser: by the time it runs, the
// purchase is already committed.
type Notifier interface {
	PurchaseConfirmed(ctx context.Context, conf Confirmation) error
}

// PurchaseResult summarises a committed purchase.
type PurchaseResult struct {
	Seats       []model.Seat
	SeatNumbers []string
	TotalPrice  float64
}

// Coordinator implements hold, release and purchase as atomic, race-free
// operations against the durable seat store and the ephemeral hold
// registry. All mutual exclusion lives in those two shared stores, so
// any number of coordinator instances can run concurrently.
type Coordinator struct {
	seats  SeatStore
	trips  TripStore
	holds  HoldRegistry
	pub    Publisher
	notify Notifier
}

// NewCoordinator wires the coordinator's collaborators. notify may be
// nil, in which case purchases commit without a confirmation side-effect.
func NewCoordinator(seats SeatStore, trips TripStore, holds HoldRegistry, pub Publisher, notify Notifier) *Coordinator {
	if seats == nil || trips == nil || holds == nil || pub == nil {
		panic("nil store passed to NewCoordinator")
	}
	return &Coordinator{seats: seats, trips: trips, holds: holds, pub: pub, notify: notify}
}

// Hold attempts to take a temporary hold on a seat for holderID.
// The registry's conditional write decides races: of N concurrent holds
// on the same seat, at most one succeeds. On success the persisted
// status becomes held, a seat-update event is broadcast, and the updated
// seat plus the hold's expiry time are returned.
func (c *Coordinator) Hold(ctx context.Context, seatID uint64, holderID string) (*model.Seat, time.Time, error) {
	seat, err := c.seats.SeatByID(ctx, seatID)
	if err != nil {
		return nil, time.Time{}, err
	}
	if seat.Status != model.StatusAvailable {
		return nil, time.Time{}, ErrSeatUnavailable
	}
	ok, err := c.holds.Acquire(ctx, seatID, holderID)
	if err != nil {
		return nil, time.Time{}, err
	}
	if !ok {
		return nil, time.Time{}, ErrSeatHeld
	}
	expiresAt := time.Now().UTC().Add(c.holds.TTL())
	held, err := c.seats.MarkHeld(ctx, seatID)
	if err != nil {
		_, _ = c.holds.Release(ctx, seatID, holderID)
		return nil, time.Time{}, err
	}
	if !held {
		// The row stopped being available between the snapshot read and
		// the status write. Give the registry key back and report the
		// seat as gone.
		_, _ = c.holds.Release(ctx, seatID, holderID)
		return nil, time.Time{}, ErrSeatUnavailable
	}
	seat.Status = model.StatusHeld
	c.pub.Publish(model.NewSeatUpdate(*seat))
	return seat, expiresAt, nil
}

// Release gives back a hold owned by holderID. The seat returns to
// available and a seat-update event is broadcast. Releasing a hold that
// belongs to someone else (or does not exist) fails with ErrNotHolder
// and mutates nothing.
func (c *Coordinator) Release(ctx context.Context, seatID uint64, holderID string) error {
	holder, err := c.holds.Holder(ctx, seatID)
	if err != nil {
		return err
	}
	if holder == "" || holder != holderID {
		return ErrNotHolder
	}
	seat, err := c.seats.SeatByID(ctx, seatID)
	if err != nil {
		return err
	}
	removed, err := c.holds.Release(ctx, seatID, holderID)
	if err != nil {
		return err
	}
	if !removed {
		// The hold expired and was re-acquired by someone else after the
		// ownership check above. The new hold stands; nothing to undo.
		return ErrNotHolder
	}
	released, err := c.seats.ReleaseHeld(ctx, seatID)
	if err != nil {
		return err
	}
	if released {
		seat.Status = model.StatusAvailable
		c.pub.Publish(model.NewSeatUpdate(*seat))
	}
	return nil
}

// Purchase transitions every requested seat from held to sold inside one
// all-or-nothing transaction. Seats are processed in canonical ascending
// id order so that overlapping multi-seat purchases always acquire row
// locks in the same sequence and cannot deadlock. Any seat failing its
// hold or status check aborts the whole transaction with a
// PurchaseError naming the seat.
//
// After commit the hold keys are deleted, one sold event is broadcast
// per seat, and the confirmation side-effect runs asynchronously.
func (c *Coordinator) Purchase(ctx context.Context, seatIDs []uint64, holderID, email string) (*PurchaseResult, error) {
	if len(seatIDs) == 0 {
		return nil, ErrNoSeats
	}
	ids := canonicalIDs(seatIDs)

	tx, err := c.seats.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	seats := make([]model.Seat, 0, len(ids))
	for _, id := range ids {
		holder, err := c.holds.Holder(ctx, id)
		if err != nil {
			return nil, err
		}
		if holder != holderID {
			return nil, &PurchaseError{SeatID: id, Reason: ReasonNoHold}
		}
		seat, err := tx.SeatForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, ErrSeatNotFound) {
				return nil, &PurchaseError{SeatID: id, Reason: ReasonNotFound}
			}
			return nil, err
		}
		// A hold could expire and the sweeper reclaim the row after the
		// registry check above; the row lock plus this re-check closes
		// that race.
		if seat.Status != model.StatusHeld {
			return nil, &PurchaseError{SeatID: id, Reason: ReasonNotHeld}
		}
		if err := tx.MarkSold(ctx, id); err != nil {
			return nil, err
		}
		seat.Status = model.StatusSold
		seats = append(seats, *seat)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	res := &PurchaseResult{Seats: seats}
	for _, s := range seats {
		if _, err := c.holds.Release(ctx, s.ID, holderID); err != nil {
			log.Printf("coordinator: delete hold key for seat %d: %v", s.ID, err)
		}
		c.pub.Publish(model.NewSeatUpdate(s))
		res.SeatNumbers = append(res.SeatNumbers, s.SeatNumber)
		res.TotalPrice += s.Price
	}
	c.confirmAsync(seats[0].TripID, res, email)
	return res, nil
}

// confirmAsync triggers the confirmation notification without gating the
// caller's response. Errors are logged only; the purchase has already
// committed.
func (c *Coordinator) confirmAsync(tripID uint64, res *PurchaseResult, email string) {
	if c.notify == nil {
		return
	}
	conf := Confirmation{
		SeatNumbers: res.SeatNumbers,
		TotalPrice:  res.TotalPrice,
		Email:       email,
		ConfirmedAt: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		trip, err := c.trips.GetByID(ctx, tripID)
		if err != nil {
			log.Printf("coordinator: load trip %d for confirmation: %v", tripID, err)
			return
		}
		conf.Trip = *trip
		if err := c.notify.PurchaseConfirmed(ctx, conf); err != nil {
			log.Printf("coordinator: purchase confirmation for %s failed: %v", email, err)
		}
	}()
}

// canonicalIDs deduplicates the caller's seat list and sorts it
// ascending, making lock order identical across all callers.
func canonicalIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
