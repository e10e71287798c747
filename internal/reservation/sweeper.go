package reservation

import (
	"context"
	"log"
	"time"

	"github.com/transitbook/bus-reservation/internal/model"
)

// Sweeper reconciles the durable status cache with the hold registry's
// TTL clock. The registry key vanishing is the authoritative expiry; a
// seat still persisted as held with no key is logically available, and
// the sweeper fixes the row and broadcasts the correction. Clients run
// their own countdown and usually release first; the sweeper is what
// guarantees a crashed or disconnected client cannot hold a seat
// forever.
type Sweeper struct {
	seats    SeatStore
	holds    HoldRegistry
	pub      Publisher
	interval time.Duration
}

// NewSweeper builds a sweeper that scans every interval. The interval
// should be a fraction of the hold TTL so an expired hold is observed
// within one cycle.
func NewSweeper(seats SeatStore, holds HoldRegistry, pub Publisher, interval time.Duration) *Sweeper {
	return &Sweeper{seats: seats, holds: holds, pub: pub, interval: interval}
}

// Run blocks, sweeping on a ticker until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	log.Printf("sweeper: started, interval %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("sweeper: stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				log.Printf("sweeper: sweep failed: %v", err)
			}
		}
	}
}

// Sweep performs one reconciliation pass and returns how many seats it
// released. Seats whose registry key is still present are untouched.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	held, err := s.seats.HeldSeats(ctx)
	if err != nil {
		return 0, err
	}
	released := 0
	for _, seat := range held {
		holder, err := s.holds.Holder(ctx, seat.ID)
		if err != nil {
			return released, err
		}
		if holder != "" {
			continue // hold still active
		}
		// Conditional flip: a purchase may have committed since the
		// HeldSeats read, and a sold seat must never be reopened.
		ok, err := s.seats.ReleaseHeld(ctx, seat.ID)
		if err != nil {
			return released, err
		}
		if !ok {
			continue
		}
		seat.Status = model.StatusAvailable
		s.pub.Publish(model.NewSeatUpdate(seat))
		released++
	}
	if released > 0 {
		log.Printf("sweeper: released %d expired hold(s)", released)
	}
	return released, nil
}
