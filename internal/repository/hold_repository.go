package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// HoldRepo is the ephemeral hold registry backed by Redis. One key per
// held seat, value = holder identity, expiry = the fixed hold TTL. The
// SET NX conditional write is the single synchronization primitive that
// orders concurrent hold attempts; key expiry is what bounds hold
// duration regardless of client behaviour.
type HoldRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewHoldRepo returns a HoldRepo applying the given TTL to every hold.
func NewHoldRepo(rdb *redis.Client, ttl time.Duration) *HoldRepo {
	return &HoldRepo{rdb: rdb, ttl: ttl}
}

func holdKey(seatID uint64) string { return fmt.Sprintf("seat:%d:hold", seatID) }

// releaseScript deletes the hold key only while it still belongs to the
// given holder. Without the ownership check a key that expires and is
// re-acquired between a caller's read and its delete would let a stale
// holder drop the new hold; the script makes check and delete one
// atomic step.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

// Acquire creates the hold record only if no record exists, in a single
// round trip. False means another holder's record is already present.
func (r *HoldRepo) Acquire(ctx context.Context, seatID uint64, holderID string) (bool, error) {
	return r.rdb.SetNX(ctx, holdKey(seatID), holderID, r.ttl).Result()
}

// Holder returns the identity currently holding the seat, or "" when the
// key is absent (never taken, released, or expired).
func (r *HoldRepo) Holder(ctx context.Context, seatID uint64) (string, error) {
	v, err := r.rdb.Get(ctx, holdKey(seatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Release deletes the hold record if holderID still owns it. A record
// owned by someone else, or no record at all, is left untouched and
// false is returned.
func (r *HoldRepo) Release(ctx context.Context, seatID uint64, holderID string) (bool, error) {
	n, err := releaseScript.Run(ctx, r.rdb, []string{holdKey(seatID)}, holderID).Int64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TTL reports the fixed hold duration applied by Acquire.
func (r *HoldRepo) TTL() time.Duration { return r.ttl }
