package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/transitbook/bus-reservation/internal/model"
)

// DefaultChannel is the Redis pub/sub channel seat updates travel over.
const DefaultChannel = "seat_updates"

// Backplane is a drop-in replacement for the hub as the coordinator's
// publisher in a multi-instance deployment. Events are published to a
// shared Redis channel; every instance relays received frames into its
// local hub, so an update published on one instance reaches subscribers
// connected to another.
type Backplane struct {
	rdb     *redis.Client
	hub     *Hub
	channel string
}

// NewBackplane wires a backplane over the given Redis client and local
// hub. An empty channel selects DefaultChannel.
func NewBackplane(rdb *redis.Client, hub *Hub, channel string) *Backplane {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Backplane{rdb: rdb, hub: hub, channel: channel}
}

// Publish sends the event through the shared channel. When Redis is
// unreachable the event is still delivered to local subscribers so a
// single-instance deployment degrades instead of going silent.
func (b *Backplane) Publish(ev model.SeatUpdate) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("backplane: marshal seat update: %v", err)
		return
	}
	if err := b.rdb.Publish(context.Background(), b.channel, payload).Err(); err != nil {
		log.Printf("backplane: publish failed: %v; delivering locally only", err)
		b.hub.Forward(payload)
	}
}

// Run subscribes to the shared channel and relays every frame into the
// local hub until ctx is cancelled. It must be running on each instance
// for cross-instance delivery, including delivery of an instance's own
// events to its own subscribers.
func (b *Backplane) Run(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer func() { _ = sub.Close() }()
	log.Printf("backplane: relaying %q", b.channel)
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.hub.Forward([]byte(msg.Payload))
		}
	}
}
