package stream

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher broadcasts unread-change signals over a Redis pub/sub channel so
// subscribers connected to any instance are reached. The message payload is
// the recipient id.
type Publisher struct {
	rc      *redis.Client
	channel string
}

// NewPublisher creates a Publisher on the given channel.
func NewPublisher(rc *redis.Client, channel string) *Publisher {
	return &Publisher{rc: rc, channel: channel}
}

// UnreadChanged publishes the recipient id. Push delivery is at-most-once, so
// a failed publish is logged and dropped: clients reconcile via the
// authoritative count endpoint.
func (p *Publisher) UnreadChanged(ctx context.Context, recipientID string) {
	if err := p.rc.Publish(ctx, p.channel, recipientID).Err(); err != nil {
		slog.Warn("publish unread update", "recipient_id", recipientID, "error", err)
	}
}

// Relay consumes the pub/sub channel and forwards each signal into the local
// hub. It reconnects with a short backoff when the subscription drops, and
// returns when ctx is cancelled.
func Relay(ctx context.Context, rc *redis.Client, channel string, hub *Hub) {
	for {
		sub := rc.Subscribe(ctx, channel)
		ch := sub.Channel()

	recv:
		for {
			select {
			case <-ctx.Done():
				sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break recv
				}
				hub.Notify(msg.Payload)
			}
		}

		sub.Close()
		if ctx.Err() != nil {
			return
		}
		slog.Error("unread relay channel closed, reconnecting")
		time.Sleep(time.Second)
	}
}
