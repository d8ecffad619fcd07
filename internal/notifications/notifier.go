// Package notifications publishes approval lifecycle events for
// out-of-process consumers (email bridge, dashboards).
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"

	"opsdesk/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	// EventsChannel receives every approval lifecycle event.
	EventsChannel = "approvals:events"
	// requestChannelPattern scopes events to a single request id.
	requestChannelPattern = "approvals:request:%s"
)

// Envelope is the wire format published on approval channels.
type Envelope struct {
	Event   models.ApprovalEvent    `json:"event"`
	Request *models.ApprovalRequest `json:"request"`
}

// Notifier provides helpers to publish approval events into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishApprovalEvent sends a lifecycle event to the global events channel
// and to the per-request channel. A nil client makes this a no-op so the
// service degrades gracefully without Redis.
func (n *Notifier) PublishApprovalEvent(
	ctx context.Context, req *models.ApprovalRequest, event models.ApprovalEvent,
) error {
	if n.rdb == nil {
		return nil
	}

	payload, err := json.Marshal(Envelope{Event: event, Request: req})
	if err != nil {
		return fmt.Errorf("marshal approval event: %w", err)
	}

	if err := n.rdb.Publish(ctx, EventsChannel, payload).Err(); err != nil {
		return err
	}
	channel := fmt.Sprintf(requestChannelPattern, req.ID)
	return n.rdb.Publish(ctx, channel, payload).Err()
}

// StartPatternSubscriber subscribes to all approval channels and calls
// onMessage for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "approvals:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
