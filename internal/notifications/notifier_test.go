package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"opsdesk/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestNotifierNilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	err := n.PublishApprovalEvent(context.Background(),
		&models.ApprovalRequest{ID: "req-1"}, models.EventCreated)
	if err != nil {
		t.Fatalf("expected nil error from nil-client notifier, got %v", err)
	}
	if err := n.StartPatternSubscriber(context.Background(), nil); err != nil {
		t.Fatalf("expected nil error from nil-client subscriber, got %v", err)
	}
}

func TestNotifierPublishApprovalEvent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, EventsChannel)
	defer func() { _ = sub.Close() }()
	// Wait for the subscription to be established before publishing.
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	n := NewNotifier(rdb)
	req := &models.ApprovalRequest{
		ID:         "req-1",
		Action:     models.ActionTerminate,
		ResourceID: "i-123",
		Status:     models.ApprovalStatusPending,
	}
	if err := n.PublishApprovalEvent(ctx, req, models.EventCreated); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var env Envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}
		if env.Event != models.EventCreated {
			t.Errorf("expected created event, got %s", env.Event)
		}
		if env.Request == nil || env.Request.ID != "req-1" {
			t.Errorf("unexpected request in envelope: %+v", env.Request)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestNotifierPatternSubscriberReceivesPerRequestChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := NewNotifier(rdb)
	got := make(chan string, 4)
	if err := n.StartPatternSubscriber(ctx, func(channel, payload string) {
		got <- channel
	}); err != nil {
		t.Fatalf("subscriber failed to start: %v", err)
	}

	// Give the pattern subscription a moment to register.
	time.Sleep(100 * time.Millisecond)

	req := &models.ApprovalRequest{ID: "req-9", Status: models.ApprovalStatusApproved}
	if err := n.PublishApprovalEvent(ctx, req, models.EventApproved); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	channels := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case ch := <-got:
			channels[ch] = true
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out after receiving %d messages", i)
		}
	}
	if !channels[EventsChannel] {
		t.Error("expected a message on the events channel")
	}
	if !channels["approvals:request:req-9"] {
		t.Error("expected a message on the per-request channel")
	}
}
