package events

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestPublish_NoHandlerRegistered(t *testing.T) {
	bus := NewBus(4)

	_, err := bus.Publish(context.Background(), "nobody.listens", map[string]string{"a": "b"})
	if err == nil {
		t.Fatal("expected error when no handler is registered")
	}
	if !strings.Contains(err.Error(), "nobody.listens") {
		t.Errorf("error should name the event, got: %v", err)
	}
}

func TestPublish_DeliversToHandler(t *testing.T) {
	bus := NewBus(4)

	received := make(chan Event, 1)
	bus.Subscribe(EventUserCreate, func(ctx context.Context, evt Event) error {
		received <- evt
		return nil
	})
	bus.Start(1)
	defer bus.Stop()

	eventID, err := bus.Publish(context.Background(), EventUserCreate, UserCreatePayload{Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if eventID == "" {
		t.Error("expected a non-empty event ID")
	}

	select {
	case evt := <-received:
		if evt.ID != eventID {
			t.Errorf("delivered event ID %q, published %q", evt.ID, eventID)
		}
		if !strings.Contains(string(evt.Data), "ada@example.com") {
			t.Errorf("payload not delivered: %s", evt.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler never received the event")
	}
}

func TestPublish_UniqueEventIDs(t *testing.T) {
	bus := NewBus(16)
	bus.Subscribe("noop", func(ctx context.Context, evt Event) error { return nil })
	bus.Start(1)
	defer bus.Stop()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		id, err := bus.Publish(context.Background(), "noop", nil)
		if err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
		if seen[id] {
			t.Fatalf("duplicate event ID %q", id)
		}
		seen[id] = true
	}
}

func TestPublish_ContextCanceledOnFullQueue(t *testing.T) {
	bus := NewBus(1)
	bus.Subscribe("slow", func(ctx context.Context, evt Event) error { return nil })
	// Bus is never started, so the queue fills and stays full.

	if _, err := bus.Publish(context.Background(), "slow", nil); err != nil {
		t.Fatalf("first publish should fill the queue: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := bus.Publish(ctx, "slow", nil)
	if err == nil {
		t.Fatal("expected error when queue is full and context expires")
	}
}

func TestStop_WaitsForInFlightHandlers(t *testing.T) {
	bus := NewBus(8)

	var mu sync.Mutex
	handled := 0
	bus.Subscribe("count", func(ctx context.Context, evt Event) error {
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		handled++
		mu.Unlock()
		return nil
	})
	bus.Start(2)

	for i := 0; i < 5; i++ {
		if _, err := bus.Publish(context.Background(), "count", nil); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	bus.Stop()

	mu.Lock()
	defer mu.Unlock()
	if handled != 5 {
		t.Errorf("expected 5 handled events after Stop, got %d", handled)
	}
}
