package events

import (
	"context"
	"testing"
	"time"

	"marketbot/models"

	"github.com/stretchr/testify/assert"
)

func waitForEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestBus_Emit(t *testing.T) {
	t.Run("delivers to subscribed handlers", func(t *testing.T) {
		bus := NewBus()
		received := make(chan Event, 1)

		bus.Subscribe(EventTypePollLocked, func(ctx context.Context, event Event) {
			received <- event
		})

		poll := &models.Poll{ID: 7}
		bus.Emit(context.Background(), PollLockedEvent{Poll: poll})

		ev := waitForEvent(t, received)
		locked, ok := ev.(PollLockedEvent)
		assert.True(t, ok)
		assert.Equal(t, int64(7), locked.Poll.ID)
	})

	t.Run("ignores events with no subscribers", func(t *testing.T) {
		bus := NewBus()
		// must not panic or block
		bus.Emit(context.Background(), PollCreatedEvent{Poll: &models.Poll{ID: 1}})
	})

	t.Run("does not deliver to other event types", func(t *testing.T) {
		bus := NewBus()
		received := make(chan Event, 1)

		bus.Subscribe(EventTypePollFinalized, func(ctx context.Context, event Event) {
			received <- event
		})

		bus.Emit(context.Background(), PollLockedEvent{Poll: &models.Poll{ID: 1}})

		select {
		case <-received:
			t.Fatal("handler for a different event type was invoked")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("a panicking handler does not stop delivery to others", func(t *testing.T) {
		bus := NewBus()
		received := make(chan Event, 1)

		bus.Subscribe(EventTypePollLocked, func(ctx context.Context, event Event) {
			panic("handler exploded")
		})
		bus.Subscribe(EventTypePollLocked, func(ctx context.Context, event Event) {
			received <- event
		})

		bus.Emit(context.Background(), PollLockedEvent{Poll: &models.Poll{ID: 1}})

		waitForEvent(t, received)
	})
}

func TestTransactionalBus(t *testing.T) {
	t.Run("flush emits buffered events", func(t *testing.T) {
		bus := NewBus()
		received := make(chan Event, 2)
		bus.Subscribe(EventTypePollLocked, func(ctx context.Context, event Event) {
			received <- event
		})
		bus.Subscribe(EventTypePollFinalized, func(ctx context.Context, event Event) {
			received <- event
		})

		txBus := NewTransactionalBus(bus)
		txBus.Publish(PollLockedEvent{Poll: &models.Poll{ID: 1}})
		txBus.Publish(PollFinalizedEvent{Poll: &models.Poll{ID: 1}})

		select {
		case <-received:
			t.Fatal("event emitted before flush")
		case <-time.After(50 * time.Millisecond):
		}

		txBus.Flush(context.Background())

		waitForEvent(t, received)
		waitForEvent(t, received)
	})

	t.Run("discard drops buffered events", func(t *testing.T) {
		bus := NewBus()
		received := make(chan Event, 1)
		bus.Subscribe(EventTypePollLocked, func(ctx context.Context, event Event) {
			received <- event
		})

		txBus := NewTransactionalBus(bus)
		txBus.Publish(PollLockedEvent{Poll: &models.Poll{ID: 1}})
		txBus.Discard()
		txBus.Flush(context.Background())

		select {
		case <-received:
			t.Fatal("discarded event was emitted")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("flush clears the buffer", func(t *testing.T) {
		bus := NewBus()
		received := make(chan Event, 2)
		bus.Subscribe(EventTypePollLocked, func(ctx context.Context, event Event) {
			received <- event
		})

		txBus := NewTransactionalBus(bus)
		txBus.Publish(PollLockedEvent{Poll: &models.Poll{ID: 1}})
		txBus.Flush(context.Background())
		waitForEvent(t, received)

		txBus.Flush(context.Background())
		select {
		case <-received:
			t.Fatal("event emitted twice")
		case <-time.After(50 * time.Millisecond):
		}
	})
}
