package events

import (
	"context"
	"sync"

	"marketbot/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypePollCreated   EventType = "poll_created"
	EventTypePollLocked    EventType = "poll_locked"
	EventTypePollFinalized EventType = "poll_finalized"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// PollCreatedEvent represents a newly opened poll
type PollCreatedEvent struct {
	Poll    *models.Poll
	Options []*models.PollOption
}

func (e PollCreatedEvent) Type() EventType {
	return EventTypePollCreated
}

// PollLockedEvent represents a poll that stopped accepting bets.
// StakeTotals carries one aggregate per option, in option-index order.
type PollLockedEvent struct {
	Poll        *models.Poll
	StakeTotals []decimal.Decimal
}

func (e PollLockedEvent) Type() EventType {
	return EventTypePollLocked
}

// PollFinalizedEvent represents a settled poll
type PollFinalizedEvent struct {
	Poll          *models.Poll
	WinningOption *models.PollOption
	Payouts       []models.Payout
}

func (e PollFinalizedEvent) Type() EventType {
	return EventTypePollFinalized
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the publisher
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events published during a unit of work and
// flushes them to the real bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional buffer over the given bus
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish buffers an event until Flush
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful commit.
// Events run on a background context so a handler outlives the
// transaction's context.
func (b *TransactionalBus) Flush(ctx context.Context) {
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events; called after rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
