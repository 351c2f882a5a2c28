package events

import (
	"context"
	"sync"

	"doubloon/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange      EventType = "balance_change"
	EventTypeUserCreated        EventType = "user_created"
	EventTypeSpinCompleted      EventType = "spin_completed"
	EventTypeVoiceSessionEnded  EventType = "voice_session_ended"
	EventTypeDailyRewardGranted EventType = "daily_reward_granted"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	GuildID         int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user creation
type UserCreatedEvent struct {
	DiscordID      int64
	Username       string
	InitialBalance int64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// SpinCompletedEvent represents a finished slot roll
type SpinCompletedEvent struct {
	GuildID   int64
	UserID    int64
	ChannelID int64
	Rarity    string
	Won       bool
	Payout    int64
}

func (e SpinCompletedEvent) Type() EventType {
	return EventTypeSpinCompleted
}

// VoiceSessionEndedEvent represents a closed voice session
type VoiceSessionEndedEvent struct {
	GuildID         int64
	UserID          int64
	ChannelID       int64
	DurationSeconds int64
}

func (e VoiceSessionEndedEvent) Type() EventType {
	return EventTypeVoiceSessionEnded
}

// DailyRewardGrantedEvent represents a granted daily login bonus
type DailyRewardGrantedEvent struct {
	GuildID    int64
	UserID     int64
	Amount     int64
	NewBalance int64
}

func (e DailyRewardGrantedEvent) Type() EventType {
	return EventTypeDailyRewardGranted
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

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events published during a unit of work and only
// forwards them to the real bus after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events outlive the transaction context
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events; called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
