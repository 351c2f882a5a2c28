package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_EmitReachesAllHandlers(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	first := make(chan Event, 1)
	second := make(chan Event, 1)
	bus.Subscribe(EventTypeSpinCompleted, func(ctx context.Context, e Event) { first <- e })
	bus.Subscribe(EventTypeSpinCompleted, func(ctx context.Context, e Event) { second <- e })

	bus.Emit(ctx, SpinCompletedEvent{GuildID: 1, UserID: 2, Won: true, Payout: 10})

	for _, ch := range []chan Event{first, second} {
		select {
		case e := <-ch:
			spin, ok := e.(SpinCompletedEvent)
			require.True(t, ok)
			assert.Equal(t, int64(10), spin.Payout)
		case <-time.After(time.Second):
			t.Fatal("handler never received event")
		}
	}
}

func TestBus_EmitIgnoresOtherEventTypes(t *testing.T) {
	bus := NewBus()
	received := make(chan Event, 1)
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, e Event) { received <- e })

	bus.Emit(context.Background(), SpinCompletedEvent{})

	select {
	case <-received:
		t.Fatal("handler received an event type it never subscribed to")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_HandlerPanicDoesNotStopOthers(t *testing.T) {
	bus := NewBus()
	received := make(chan Event, 1)
	bus.Subscribe(EventTypeUserCreated, func(ctx context.Context, e Event) { panic("boom") })
	bus.Subscribe(EventTypeUserCreated, func(ctx context.Context, e Event) { received <- e })

	bus.Emit(context.Background(), UserCreatedEvent{DiscordID: 1})

	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("surviving handler never received event")
	}
}

func TestTransactionalBus_FlushAndDiscard(t *testing.T) {
	real := NewBus()
	received := make(chan Event, 2)
	real.Subscribe(EventTypeUserCreated, func(ctx context.Context, e Event) { received <- e })

	t.Run("discard drops pending events", func(t *testing.T) {
		txBus := NewTransactionalBus(real)
		txBus.Publish(UserCreatedEvent{DiscordID: 1})
		txBus.Discard()
		txBus.Flush(context.Background())

		select {
		case <-received:
			t.Fatal("discarded event was emitted")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("flush emits pending events once", func(t *testing.T) {
		txBus := NewTransactionalBus(real)
		txBus.Publish(UserCreatedEvent{DiscordID: 2})
		txBus.Flush(context.Background())
		txBus.Flush(context.Background())

		select {
		case e := <-received:
			assert.Equal(t, int64(2), e.(UserCreatedEvent).DiscordID)
		case <-time.After(time.Second):
			t.Fatal("flushed event never arrived")
		}
		select {
		case <-received:
			t.Fatal("event emitted twice")
		case <-time.After(50 * time.Millisecond):
		}
	})
}
