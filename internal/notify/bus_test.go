package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishDeliversInOrder(t *testing.T) {
	bus := NewBus(nil)
	var got []string

	bus.Subscribe("t", func(ctx context.Context, e Event) { got = append(got, "a") })
	bus.Subscribe("t", func(ctx context.Context, e Event) { got = append(got, "b") })
	bus.Subscribe("other", func(ctx context.Context, e Event) { got = append(got, "x") })

	bus.Publish(context.Background(), Event{Topic: "t"})

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(nil)
	calls := 0

	unsubscribe := bus.Subscribe("t", func(ctx context.Context, e Event) { calls++ })
	bus.Publish(context.Background(), Event{Topic: "t"})
	unsubscribe()
	bus.Publish(context.Background(), Event{Topic: "t"})

	assert.Equal(t, 1, calls)
}

func TestPanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewBus(nil)
	delivered := false

	bus.Subscribe("t", func(ctx context.Context, e Event) { panic("boom") })
	bus.Subscribe("t", func(ctx context.Context, e Event) { delivered = true })

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), Event{Topic: "t"})
	})
	assert.True(t, delivered)
}

func TestPublishStampsTime(t *testing.T) {
	bus := NewBus(nil)
	var seen Event
	bus.Subscribe("t", func(ctx context.Context, e Event) { seen = e })

	bus.Publish(context.Background(), Event{Topic: "t"})

	assert.False(t, seen.At.IsZero())
}

func TestNilBusPublishIsNoop(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), Event{Topic: "t"})
	})
}
