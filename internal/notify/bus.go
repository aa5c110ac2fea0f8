// Package notify is a small synchronous publish/subscribe bus. A Bus is owned
// by whoever builds the server and handed to the services that publish.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	TopicOrderCreated        = "order.created"
	TopicOrderStatusChanged  = "order.status_changed"
	TopicOrderPaid           = "order.paid"
	TopicOrderRefundRequired = "order.refund_required"
)

type Event struct {
	Topic   string
	At      time.Time
	Payload map[string]any
}

type Handler func(ctx context.Context, e Event)

type subscription struct {
	id      uint64
	handler Handler
}

type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[string][]subscription),
		logger: logger,
	}
}

// Subscribe registers h for topic and returns a func that removes it.
func (b *Bus) Subscribe(topic string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[topic]
		for i, s := range subs {
			if s.id == id {
				b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e to the topic's handlers in subscription order. A
// panicking handler is logged and does not stop delivery to the rest.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[e.Topic]...)
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(ctx, s.handler, e)
	}
}

func (b *Bus) deliver(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("notification handler panicked", "topic", e.Topic, "panic", r)
		}
	}()
	h(ctx, e)
}
