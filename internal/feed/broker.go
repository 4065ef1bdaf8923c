// Package feed broadcasts moderation lifecycle events to live subscribers,
// so an open moderation view updates without polling. Delivery is
// best-effort: events are not persisted and a subscriber that cannot keep up
// has events dropped.
package feed

import (
	"sync"

	"github.com/rs/zerolog"

	"tablon-server/internal/moderation"
)

const subscriberBuffer = 16

// Broker fans moderation events out to subscribers. It implements
// moderation.Publisher.
type Broker struct {
	mu   sync.Mutex
	subs map[string]chan moderation.Event
	log  *zerolog.Logger
}

// NewBroker creates an empty broker.
func NewBroker(logger *zerolog.Logger) *Broker {
	return &Broker{
		subs: make(map[string]chan moderation.Event),
		log:  logger,
	}
}

// Subscribe registers a subscriber under the given id and returns its event
// channel. The channel is closed by Unsubscribe.
func (b *Broker) Subscribe(id string) <-chan moderation.Event {
	ch := make(chan moderation.Event, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if old, ok := b.subs[id]; ok {
		close(old)
	}
	b.subs[id] = ch
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}

// Publish delivers an event to all subscribers without blocking. Events for
// full subscriber channels are dropped.
func (b *Broker) Publish(e moderation.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.log.Warn().Str("subscriber", id).Str("event", e.Kind).Msg("feed subscriber too slow, dropping event")
		}
	}
}
