// Package relay fans display-region, notice and feed events out to browser
// clients over server-sent events and WebSocket.
package relay

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
)

const subscriberBufSize = 256

// Feed names.
const (
	FeedRegion = "region"
	FeedNotice = "notice"
	FeedSocial = "feed"
)

// Event is a single relay event.
type Event struct {
	Feed    string `json:"feed"`
	Payload string `json:"payload"`
}

// Snapshotter returns the events a newly connected client needs to render
// the current page.
type Snapshotter func() []Event

// Broker fans out events to all subscribed clients.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[int64]chan Event
	nextID      atomic.Int64
	dropped     atomic.Int64
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[int64]chan Event),
	}
}

// Subscribe registers a new client. The channel is buffered; slow consumers
// have events dropped.
func (b *Broker) Subscribe() (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	ch, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers without blocking.
func (b *Broker) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			b.dropped.Add(1)
		}
	}
}

// NewEvent marshals v as the payload of an event on feed.
func NewEvent(feed string, v any) (Event, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Event{}, err
	}
	return Event{Feed: feed, Payload: string(data)}, nil
}

// PublishJSON marshals v as the payload of an event on feed.
func (b *Broker) PublishJSON(feed string, v any) {
	evt, err := NewEvent(feed, v)
	if err != nil {
		slog.Error("relay payload marshal failed", "feed", feed, "error", err)
		return
	}
	b.Publish(evt)
}

// ClientCount returns the number of active subscribers.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped returns how many deliveries were skipped for slow clients.
func (b *Broker) Dropped() int64 { return b.dropped.Load() }
