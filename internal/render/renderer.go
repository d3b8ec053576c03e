package render

import (
	"encoding/json"
	"sync"

	"github.com/dgnsrekt/volvot/internal/relay"
	"github.com/dgnsrekt/volvot/internal/state"
)

// Renderer republishes regions whenever the store reports a change. It
// keeps no copy of region text: every notification re-reads the state and
// publishes the full text of each region in the touched groups. Publishing
// is serialised, so the last event for a region always reflects the latest
// committed state even when listeners run out of commit order.
type Renderer struct {
	store  *state.Store
	broker *relay.Broker

	mu sync.Mutex
}

// NewRenderer subscribes a renderer to store.
func NewRenderer(store *state.Store, broker *relay.Broker) *Renderer {
	r := &Renderer{store: store, broker: broker}
	store.Subscribe(r.onChange)
	return r
}

func (r *Renderer) onChange(topics []state.Topic, _ state.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.store.Get()
	seen := make(map[state.Topic]bool, len(topics))
	for _, t := range topics {
		if seen[t] {
			continue
		}
		seen[t] = true
		for _, reg := range Derive(st, t) {
			r.broker.Publish(regionEvent(reg))
		}
	}
}

// Regions returns every region for the current state.
func (r *Renderer) Regions() []Region {
	return All(r.store.Get())
}

// Snapshot returns the current regions as relay events for newly connected
// clients.
func (r *Renderer) Snapshot() []relay.Event {
	regions := r.Regions()
	out := make([]relay.Event, 0, len(regions))
	for _, reg := range regions {
		out = append(out, regionEvent(reg))
	}
	return out
}

func regionEvent(reg Region) relay.Event {
	data, _ := json.Marshal(reg)
	return relay.Event{Feed: relay.FeedRegion, Payload: string(data)}
}
