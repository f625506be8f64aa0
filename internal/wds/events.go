package wds

import (
	"sync"
	"time"
)

// EventType classifies a sync event.
type EventType int

const (
	EventCreated EventType = iota + 1
	EventDeleted
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// SyncEvent notifies the external sync transport that a record appeared or
// disappeared for an owner. Events are fire-and-forget and in-process only:
// they are never persisted, and subscribers only see events published after
// they subscribed. An event is never published for an operation that did
// not commit.
type SyncEvent struct {
	RecordID  RecordID
	Owner     DID
	Type      EventType
	Timestamp time.Time
}

// eventBuffer is the per-subscriber channel capacity. A subscriber that
// falls this far behind loses events rather than blocking the publisher.
const eventBuffer = 64

// broadcaster fans sync events out to any number of subscribers.
type broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan SyncEvent
	nextID int
	closed bool
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan SyncEvent)}
}

// subscribe registers a new subscriber. The returned cancel func removes
// the subscription and closes its channel; it is safe to call more than
// once.
func (b *broadcaster) subscribe() (<-chan SyncEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan SyncEvent, eventBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// publish delivers ev to every subscriber without blocking. Full channels
// drop the event.
func (b *broadcaster) publish(ev SyncEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// close tears down all subscriptions. Further publishes are no-ops and
// further subscribes receive a closed channel.
func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
