package eventbus

import "sync"

// Event is an arbitrary update notification passed on the bus.
type Event interface{}

// ScheduleUpdated is published when the reconciliation store replaced the
// current snapshot. Changed lists the train IDs whose assignment differs
// from the comparison basis.
type ScheduleUpdated struct {
	Changed []string `json:"changed"`
}

// BaselinePromoted is published when a snapshot became the new baseline.
type BaselinePromoted struct{}

// PositionsUpdated is published when a fresh set of push or polled train
// positions replaced the previous one.
type PositionsUpdated struct {
	Count int `json:"count"`
}

// ConflictsUpdated is published when the conflict set changed.
type ConflictsUpdated struct {
	Active int `json:"active"`
}

// EventBus is a simple publish/subscribe fan-out used to notify view
// consumers of store updates without coupling them to the store.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus implementation. Delivery is non-blocking; a
// slow subscriber misses events rather than stalling the publisher.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan Event
	closed bool
}

// New creates a new Bus.
func New() *Bus { return &Bus{} }

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
	b.mu.Unlock()
}
