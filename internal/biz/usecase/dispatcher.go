package usecase

import (
	"sync"

	"github.com/lifestream-app/lifestream/internal/biz/domain"
)

// EventHandler receives published events
type EventHandler func(domain.Event)

// Dispatcher fans typed events out to an explicit subscriber list.
// Handlers run synchronously, in subscription order, on the publishing goroutine.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []subscription
}

type subscription struct {
	types   map[domain.EventType]bool // nil means every type
	handler EventHandler
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers handler for the given event types, or for all types when none are given
func (d *Dispatcher) Subscribe(handler EventHandler, types ...domain.EventType) {
	sub := subscription{handler: handler}
	if len(types) > 0 {
		sub.types = make(map[domain.EventType]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}

	d.mu.Lock()
	d.handlers = append(d.handlers, sub)
	d.mu.Unlock()
}

// Publish delivers evt to every matching subscriber
func (d *Dispatcher) Publish(evt domain.Event) {
	d.mu.RLock()
	handlers := make([]subscription, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for _, sub := range handlers {
		if sub.types != nil && !sub.types[evt.Type] {
			continue
		}
		sub.handler(evt)
	}
}
