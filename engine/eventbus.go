package engine

import (
	"context"
	"sync"

	"promptkit/core"
)

type subscription struct {
	id  int64
	typ core.EventType
	fn  func(context.Context, core.Event)
}

// EventBus is a thread-safe pub/sub that delivers lifecycle events on the
// publishing goroutine. It owns no workers, so publishing never leaves
// background work behind.
type EventBus struct {
	mu     sync.RWMutex
	subs   map[core.EventType]map[int64]subscription
	nextID int64
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[core.EventType]map[int64]subscription)}
}

// Subscribe registers a handler for an event type. Returns unsubscribe func.
func (e *EventBus) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := e.nextID
	if e.subs[typ] == nil {
		e.subs[typ] = make(map[int64]subscription)
	}
	e.subs[typ][id] = subscription{id: id, typ: typ, fn: handler}
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if m := e.subs[typ]; m != nil {
			delete(m, id)
		}
	}
}

// SubscribeAll registers handler for every lifecycle event type.
func (e *EventBus) SubscribeAll(handler func(context.Context, core.Event)) func() {
	types := []core.EventType{
		core.EventFirstRun, core.EventStartup, core.EventPushSeen, core.EventInAppSeen,
		core.EventCoreCreated, core.EventCoreDestroyed,
	}
	unsubs := make([]func(), 0, len(types))
	for _, typ := range types {
		unsubs = append(unsubs, e.Subscribe(typ, handler))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Publish delivers ev to current subscribers before returning.
func (e *EventBus) Publish(ctx context.Context, ev core.Event) {
	e.mu.RLock()
	subs := e.subs[ev.Type]
	// copy to avoid holding lock during callbacks
	handlers := make([]func(context.Context, core.Event), 0, len(subs))
	for _, s := range subs {
		handlers = append(handlers, s.fn)
	}
	e.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, ev)
	}
}
