package achievekit

import (
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// EventKey identifies an event kind on the Bus.
type EventKey uint16

// Subscription identifies one registered handler. Function values cannot be
// compared in Go, so handlers are removed by the token Subscribe returned.
type Subscription struct {
	key EventKey
	id  uint64
}

type handlerEntry struct {
	id uint64
	fn any
}

// Bus is a synchronous in-process publish/subscribe hub. Handlers run on the
// publishing goroutine, in subscription order. A panicking handler is logged
// and the remaining handlers still run.
type Bus struct {
	logger runtime.Logger

	mu       sync.RWMutex
	nextID   uint64
	handlers map[EventKey][]handlerEntry
}

func NewBus(logger runtime.Logger) *Bus {
	return &Bus{
		logger:   logger,
		handlers: make(map[EventKey][]handlerEntry),
	}
}

func (b *Bus) subscribe(key EventKey, fn any) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[key] = append(b.handlers[key], handlerEntry{id: b.nextID, fn: fn})
	return Subscription{key: key, id: b.nextID}
}

// Unsubscribe removes the handler behind s and reports whether it was present.
func (b *Bus) Unsubscribe(s Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := b.handlers[s.key]
	for i, e := range entries {
		if e.id != s.id {
			continue
		}
		kept := make([]handlerEntry, 0, len(entries)-1)
		kept = append(kept, entries[:i]...)
		kept = append(kept, entries[i+1:]...)
		if len(kept) == 0 {
			delete(b.handlers, s.key)
		} else {
			b.handlers[s.key] = kept
		}
		return true
	}
	return false
}

// HandlerCount returns the number of handlers subscribed to key.
func (b *Bus) HandlerCount(key EventKey) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[key])
}

// dispatch invokes call for every handler of key. The handler slice is never
// mutated in place, so the snapshot taken under the read lock stays valid
// while handlers subscribe or unsubscribe.
func (b *Bus) dispatch(key EventKey, name string, call func(fn any) bool) {
	b.mu.RLock()
	entries := b.handlers[key]
	b.mu.RUnlock()

	eventsPublished.WithLabelValues(name).Inc()
	for _, e := range entries {
		b.invoke(name, e.fn, call)
	}
}

func (b *Bus) invoke(name string, fn any, call func(fn any) bool) {
	defer func() {
		if r := recover(); r != nil {
			eventHandlerPanics.WithLabelValues(name).Inc()
			b.logger.Error("Event handler for %s panicked: %v", name, r)
		}
	}()
	if !call(fn) {
		b.logger.Warn("Event handler for %s has a mismatched signature, skipping", name)
	}
}

// Topic0 is an event without arguments.
type Topic0 struct {
	Key  EventKey
	Name string
}

func (t Topic0) Subscribe(b *Bus, fn func()) Subscription {
	return b.subscribe(t.Key, fn)
}

func (t Topic0) Publish(b *Bus) {
	b.dispatch(t.Key, t.Name, func(fn any) bool {
		f, ok := fn.(func())
		if ok {
			f()
		}
		return ok
	})
}

// Topic1 is an event carrying one typed argument.
type Topic1[A any] struct {
	Key  EventKey
	Name string
}

func (t Topic1[A]) Subscribe(b *Bus, fn func(A)) Subscription {
	return b.subscribe(t.Key, fn)
}

func (t Topic1[A]) Publish(b *Bus, a A) {
	b.dispatch(t.Key, t.Name, func(fn any) bool {
		f, ok := fn.(func(A))
		if ok {
			f(a)
		}
		return ok
	})
}

// Topic2 is an event carrying two typed arguments.
type Topic2[A, B any] struct {
	Key  EventKey
	Name string
}

func (t Topic2[A, B]) Subscribe(b *Bus, fn func(A, B)) Subscription {
	return b.subscribe(t.Key, fn)
}

func (t Topic2[A, B]) Publish(bus *Bus, a A, b B) {
	bus.dispatch(t.Key, t.Name, func(fn any) bool {
		f, ok := fn.(func(A, B))
		if ok {
			f(a, b)
		}
		return ok
	})
}

// Topic3 is an event carrying three typed arguments.
type Topic3[A, B, C any] struct {
	Key  EventKey
	Name string
}

func (t Topic3[A, B, C]) Subscribe(b *Bus, fn func(A, B, C)) Subscription {
	return b.subscribe(t.Key, fn)
}

func (t Topic3[A, B, C]) Publish(bus *Bus, a A, b B, c C) {
	bus.dispatch(t.Key, t.Name, func(fn any) bool {
		f, ok := fn.(func(A, B, C))
		if ok {
			f(a, b, c)
		}
		return ok
	})
}

// Topic4 is an event carrying four typed arguments.
type Topic4[A, B, C, D any] struct {
	Key  EventKey
	Name string
}

func (t Topic4[A, B, C, D]) Subscribe(b *Bus, fn func(A, B, C, D)) Subscription {
	return b.subscribe(t.Key, fn)
}

func (t Topic4[A, B, C, D]) Publish(bus *Bus, a A, b B, c C, d D) {
	bus.dispatch(t.Key, t.Name, func(fn any) bool {
		f, ok := fn.(func(A, B, C, D))
		if ok {
			f(a, b, c, d)
		}
		return ok
	})
}

// Topic5 is an event carrying five typed arguments.
type Topic5[A, B, C, D, E any] struct {
	Key  EventKey
	Name string
}

func (t Topic5[A, B, C, D, E]) Subscribe(b *Bus, fn func(A, B, C, D, E)) Subscription {
	return b.subscribe(t.Key, fn)
}

func (t Topic5[A, B, C, D, E]) Publish(bus *Bus, a A, b B, c C, d D, e E) {
	bus.dispatch(t.Key, t.Name, func(fn any) bool {
		f, ok := fn.(func(A, B, C, D, E))
		if ok {
			f(a, b, c, d, e)
		}
		return ok
	})
}
