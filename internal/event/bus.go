// Package event provides a small publish/subscribe bus. Subscribers receive
// on buffered channels; publishing never blocks, and events that would
// overflow a subscriber are dropped and counted.
package event

import (
	"sync"
	"sync/atomic"
)

const defaultSubscriberBufferSize = 64

type subscription[T any] struct {
	ch     chan T
	filter func(T) bool
}

type Bus[T any] struct {
	mu          sync.Mutex
	subscribers map[uint64]subscription[T]
	nextID      uint64
	closed      bool
	closeOnce   sync.Once
	bufferSize  int
	published   atomic.Uint64
	dropped     atomic.Uint64
}

func NewBus[T any](bufferSize int) *Bus[T] {
	if bufferSize <= 0 {
		bufferSize = defaultSubscriberBufferSize
	}
	return &Bus[T]{
		subscribers: make(map[uint64]subscription[T]),
		bufferSize:  bufferSize,
	}
}

func (bus *Bus[T]) Subscribe() (<-chan T, func()) {
	return bus.SubscribeFiltered(nil)
}

// SubscribeFiltered registers a subscriber that only receives events the
// filter accepts. A nil filter accepts everything. The returned cancel
// function closes the subscriber's channel.
func (bus *Bus[T]) SubscribeFiltered(filter func(T) bool) (<-chan T, func()) {
	if bus == nil {
		ch := make(chan T)
		close(ch)
		return ch, func() {}
	}

	ch := make(chan T, bus.bufferSize)

	bus.mu.Lock()
	if bus.closed {
		bus.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	bus.nextID++
	id := bus.nextID
	bus.subscribers[id] = subscription[T]{ch: ch, filter: filter}
	bus.mu.Unlock()

	return ch, func() {
		bus.remove(id)
	}
}

// Publish delivers the event to every matching subscriber without blocking.
func (bus *Bus[T]) Publish(value T) {
	if bus == nil {
		return
	}

	bus.mu.Lock()
	if bus.closed {
		bus.mu.Unlock()
		return
	}
	subscribers := make([]subscription[T], 0, len(bus.subscribers))
	for _, subscriber := range bus.subscribers {
		subscribers = append(subscribers, subscriber)
	}
	bus.mu.Unlock()

	bus.published.Add(1)
	for _, subscriber := range subscribers {
		if subscriber.filter != nil && !subscriber.filter(value) {
			continue
		}
		select {
		case subscriber.ch <- value:
		default:
			bus.dropped.Add(1)
		}
	}
}

// Close closes every subscriber channel. Idempotent.
func (bus *Bus[T]) Close() {
	if bus == nil {
		return
	}
	bus.closeOnce.Do(func() {
		bus.mu.Lock()
		bus.closed = true
		subscribers := bus.subscribers
		bus.subscribers = make(map[uint64]subscription[T])
		bus.mu.Unlock()

		for _, subscriber := range subscribers {
			close(subscriber.ch)
		}
	})
}

func (bus *Bus[T]) SubscriberCount() int {
	if bus == nil {
		return 0
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	return len(bus.subscribers)
}

// Dropped reports how many events overflowed a subscriber buffer.
func (bus *Bus[T]) Dropped() uint64 {
	if bus == nil {
		return 0
	}
	return bus.dropped.Load()
}

func (bus *Bus[T]) remove(id uint64) {
	bus.mu.Lock()
	subscriber, ok := bus.subscribers[id]
	delete(bus.subscribers, id)
	bus.mu.Unlock()

	if ok {
		close(subscriber.ch)
	}
}
