package taco

import (
	"time"

	"github.com/google/uuid"

	"github.com/calzona/tacostore/store"
)

// Clock returns the current time; injected for deterministic tests.
type Clock func() time.Time

// Orders persists submitted orders and reconstructs full order graphs from
// the store. It holds no mutable state and is safe for concurrent use.
type Orders struct {
	store *store.Store
	tick  Clock
	newID func() string
}

// NewOrders creates an Orders service backed by s.
func NewOrders(s *store.Store, opts ...func(*Orders)) *Orders {
	o := &Orders{
		store: s,
		tick:  func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithClock overrides the clock used for order timestamps.
func WithClock(tick Clock) func(*Orders) {
	return func(o *Orders) { o.tick = tick }
}

// WithIDGenerator overrides the identifier generator used at write time.
func WithIDGenerator(newID func() string) func(*Orders) {
	return func(o *Orders) { o.newID = newID }
}
