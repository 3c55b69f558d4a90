package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock hands out creation sequence numbers for zones.
type Clock struct {
	counter uint64
}

// Tick increments the clock and returns the new value.
func (c *Clock) Tick() uint64 {
	return atomic.AddUint64(&c.counter, 1)
}

// Update moves the clock forward to at least seq.
func (c *Clock) Update(seq uint64) {
	for {
		cur := atomic.LoadUint64(&c.counter)
		if seq <= cur || atomic.CompareAndSwapUint64(&c.counter, cur, seq) {
			return
		}
	}
}

// newZoneID returns a time-ordered identifier.
func newZoneID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
