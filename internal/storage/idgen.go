package storage

import (
	"sync"
	"time"
)

// IDGenerator hands out instant-derived identities: the current time in Unix
// milliseconds, bumped past the previous value so one generator never repeats
// itself. Two generators in different sessions may still collide within the
// same millisecond.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewIDGenerator creates a generator reading the given clock. A nil clock
// uses time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns the next identity.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
