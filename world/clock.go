package world

import (
	"sync"
	"time"

	"github.com/pthm-cable/einp/animal"
)

// Clock is the simulated wall clock. The zero value has no time set and
// reports animal.ErrNoTimeContext.
type Clock struct {
	mu   sync.RWMutex
	now  time.Time
	step time.Duration
	set  bool
}

// NewClock starts a clock at start that advances by step per tick.
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{now: start, step: step, set: true}
}

// Now returns the current simulated time.
func (c *Clock) Now() (time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.set {
		return time.Time{}, animal.ErrNoTimeContext
	}
	return c.now, nil
}

// Advance moves the clock forward one tick.
func (c *Clock) Advance() {
	c.mu.Lock()
	c.now = c.now.Add(c.step)
	c.mu.Unlock()
}
