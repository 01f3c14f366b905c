package workflows

import (
	"sync"
	"time"
)

// ResendCooldown separates two verification email requests.
const ResendCooldown = 60 * time.Second

// Cooldown rate-limits a user action on the client side.
type Cooldown struct {
	period time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewCooldown(period time.Duration) *Cooldown {
	return &Cooldown{period: period, now: time.Now}
}

// Remaining is the wait before the next Acquire succeeds.
func (c *Cooldown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining()
}

func (c *Cooldown) remaining() time.Duration {
	if c.last.IsZero() {
		return 0
	}
	left := c.period - c.now().Sub(c.last)
	if left < 0 {
		return 0
	}
	return left
}

// Acquire starts a new period when the previous one is over.
func (c *Cooldown) Acquire() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if left := c.remaining(); left > 0 {
		return left, false
	}
	c.last = c.now()
	return 0, true
}

// Release forgets the current period, e.g. after the guarded call failed.
func (c *Cooldown) Release() {
	c.mu.Lock()
	c.last = time.Time{}
	c.mu.Unlock()
}
