package flow

import (
	"fmt"
	"sync"
	"time"
)

// resendCooldownSeconds is the resend lockout after each SMS dispatch.
const resendCooldownSeconds = 60

// Countdown is the resend cooldown timer: it ticks once per interval until it
// reaches zero. Stop is idempotent and must be called on every exit path so a
// dangling timer cannot touch a torn-down stage.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	stopped   bool
	done      chan struct{}
	onTick    func(remaining int)
}

// NewCountdown starts a countdown from seconds, ticking once per second.
// onTick may be nil; it is called with the remaining seconds after each tick,
// ending with 0.
func NewCountdown(seconds int, onTick func(remaining int)) *Countdown {
	return newCountdown(seconds, time.Second, onTick)
}

func newCountdown(seconds int, interval time.Duration, onTick func(remaining int)) *Countdown {
	c := &Countdown{
		remaining: seconds,
		done:      make(chan struct{}),
		onTick:    onTick,
	}
	go c.run(interval)
	return c
}

func (c *Countdown) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.stopped {
				c.mu.Unlock()
				return
			}
			if c.remaining > 0 {
				c.remaining--
			}
			remaining := c.remaining
			tick := c.onTick
			c.mu.Unlock()
			if tick != nil {
				tick(remaining)
			}
			if remaining == 0 {
				return
			}
		}
	}
}

// Remaining returns the seconds left; 0 once the countdown has finished.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Finished reports whether the countdown reached zero.
func (c *Countdown) Finished() bool {
	return c.Remaining() == 0
}

// Stop cancels the countdown. Safe to call multiple times and after the
// countdown has finished; after Stop no further ticks are delivered.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.done)
}

// FormatRemaining renders seconds as mm:ss for the resend label.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
