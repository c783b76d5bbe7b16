// Package vclock provides a deterministic virtual-time scheduler.
// Timers fire only when the clock is advanced, in deadline order, on the
// goroutine that calls Advance.
package vclock

import (
	"sort"
	"time"

	"github.com/alnah/go-mdsync"
)

// Compile-time interface check.
var _ mdsync.Scheduler = (*Clock)(nil)

// Clock is a manual clock. It is not safe for concurrent use.
type Clock struct {
	now    time.Duration
	seq    uint64
	timers []*timer
}

type timer struct {
	clock *Clock
	at    time.Duration
	seq   uint64
	fn    func()
	done  bool
}

// New returns a clock at time zero.
func New() *Clock {
	return &Clock{}
}

// Now returns the elapsed virtual time.
func (c *Clock) Now() time.Duration {
	return c.now
}

// AfterFunc schedules f to run once the clock reaches Now()+d.
// A non-positive d fires on the next Advance, including Advance(0).
func (c *Clock) AfterFunc(d time.Duration, f func()) mdsync.Timer {
	if d < 0 {
		d = 0
	}
	c.seq++
	t := &timer{clock: c, at: c.now + d, seq: c.seq, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Stop cancels the timer. It reports false if the timer already fired or
// was stopped.
func (t *timer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	t.clock.remove(t)
	return true
}

// Advance moves time forward by d, firing every timer that comes due.
// Timers scheduled by callbacks fire too if they fall within the window.
func (c *Clock) Advance(d time.Duration) {
	target := c.now + d
	for {
		t := c.next()
		if t == nil || t.at > target {
			break
		}
		c.now = t.at
		t.done = true
		c.remove(t)
		t.fn()
	}
	c.now = target
}

// AdvanceTo moves time forward to the absolute instant at.
// Instants in the past are ignored.
func (c *Clock) AdvanceTo(at time.Duration) {
	if at > c.now {
		c.Advance(at - c.now)
	}
}

// Pending returns the number of timers that have not fired or been stopped.
func (c *Clock) Pending() int {
	return len(c.timers)
}

// maxFlush bounds Flush for callbacks that keep rescheduling themselves.
const maxFlush = 10000

// Flush fires all pending timers, advancing time as needed.
func (c *Clock) Flush() {
	for i := 0; i < maxFlush; i++ {
		t := c.next()
		if t == nil {
			return
		}
		c.Advance(t.at - c.now)
	}
}

func (c *Clock) next() *timer {
	if len(c.timers) == 0 {
		return nil
	}
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].at != c.timers[j].at {
			return c.timers[i].at < c.timers[j].at
		}
		return c.timers[i].seq < c.timers[j].seq
	})
	return c.timers[0]
}

func (c *Clock) remove(t *timer) {
	for i, x := range c.timers {
		if x == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}
