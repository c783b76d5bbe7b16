package mdsync

import (
	"fmt"
	"time"
)

// Coordinator is the single arbiter of whose scroll wins.
// It owns the Store, re-broadcasts every accepted report to the other
// panes within the same queue turn, and clears the source after the idle
// window.
//
// Coordinator is not safe for concurrent use. All calls, including the
// scheduler callbacks it arms, must run on one event queue.
type Coordinator struct {
	cfg   options
	sched Scheduler
	store Store
	panes []*PaneAdapter

	idle    Timer
	idleGen uint64
}

// NewCoordinator creates a coordinator in the Idle phase.
func NewCoordinator(sched Scheduler, opts ...Option) *Coordinator {
	if sched == nil {
		panic("mdsync: " + ErrNilScheduler.Error())
	}
	c := &Coordinator{cfg: defaultOptions(), sched: sched}
	for _, opt := range opts {
		opt(&c.cfg)
	}
	return c
}

// Attach registers a pane adapter. Each pane identity may attach once.
func (c *Coordinator) Attach(a *PaneAdapter) error {
	if a.id == None {
		return fmt.Errorf("%w: %s", ErrUnknownPane, a.id)
	}
	for _, p := range c.panes {
		if p.id == a.id {
			return fmt.Errorf("%w: %s", ErrDuplicatePane, a.id)
		}
	}
	a.sink = c
	c.panes = append(c.panes, a)
	return nil
}

// State returns a snapshot of the shared state.
func (c *Coordinator) State() State {
	return c.store.State()
}

// OnPaneScrolled records pane as the source at f and pushes f to every
// other attached pane. The most recent report always wins. Reports from
// an attached pane whose suppression is engaged are dropped, so the source
// is never a pane absorbing its own programmatic scroll.
func (c *Coordinator) OnPaneScrolled(pane Source, f Fraction) {
	if pane == None {
		return
	}
	if p := c.adapter(pane); p != nil && p.sup.Active() {
		return
	}
	f = Clamp(float64(f))
	c.store.record(pane, f)
	c.emit(Event{Kind: EventReport, Pane: pane, Fraction: f})

	for _, p := range c.panes {
		if p.id != pane {
			p.ApplyFraction(f)
		}
	}

	c.armIdle()
}

// armIdle (re)starts the idle window. At most one idle timer is pending.
func (c *Coordinator) armIdle() {
	if c.idle != nil {
		c.idle.Stop()
	}
	c.idleGen++
	gen := c.idleGen
	c.idle = c.sched.AfterFunc(c.cfg.idleWindow, func() {
		if gen != c.idleGen {
			return
		}
		c.idle = nil
		c.store.clearSource()
		c.emit(Event{Kind: EventIdle, Fraction: c.store.State().Fraction})
	})
}

// IdleWindow returns the configured idle window.
func (c *Coordinator) IdleWindow() time.Duration {
	return c.cfg.idleWindow
}

// Close cancels pending timers and releases every pane's suppression.
// The shared state is left as is.
func (c *Coordinator) Close() {
	if c.idle != nil {
		c.idle.Stop()
		c.idle = nil
	}
	c.idleGen++
	for _, p := range c.panes {
		p.close()
	}
}

func (c *Coordinator) onPaneScrolled(pane Source, f Fraction) {
	c.OnPaneScrolled(pane, f)
}

func (c *Coordinator) adapter(pane Source) *PaneAdapter {
	for _, p := range c.panes {
		if p.id == pane {
			return p
		}
	}
	return nil
}

func (c *Coordinator) activeSource() Source {
	return c.store.State().Source
}

func (c *Coordinator) emit(ev Event) {
	if c.cfg.observer == nil {
		return
	}
	ev.State = c.store.State()
	c.cfg.observer(ev)
}
