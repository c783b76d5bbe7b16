package mdsync

import "time"

// Suppressor is a time-boxed re-entrancy guard for one pane.
// While active, the pane's native scroll events are treated as the echo of
// a programmatic write and are not reported.
//
// Suppressor is not safe for concurrent use; it lives on the event queue.
type Suppressor struct {
	sched  Scheduler
	delay  time.Duration
	active bool
	timer  Timer
	gen    uint64
}

// NewSuppressor creates a released suppressor that stays engaged for delay
// after each Engage.
func NewSuppressor(sched Scheduler, delay time.Duration) *Suppressor {
	return &Suppressor{sched: sched, delay: delay}
}

// Engage sets the flag and re-arms the release timer.
// A pending release from an earlier Engage is cancelled first.
func (s *Suppressor) Engage() {
	s.cancel()
	s.active = true
	s.gen++
	gen := s.gen
	s.timer = s.sched.AfterFunc(s.delay, func() {
		// A superseded timer that slipped past Stop must not release.
		if gen != s.gen {
			return
		}
		s.active = false
		s.timer = nil
	})
}

// Active reports whether a programmatic write is in flight.
func (s *Suppressor) Active() bool {
	return s.active
}

// Release clears the flag immediately and drops the pending timer.
func (s *Suppressor) Release() {
	s.cancel()
	s.gen++
	s.active = false
}

func (s *Suppressor) cancel() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
