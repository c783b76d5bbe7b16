package mdsync_test

import (
	"testing"
	"time"

	"github.com/alnah/go-mdsync"
	"github.com/alnah/go-mdsync/internal/vclock"
)

func TestSuppressor_ReleasesAfterDelay(t *testing.T) {
	t.Parallel()

	clock := vclock.New()
	s := mdsync.NewSuppressor(clock, 30*time.Millisecond)

	if s.Active() {
		t.Fatal("new suppressor is active")
	}

	s.Engage()
	if !s.Active() {
		t.Fatal("Engage() did not set the flag")
	}

	clock.Advance(29 * time.Millisecond)
	if !s.Active() {
		t.Error("released before the delay elapsed")
	}

	clock.Advance(time.Millisecond)
	if s.Active() {
		t.Error("still active after the delay")
	}
}

func TestSuppressor_ReengageReplacesTimer(t *testing.T) {
	t.Parallel()

	clock := vclock.New()
	s := mdsync.NewSuppressor(clock, 30*time.Millisecond)

	s.Engage()
	clock.Advance(20 * time.Millisecond)
	s.Engage()

	if clock.Pending() != 1 {
		t.Errorf("pending timers = %d, want 1", clock.Pending())
	}

	// The first timer would have fired at 30ms.
	clock.Advance(15 * time.Millisecond)
	if !s.Active() {
		t.Error("superseded timer released the flag")
	}

	clock.Advance(15 * time.Millisecond)
	if s.Active() {
		t.Error("still active 30ms after the second Engage")
	}
}

// leakyScheduler returns timers whose Stop never prevents the callback,
// like a wake-up that was already queued when Stop ran.
type leakyScheduler struct {
	clock *vclock.Clock
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (s leakyScheduler) AfterFunc(d time.Duration, f func()) mdsync.Timer {
	s.clock.AfterFunc(d, f)
	return leakyTimer{}
}

func TestSuppressor_StaleTimerIgnored(t *testing.T) {
	t.Parallel()

	clock := vclock.New()
	s := mdsync.NewSuppressor(leakyScheduler{clock: clock}, 30*time.Millisecond)

	s.Engage()
	clock.Advance(20 * time.Millisecond)
	s.Engage()

	clock.Advance(15 * time.Millisecond) // stale timer fires here
	if !s.Active() {
		t.Error("stale timer released the flag")
	}

	clock.Advance(15 * time.Millisecond)
	if s.Active() {
		t.Error("current timer did not release the flag")
	}
}

func TestSuppressor_Release(t *testing.T) {
	t.Parallel()

	clock := vclock.New()
	s := mdsync.NewSuppressor(clock, 30*time.Millisecond)

	s.Engage()
	s.Release()
	if s.Active() {
		t.Error("active after Release()")
	}
	if clock.Pending() != 0 {
		t.Errorf("pending timers after Release() = %d, want 0", clock.Pending())
	}
}
