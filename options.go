package mdsync

import "time"

// Option configures a Session or Coordinator.
type Option func(*options)

// options holds the timing and tracing configuration.
type options struct {
	suppressDelay time.Duration
	idleWindow    time.Duration
	echoTolerance float64
	observer      Observer
}

func defaultOptions() options {
	return options{
		suppressDelay: DefaultSuppressDelay,
		idleWindow:    DefaultIdleWindow,
		echoTolerance: DefaultEchoTolerance,
	}
}

// WithSuppressDelay sets how long a pane ignores its own scroll events after
// a programmatic write. It must outlast the host's scroll-event dispatch.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithSuppressDelay(d time.Duration) Option {
	if d <= 0 {
		panic("mdsync: WithSuppressDelay duration must be positive")
	}
	return func(o *options) {
		o.suppressDelay = d
	}
}

// WithIdleWindow sets how long after the last report the source resets to
// None. Panics if d <= 0.
func WithIdleWindow(d time.Duration) Option {
	if d <= 0 {
		panic("mdsync: WithIdleWindow duration must be positive")
	}
	return func(o *options) {
		o.idleWindow = d
	}
}

// WithEchoTolerance sets the distance, in pane units, within which a native
// scroll position counts as the echo of the last write. Panics if px < 0.
func WithEchoTolerance(px float64) Option {
	if px < 0 {
		panic("mdsync: WithEchoTolerance must not be negative")
	}
	return func(o *options) {
		o.echoTolerance = px
	}
}

// WithObserver registers fn to receive every state machine event.
func WithObserver(fn Observer) Option {
	return func(o *options) {
		o.observer = fn
	}
}
