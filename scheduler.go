package mdsync

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler runs delayed callbacks on the same event queue that delivers
// scroll reports. Implementations must never run two callbacks concurrently
// with each other or with the code that calls into a Session.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending callback. Stop reports whether the call prevented the
// callback from running.
type Timer interface {
	Stop() bool
}

// defaultQueueSize bounds the number of posted but not yet run tasks.
const defaultQueueSize = 256

// PanicHandler is invoked when a task posted to an EventLoop panics.
type PanicHandler func(recovered any, stack []byte)

// EventLoop is a single goroutine that runs posted tasks in order.
// It is the Scheduler for hosts that have no event loop of their own,
// such as the headless browser harness.
type EventLoop struct {
	queueSize    int
	panicHandler PanicHandler

	tasks     chan func()
	done      chan struct{}
	finished  chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

// LoopOption configures an EventLoop.
type LoopOption func(*EventLoop)

// WithQueueSize sets the task queue capacity.
func WithQueueSize(n int) LoopOption {
	return func(l *EventLoop) {
		if n > 0 {
			l.queueSize = n
		}
	}
}

// WithPanicHandler sets the handler for panicking tasks.
// Without one, a panicking task is recovered and dropped.
func WithPanicHandler(h PanicHandler) LoopOption {
	return func(l *EventLoop) {
		l.panicHandler = h
	}
}

// NewEventLoop starts an event loop goroutine.
func NewEventLoop(opts ...LoopOption) *EventLoop {
	l := &EventLoop{queueSize: defaultQueueSize}
	for _, opt := range opts {
		opt(l)
	}
	l.tasks = make(chan func(), l.queueSize)
	l.done = make(chan struct{})
	l.finished = make(chan struct{})
	go l.run()
	return l
}

func (l *EventLoop) run() {
	defer close(l.finished)
	for {
		select {
		case <-l.done:
			return
		case task := <-l.tasks:
			l.exec(task)
		}
	}
}

func (l *EventLoop) exec(task func()) {
	defer func() {
		if r := recover(); r != nil && l.panicHandler != nil {
			l.panicHandler(r, debug.Stack())
		}
	}()
	task()
}

// Post enqueues f. It blocks while the queue is full.
func (l *EventLoop) Post(f func()) error {
	if l.closed.Load() {
		return ErrLoopClosed
	}
	select {
	case <-l.done:
		return ErrLoopClosed
	case l.tasks <- f:
		return nil
	}
}

// Do posts f and waits for it to finish or for ctx to end.
func (l *EventLoop) Do(ctx context.Context, f func()) error {
	ran := make(chan struct{})
	if err := l.Post(func() {
		defer close(ran)
		f()
	}); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.finished:
		select {
		case <-ran:
			return nil
		default:
			return ErrLoopClosed
		}
	case <-ran:
		return nil
	}
}

// AfterFunc schedules f on the loop after d.
// Stop must be called from the loop; a stopped timer never runs f,
// even if its wake-up was already queued.
func (l *EventLoop) AfterFunc(d time.Duration, f func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		_ = l.Post(func() {
			if t.stopped.CompareAndSwap(false, true) {
				f()
			}
		})
	})
	return t
}

// Close stops the loop. Queued tasks that have not started are dropped.
// Close waits for the running task, if any, to return, so it must not be
// called from a task running on the loop.
func (l *EventLoop) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})
	<-l.finished
}

// loopTimer wraps time.Timer with a fired-or-stopped flag checked on the loop.
type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	return t.stopped.CompareAndSwap(false, true)
}
