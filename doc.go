// Package mdsync keeps a Markdown editor and its rendered preview scrolled
// to the same relative position.
//
// # Quick Start
//
// Wrap each scroll container in a Surface, create a Session on the event
// queue that delivers scroll events, and forward those events:
//
//	loop := mdsync.NewEventLoop()
//	defer loop.Close()
//
//	sess := mdsync.NewSession(editorSurface, previewSurface, loop)
//	defer sess.Close()
//
//	// in the editor's scroll handler, on the loop:
//	_ = loop.Post(sess.EditorScrolled)
//
// # Model
//
// Each pane reports its position as a fraction in [0, 1]:
//
//	fraction = scrollTop / (scrollHeight - clientHeight)
//
// Panes whose content fits in the viewport neither report nor accept a
// fraction. A report from one pane makes it the source; the coordinator
// writes the same fraction to the other pane, scaled by that pane's own
// scroll range, so panes with different content heights stay aligned
// proportionally rather than pixel for pixel.
//
// # Feedback Suppression
//
// A programmatic write makes the host fire a scroll event on the written
// pane. Each adapter engages a time-boxed suppression flag immediately
// before writing, and discards its own scroll events until the flag is
// released by a timer. Because a report and its broadcast complete within
// one queue turn, the echo always finds the flag already set.
//
// After the idle window passes without reports, the source resets to None
// and either pane may drive next.
//
// # Timing
//
// Both delays are configurable:
//
//	sess := mdsync.NewSession(ed, pv, loop,
//	    mdsync.WithSuppressDelay(40*time.Millisecond),
//	    mdsync.WithIdleWindow(150*time.Millisecond),
//	)
//
// The defaults suit browser rendering engines. For other surfaces,
// measure the scroll-event latency with the calibrate command of
// cmd/mdsync and size the suppression delay from it.
//
// # Concurrency
//
// Sessions, coordinators and adapters are not safe for concurrent use.
// Everything runs on one logical event queue: a host UI loop, or an
// EventLoop for hosts that have none.
package mdsync
