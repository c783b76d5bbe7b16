package mdsync_test

import (
	"time"

	"github.com/alnah/go-mdsync"
	"github.com/alnah/go-mdsync/internal/vclock"
)

// fakeSurface is a scroll container whose programmatic writes fire a native
// scroll event after latency, the way a browser dispatches them.
type fakeSurface struct {
	g       mdsync.Geometry
	writes  []float64
	clock   *vclock.Clock
	latency time.Duration
	hook    func()
}

func newFakeSurface(clock *vclock.Clock, scrollHeight, clientHeight float64) *fakeSurface {
	return &fakeSurface{
		g:       mdsync.Geometry{ScrollHeight: scrollHeight, ClientHeight: clientHeight},
		clock:   clock,
		latency: 10 * time.Millisecond,
	}
}

func (s *fakeSurface) Geometry() mdsync.Geometry { return s.g }

func (s *fakeSurface) SetScrollTop(top float64) {
	s.writes = append(s.writes, top)
	if top == s.g.ScrollTop {
		return // no movement, no event
	}
	s.g.ScrollTop = top
	if s.hook != nil {
		s.clock.AfterFunc(s.latency, s.hook)
	}
}

// userScroll moves the pane as a user would and fires its event at once.
// top is not clamped, to model elastic overscroll.
func (s *fakeSurface) userScroll(top float64) {
	s.g.ScrollTop = top
	if s.hook != nil {
		s.hook()
	}
}

func (s *fakeSurface) maxScroll() float64 { return s.g.MaxScroll() }

// rowSurface is an editor surface that scrolls by whole rows.
type rowSurface struct {
	fakeSurface
	row float64
}

func (s *rowSurface) RowHeight() float64 { return s.row }

// harness wires a session over two fake surfaces on a virtual clock.
type harness struct {
	clock   *vclock.Clock
	editor  *fakeSurface
	preview *fakeSurface
	sess    *mdsync.Session
	events  []mdsync.Event
}

func newHarness(editorHeight, previewHeight float64, opts ...mdsync.Option) *harness {
	clock := vclock.New()
	h := &harness{
		clock:   clock,
		editor:  newFakeSurface(clock, editorHeight, 100),
		preview: newFakeSurface(clock, previewHeight, 200),
	}
	opts = append(opts, mdsync.WithObserver(func(ev mdsync.Event) {
		h.events = append(h.events, ev)
	}))
	h.sess = mdsync.NewSession(h.editor, h.preview, clock, opts...)
	h.editor.hook = h.sess.EditorScrolled
	h.preview.hook = h.sess.PreviewScrolled
	return h
}

func (h *harness) count(kind mdsync.EventKind, pane mdsync.Source) int {
	n := 0
	for _, ev := range h.events {
		if ev.Kind == kind && ev.Pane == pane {
			n++
		}
	}
	return n
}
