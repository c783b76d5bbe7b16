package replay

import (
	"time"

	"github.com/alnah/go-mdsync"
	"github.com/alnah/go-mdsync/internal/vclock"
)

// simSurface behaves like a browser scroll container: scrollTop clamps to
// the scrollable range, a write that moves the pane dispatches one scroll
// event after latency, and writes landing before that event coalesce into it.
type simSurface struct {
	g       mdsync.Geometry
	row     float64
	clock   *vclock.Clock
	latency time.Duration
	hook    func()

	pending  bool
	echoing  bool
	writes   int
	coalesce int
}

func newSimSurface(spec PaneSpec, clock *vclock.Clock, latency time.Duration) *simSurface {
	s := &simSurface{
		g: mdsync.Geometry{
			ScrollHeight: spec.ScrollHeight,
			ClientHeight: spec.ClientHeight,
		},
		row:     spec.RowHeight,
		clock:   clock,
		latency: latency,
	}
	s.g.ScrollTop = s.clamp(spec.ScrollTop)
	return s
}

func (s *simSurface) Geometry() mdsync.Geometry { return s.g }

func (s *simSurface) SetScrollTop(top float64) {
	s.writes++
	top = s.clamp(top)
	if top == s.g.ScrollTop {
		return
	}
	s.g.ScrollTop = top
	if s.pending {
		s.coalesce++
		return
	}
	s.pending = true
	s.clock.AfterFunc(s.latency, func() {
		s.pending = false
		s.echoing = true
		s.fire()
		s.echoing = false
	})
}

// userScroll moves the pane and fires its event at once.
func (s *simSurface) userScroll(top float64) {
	s.g.ScrollTop = s.clamp(top)
	s.fire()
}

// reflow changes the content or viewport height. The browser clamps
// scrollTop into the new range and fires a scroll event only if it moved.
func (s *simSurface) reflow(scrollHeight, clientHeight float64) {
	if scrollHeight > 0 {
		s.g.ScrollHeight = scrollHeight
	}
	if clientHeight > 0 {
		s.g.ClientHeight = clientHeight
	}
	if top := s.clamp(s.g.ScrollTop); top != s.g.ScrollTop {
		s.g.ScrollTop = top
		s.fire()
	}
}

func (s *simSurface) fire() {
	if s.hook != nil {
		s.hook()
	}
}

func (s *simSurface) clamp(top float64) float64 {
	return min(max(top, 0), max(s.g.MaxScroll(), 0))
}

// rowSimSurface adds row snapping for the editor pane.
type rowSimSurface struct {
	*simSurface
}

func (s rowSimSurface) RowHeight() float64 { return s.row }

// asSurface exposes row snapping only when the pane has rows.
func (s *simSurface) asSurface() mdsync.Surface {
	if s.row > 0 {
		return rowSimSurface{s}
	}
	return s
}
