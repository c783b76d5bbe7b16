package tui

import (
	"math"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/alnah/go-mdsync"
)

// scrolledMsg is a pane's native scroll event.
type scrolledMsg struct{ pane mdsync.Source }

// viewportSurface exposes a viewport as a scroll container measured in
// rows. A programmatic move dispatches its scroll event asynchronously,
// one loop turn later, as a browser does.
type viewportSurface struct {
	pane  mdsync.Source
	vp    *viewport.Model
	sched *teaScheduler
}

func (s *viewportSurface) Geometry() mdsync.Geometry {
	return mdsync.Geometry{
		ScrollTop:    float64(s.vp.YOffset),
		ScrollHeight: float64(s.vp.TotalLineCount()),
		ClientHeight: float64(s.vp.Height),
	}
}

func (s *viewportSurface) SetScrollTop(top float64) {
	before := s.vp.YOffset
	s.vp.SetYOffset(int(math.Round(top)))
	if s.vp.YOffset != before {
		s.sched.post(scrolledMsg{pane: s.pane})
	}
}

// RowHeight makes the editor adapter write whole rows.
func (s *viewportSurface) RowHeight() float64 { return 1 }
