package mdsync

import (
	"math"
	"time"
)

// Surface is one scrollable view: a text editor or a rendered preview.
// Geometry must reflect the current layout at call time.
// SetScrollTop may cause the host to fire a native scroll event later;
// hosts deliver those events by calling PaneAdapter.ReportScroll.
type Surface interface {
	Geometry() Geometry
	SetScrollTop(top float64)
}

// RowSnapper is implemented by editor surfaces that scroll by whole rows.
type RowSnapper interface {
	RowHeight() float64
}

// reportSink is the coordinator side of an attached adapter.
type reportSink interface {
	onPaneScrolled(pane Source, f Fraction)
	activeSource() Source
	emit(Event)
}

// PaneAdapter bridges one Surface to the normalized fraction protocol.
// It owns the pane's Suppressor; nothing outside the adapter can set it.
type PaneAdapter struct {
	id        Source
	surface   Surface
	sup       *Suppressor
	sink      reportSink
	tolerance float64
	snapRows  bool

	lastWrite float64
	hasWrite  bool
	stats     Stats
}

// AdapterOption configures a PaneAdapter.
type AdapterOption func(*PaneAdapter)

// WithAdapterEchoTolerance sets how close, in pane units, a native scroll
// position must be to the last programmatic write to count as its echo.
func WithAdapterEchoTolerance(px float64) AdapterOption {
	return func(a *PaneAdapter) {
		if px >= 0 {
			a.tolerance = px
		}
	}
}

// NewEditorAdapter creates the adapter for the raw-text pane.
// If surface implements RowSnapper, writes land on whole rows.
func NewEditorAdapter(surface Surface, sched Scheduler, suppressDelay time.Duration, opts ...AdapterOption) *PaneAdapter {
	a := newPaneAdapter(Editor, surface, sched, suppressDelay, opts)
	_, a.snapRows = surface.(RowSnapper)
	return a
}

// NewPreviewAdapter creates the adapter for the rendered pane.
func NewPreviewAdapter(surface Surface, sched Scheduler, suppressDelay time.Duration, opts ...AdapterOption) *PaneAdapter {
	return newPaneAdapter(Preview, surface, sched, suppressDelay, opts)
}

func newPaneAdapter(id Source, surface Surface, sched Scheduler, delay time.Duration, opts []AdapterOption) *PaneAdapter {
	if surface == nil {
		panic("mdsync: " + ErrNilSurface.Error())
	}
	if sched == nil {
		panic("mdsync: " + ErrNilScheduler.Error())
	}
	if delay <= 0 {
		panic("mdsync: suppress delay must be positive")
	}
	a := &PaneAdapter{
		id:        id,
		surface:   surface,
		sup:       NewSuppressor(sched, delay),
		tolerance: DefaultEchoTolerance,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Pane returns the pane identity.
func (a *PaneAdapter) Pane() Source {
	return a.id
}

// Suppressed reports whether the pane is ignoring its own scroll events.
func (a *PaneAdapter) Suppressed() bool {
	return a.sup.Active()
}

// Stats returns the adapter counters.
func (a *PaneAdapter) Stats() Stats {
	return a.stats
}

// ReportScroll handles a native scroll event of the pane.
// It returns the fraction sent to the coordinator, or false when the event
// was ignored: content fits in view, suppression is engaged, or the event
// is a late echo of the last programmatic write while another pane drives.
func (a *PaneAdapter) ReportScroll() (Fraction, bool) {
	g := a.surface.Geometry()
	f, ok := g.Fraction()
	if !ok {
		a.stats.Degenerate++
		return 0, false
	}

	if a.sup.Active() {
		a.stats.Suppressed++
		a.emit(EventSuppress, f, 0)
		return 0, false
	}

	if a.isLateEcho(g.ScrollTop) {
		a.stats.Echoes++
		a.emit(EventEcho, f, 0)
		return 0, false
	}

	a.hasWrite = false
	a.stats.Reports++
	if a.sink != nil {
		a.sink.onPaneScrolled(a.id, f)
	}
	return f, true
}

// isLateEcho reports whether top is our own last write arriving after
// suppression expired while another pane is still the active source.
func (a *PaneAdapter) isLateEcho(top float64) bool {
	if !a.hasWrite || a.sink == nil {
		return false
	}
	if math.Abs(top-a.lastWrite) > a.tolerance {
		return false
	}
	src := a.sink.activeSource()
	return src != None && src != a.id
}

// ApplyFraction scrolls the pane to f of its current scroll range.
// Geometry is read at call time, since layout may have changed since f
// was computed. Suppression is engaged before the write.
func (a *PaneAdapter) ApplyFraction(f Fraction) {
	g := a.surface.Geometry()
	if !g.Scrollable() {
		a.stats.Degenerate++
		return
	}

	top := a.offsetFor(g, f)
	a.sup.Engage()
	a.surface.SetScrollTop(top)
	a.lastWrite = top
	a.hasWrite = true
	a.stats.Writes++
	a.emit(EventApply, f, top)
}

func (a *PaneAdapter) offsetFor(g Geometry, f Fraction) float64 {
	top := g.OffsetFor(f)
	if !a.snapRows {
		return top
	}
	row := a.surface.(RowSnapper).RowHeight()
	if row <= 0 {
		return top
	}
	return math.Min(math.Round(top/row)*row, g.MaxScroll())
}

func (a *PaneAdapter) emit(kind EventKind, f Fraction, offset float64) {
	if a.sink != nil {
		a.sink.emit(Event{Kind: kind, Pane: a.id, Fraction: f, Offset: offset})
	}
}

// close releases suppression and drops its timer.
func (a *PaneAdapter) close() {
	a.sup.Release()
}
