package mdsync

import (
	"math"
	"time"
)

// Fraction is a vertical scroll position normalized to [0, 1].
type Fraction float64

// Clamp bounds f to [0, 1]. NaN maps to 0.
func Clamp(f float64) Fraction {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	}
	return Fraction(f)
}

// Source identifies the pane that most recently drove the shared position.
type Source uint8

// Source constants. None is the zero value.
const (
	None Source = iota
	Editor
	Preview
)

// String returns the lowercase pane name.
func (s Source) String() string {
	switch s {
	case Editor:
		return "editor"
	case Preview:
		return "preview"
	default:
		return "none"
	}
}

// ParseSource converts a pane name back to a Source.
// Unknown names return None and false.
func ParseSource(name string) (Source, bool) {
	switch name {
	case "editor":
		return Editor, true
	case "preview":
		return Preview, true
	case "none", "":
		return None, true
	}
	return None, false
}

// Phase is the coordinator state derived from the current source.
type Phase uint8

// Phase constants.
const (
	Idle Phase = iota
	ActiveEditor
	ActivePreview
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case ActiveEditor:
		return "active-editor"
	case ActivePreview:
		return "active-preview"
	default:
		return "idle"
	}
}

// phaseOf maps a source to its phase.
func phaseOf(s Source) Phase {
	switch s {
	case Editor:
		return ActiveEditor
	case Preview:
		return ActivePreview
	}
	return Idle
}

// Geometry is a snapshot of a scroll container, in pane-native units.
type Geometry struct {
	ScrollTop    float64
	ScrollHeight float64
	ClientHeight float64
}

// MaxScroll returns the largest reachable ScrollTop.
func (g Geometry) MaxScroll() float64 {
	return g.ScrollHeight - g.ClientHeight
}

// Scrollable reports whether the content is taller than the viewport.
func (g Geometry) Scrollable() bool {
	return g.MaxScroll() > 0
}

// Fraction returns the clamped scroll fraction.
// The second result is false when the content fits in the viewport,
// in which case no fraction is defined.
func (g Geometry) Fraction() (Fraction, bool) {
	maxScroll := g.MaxScroll()
	if maxScroll <= 0 {
		return 0, false
	}
	return Clamp(g.ScrollTop / maxScroll), true
}

// OffsetFor maps f back to a ScrollTop for this geometry.
// Proportional, not pixel-exact: the result depends only on MaxScroll.
func (g Geometry) OffsetFor(f Fraction) float64 {
	maxScroll := g.MaxScroll()
	if maxScroll <= 0 {
		return 0
	}
	return math.Round(maxScroll * float64(Clamp(float64(f))))
}

// State is a snapshot of the shared sync state.
type State struct {
	Fraction Fraction
	Source   Source
}

// Phase returns the coordinator phase for this state.
func (s State) Phase() Phase {
	return phaseOf(s.Source)
}

// Stats holds per-pane counters, for diagnostics only.
type Stats struct {
	Reports    int // fractions sent to the coordinator
	Writes     int // programmatic scrollTop writes
	Suppressed int // native events discarded while suppression was engaged
	Echoes     int // late echoes of a programmatic write, discarded
	Degenerate int // events or writes skipped because content fits in view
}

// EventKind classifies observer events.
type EventKind uint8

// Event kinds.
const (
	EventReport EventKind = iota // a pane reported a user-driven fraction
	EventApply                   // a fraction was written to a pane
	EventSuppress                // a native event was discarded by suppression
	EventEcho                    // a late echo was discarded
	EventIdle                    // the idle window expired and source reset
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventReport:
		return "report"
	case EventApply:
		return "apply"
	case EventSuppress:
		return "suppress"
	case EventEcho:
		return "echo"
	case EventIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Event describes one step of the sync state machine.
type Event struct {
	Kind     EventKind
	Pane     Source
	Fraction Fraction
	Offset   float64 // written scrollTop, for EventApply
	State    State   // shared state after the step
}

// Observer receives events. It runs on the event queue and must not block.
type Observer func(Event)

// Default timings. Both are tuned for browser scroll-event dispatch and
// should be re-measured for other surfaces (see the calibrate command).
const (
	DefaultSuppressDelay = 50 * time.Millisecond
	DefaultIdleWindow    = 100 * time.Millisecond
	DefaultEchoTolerance = 0.5
)
