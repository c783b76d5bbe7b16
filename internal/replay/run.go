package replay

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alnah/go-mdsync"
	"github.com/alnah/go-mdsync/internal/vclock"
)

// Report is the outcome of a replay.
type Report struct {
	Name          string     `json:"name" yaml:"name"`
	SuppressDelay string     `json:"suppress_delay" yaml:"suppressDelay"`
	IdleWindow    string     `json:"idle_window" yaml:"idleWindow"`
	EchoLatency   string     `json:"echo_latency" yaml:"echoLatency"`
	Elapsed       string     `json:"elapsed" yaml:"elapsed"`
	Final         FinalState `json:"final" yaml:"final"`
	Editor        PaneReport `json:"editor" yaml:"editor"`
	Preview       PaneReport `json:"preview" yaml:"preview"`
	// FeedbackLoop is true when a programmatic write came back to the
	// coordinator as a report.
	FeedbackLoop bool    `json:"feedback_loop" yaml:"feedbackLoop"`
	Timeline     []Entry `json:"timeline,omitempty" yaml:"timeline,omitempty"`
}

// FinalState is the shared state once all timers have run.
type FinalState struct {
	Fraction float64 `json:"fraction" yaml:"fraction"`
	Source   string  `json:"source" yaml:"source"`
	Phase    string  `json:"phase" yaml:"phase"`
}

// PaneReport holds a pane's counters and final offset.
type PaneReport struct {
	ScrollTop   float64 `json:"scroll_top" yaml:"scrollTop"`
	Reports     int     `json:"reports" yaml:"reports"`
	Writes      int     `json:"writes" yaml:"writes"`
	Suppressed  int     `json:"suppressed" yaml:"suppressed"`
	Echoes      int     `json:"late_echoes" yaml:"lateEchoes"`
	Degenerate  int     `json:"degenerate" yaml:"degenerate"`
	Coalesced   int     `json:"coalesced" yaml:"coalesced"`
	EchoReports int     `json:"echo_reports" yaml:"echoReports"`
}

// Entry is one observed coordinator or adapter event.
type Entry struct {
	At       string  `json:"at" yaml:"at"`
	Kind     string  `json:"kind" yaml:"kind"`
	Pane     string  `json:"pane,omitempty" yaml:"pane,omitempty"`
	Fraction float64 `json:"fraction" yaml:"fraction"`
	Offset   float64 `json:"offset,omitempty" yaml:"offset,omitempty"`
	Phase    string  `json:"phase" yaml:"phase"`
	Echo     bool    `json:"echo,omitempty" yaml:"echo,omitempty"`
}

// Run replays tr with p on a fresh virtual clock. Trace timing fields are
// not applied here; callers overlay them with Trace.Params.
func Run(tr *Trace, p Params) (*Report, error) {
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	if p.SuppressDelay <= 0 || p.IdleWindow <= 0 || p.EchoLatency < 0 || p.EchoTolerance < 0 {
		return nil, fmt.Errorf("%w: invalid params %+v", ErrInvalidTrace, p)
	}

	clock := vclock.New()
	editor := newSimSurface(tr.Editor, clock, p.EchoLatency)
	preview := newSimSurface(tr.Preview, clock, p.EchoLatency)
	surfaces := map[mdsync.Source]*simSurface{mdsync.Editor: editor, mdsync.Preview: preview}

	rep := &Report{
		Name:          tr.Name,
		SuppressDelay: p.SuppressDelay.String(),
		IdleWindow:    p.IdleWindow.String(),
		EchoLatency:   p.EchoLatency.String(),
	}
	echoReports := map[mdsync.Source]int{}

	observe := func(ev mdsync.Event) {
		e := Entry{
			At:       clock.Now().String(),
			Kind:     ev.Kind.String(),
			Fraction: float64(ev.Fraction),
			Offset:   ev.Offset,
			Phase:    ev.State.Phase().String(),
		}
		if ev.Pane != mdsync.None {
			e.Pane = ev.Pane.String()
			e.Echo = surfaces[ev.Pane].echoing
		}
		if ev.Kind == mdsync.EventReport && e.Echo {
			echoReports[ev.Pane]++
		}
		rep.Timeline = append(rep.Timeline, e)
	}

	sess := mdsync.NewSession(editor.asSurface(), preview.asSurface(), clock,
		mdsync.WithSuppressDelay(p.SuppressDelay),
		mdsync.WithIdleWindow(p.IdleWindow),
		mdsync.WithEchoTolerance(p.EchoTolerance),
		mdsync.WithObserver(observe),
	)
	defer sess.Close()
	editor.hook = sess.EditorScrolled
	preview.hook = sess.PreviewScrolled

	for _, s := range tr.schedule() {
		clock.AdvanceTo(s.when)
		surface := surfaces[s.src]
		switch s.Action {
		case ActionReflow:
			surface.reflow(s.ScrollHeight, s.ClientHeight)
		default:
			surface.userScroll(s.Top)
		}
	}
	clock.Flush()

	st := sess.State()
	rep.Elapsed = clock.Now().String()
	rep.Final = FinalState{
		Fraction: float64(st.Fraction),
		Source:   st.Source.String(),
		Phase:    st.Phase().String(),
	}
	edStats, pvStats := sess.Stats()
	rep.Editor = paneReport(edStats, editor, echoReports[mdsync.Editor])
	rep.Preview = paneReport(pvStats, preview, echoReports[mdsync.Preview])
	rep.FeedbackLoop = rep.Editor.EchoReports+rep.Preview.EchoReports > 0
	return rep, nil
}

func paneReport(st mdsync.Stats, s *simSurface, echoReports int) PaneReport {
	return PaneReport{
		ScrollTop:   s.g.ScrollTop,
		Reports:     st.Reports,
		Writes:      st.Writes,
		Suppressed:  st.Suppressed,
		Echoes:      st.Echoes,
		Degenerate:  st.Degenerate,
		Coalesced:   s.coalesce,
		EchoReports: echoReports,
	}
}

// Verdict is the one-word outcome used in text output.
func (r *Report) Verdict() string {
	if r.FeedbackLoop {
		return "LOOP"
	}
	return "ok"
}

// WriteText prints a human-readable summary, and the timeline when
// timeline is true.
func (r *Report) WriteText(w io.Writer, timeline bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	name := r.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(tw, "trace\t%s\n", name)
	fmt.Fprintf(tw, "timings\tsuppress %s, idle %s, echo %s\n", r.SuppressDelay, r.IdleWindow, r.EchoLatency)
	fmt.Fprintf(tw, "elapsed\t%s\n", r.Elapsed)
	fmt.Fprintf(tw, "final\t%.4f (%s)\n", r.Final.Fraction, r.Final.Phase)
	fmt.Fprintf(tw, "verdict\t%s\n", r.Verdict())
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "pane\ttop\treports\twrites\tsuppressed\tlate echoes\tdegenerate\techo reports")
	for _, row := range []struct {
		name string
		p    PaneReport
	}{{"editor", r.Editor}, {"preview", r.Preview}} {
		fmt.Fprintf(tw, "%s\t%.0f\t%d\t%d\t%d\t%d\t%d\t%d\n", row.name, row.p.ScrollTop,
			row.p.Reports, row.p.Writes, row.p.Suppressed, row.p.Echoes, row.p.Degenerate, row.p.EchoReports)
	}

	if timeline && len(r.Timeline) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "at\tevent\tpane\tfraction\toffset\tphase")
		for _, e := range r.Timeline {
			kind := e.Kind
			if e.Echo {
				kind += "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\t%s\t%s\n", e.At, kind, dash(e.Pane), e.Fraction, offset(e), e.Phase)
		}
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func offset(e Entry) string {
	if e.Kind != mdsync.EventApply.String() {
		return "-"
	}
	return strings.TrimSuffix(fmt.Sprintf("%.1f", e.Offset), ".0")
}
