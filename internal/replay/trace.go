// Package replay runs recorded or hand-written scroll traces against a
// sync session on a virtual clock.
//
// A trace fixes both panes' geometry and lists timed steps. Each step either
// scrolls a pane as a user would or reflows it (content height changes, as
// when an image loads). Programmatic writes made by the session echo back
// as native scroll events after the trace's echo latency, so a trace
// reproduces the timing races a real host produces, deterministically.
package replay

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/alnah/go-mdsync"
	"github.com/alnah/go-mdsync/internal/yamlutil"
)

// ErrInvalidTrace is wrapped by every trace validation error.
var ErrInvalidTrace = errors.New("invalid trace")

// Step actions.
const (
	ActionScroll = "scroll"
	ActionReflow = "reflow"
)

// Trace is the YAML form of a replay scenario.
//
//	name: drag
//	echoLatency: 16ms
//	editor:  {scrollHeight: 2000, clientHeight: 400, rowHeight: 20}
//	preview: {scrollHeight: 5000, clientHeight: 600}
//	steps:
//	  - {at: 0ms, pane: editor, top: 120}
//	  - {at: 300ms, pane: preview, action: reflow, scrollHeight: 6000}
type Trace struct {
	Name          string   `yaml:"name"`
	EchoLatency   string   `yaml:"echoLatency,omitempty"`
	SuppressDelay string   `yaml:"suppressDelay,omitempty"`
	IdleWindow    string   `yaml:"idleWindow,omitempty"`
	Editor        PaneSpec `yaml:"editor"`
	Preview       PaneSpec `yaml:"preview"`
	Steps         []Step   `yaml:"steps"`
}

// PaneSpec is a pane's initial geometry.
type PaneSpec struct {
	ScrollHeight float64 `yaml:"scrollHeight"`
	ClientHeight float64 `yaml:"clientHeight"`
	ScrollTop    float64 `yaml:"scrollTop,omitempty"`
	RowHeight    float64 `yaml:"rowHeight,omitempty"` // editor only; snaps writes
}

// Step is one timed input. Action defaults to scroll.
// A scroll sets Top; a reflow sets ScrollHeight and/or ClientHeight.
type Step struct {
	At           string  `yaml:"at"`
	Pane         string  `yaml:"pane"`
	Action       string  `yaml:"action,omitempty"`
	Top          float64 `yaml:"top,omitempty"`
	ScrollHeight float64 `yaml:"scrollHeight,omitempty"`
	ClientHeight float64 `yaml:"clientHeight,omitempty"`
}

// Params are the session timings a replay runs with.
type Params struct {
	SuppressDelay time.Duration
	IdleWindow    time.Duration
	EchoLatency   time.Duration
	EchoTolerance float64
}

// DefaultParams mirrors the session defaults with a 60Hz echo latency.
func DefaultParams() Params {
	return Params{
		SuppressDelay: mdsync.DefaultSuppressDelay,
		IdleWindow:    mdsync.DefaultIdleWindow,
		EchoLatency:   16 * time.Millisecond,
		EchoTolerance: mdsync.DefaultEchoTolerance,
	}
}

// Load reads a trace file.
func Load(path string) (*Trace, error) {
	f, err := os.Open(path) // #nosec G304 -- trace path is user-provided
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Decode reads and validates a trace.
func Decode(r io.Reader) (*Trace, error) {
	var tr Trace
	if err := yamlutil.ReadStrict(r, &tr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTrace, err)
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return &tr, nil
}

// Validate checks geometry, step fields and durations.
func (tr *Trace) Validate() error {
	if err := tr.Editor.validate("editor"); err != nil {
		return err
	}
	if err := tr.Preview.validate("preview"); err != nil {
		return err
	}
	if _, err := tr.Params(DefaultParams()); err != nil {
		return err
	}
	for i, s := range tr.Steps {
		if err := s.validate(); err != nil {
			return fmt.Errorf("%w: step %d: %v", ErrInvalidTrace, i, err)
		}
	}
	return nil
}

func (p PaneSpec) validate(name string) error {
	if p.ScrollHeight < 0 || p.ClientHeight <= 0 {
		return fmt.Errorf("%w: %s: scrollHeight must be >= 0 and clientHeight > 0", ErrInvalidTrace, name)
	}
	if p.RowHeight < 0 || p.ScrollTop < 0 {
		return fmt.Errorf("%w: %s: negative rowHeight or scrollTop", ErrInvalidTrace, name)
	}
	return nil
}

func (s Step) validate() error {
	if _, err := s.at(); err != nil {
		return err
	}
	if _, err := s.pane(); err != nil {
		return err
	}
	switch s.Action {
	case "", ActionScroll:
	case ActionReflow:
		if s.ScrollHeight < 0 || s.ClientHeight < 0 {
			return errors.New("negative reflow height")
		}
		if s.ScrollHeight == 0 && s.ClientHeight == 0 {
			return errors.New("reflow needs scrollHeight or clientHeight")
		}
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
	return nil
}

func (s Step) at() (time.Duration, error) {
	d, err := time.ParseDuration(s.At)
	if err != nil {
		return 0, fmt.Errorf("at: %q is not a duration", s.At)
	}
	if d < 0 {
		return 0, fmt.Errorf("at: negative time %v", d)
	}
	return d, nil
}

func (s Step) pane() (mdsync.Source, error) {
	p, ok := mdsync.ParseSource(s.Pane)
	if !ok || p == mdsync.None {
		return mdsync.None, fmt.Errorf("pane: %q (want editor or preview)", s.Pane)
	}
	return p, nil
}

// Params overlays the trace's timing fields on base.
func (tr *Trace) Params(base Params) (Params, error) {
	p := base
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
		zero  bool
	}{
		{name: "echoLatency", value: tr.EchoLatency, dst: &p.EchoLatency, zero: true},
		{name: "suppressDelay", value: tr.SuppressDelay, dst: &p.SuppressDelay},
		{name: "idleWindow", value: tr.IdleWindow, dst: &p.IdleWindow},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		d, err := time.ParseDuration(f.value)
		if err != nil || d < 0 || (d == 0 && !f.zero) {
			return Params{}, fmt.Errorf("%w: %s: %q", ErrInvalidTrace, f.name, f.value)
		}
		*f.dst = d
	}
	return p, nil
}

// schedule returns the steps with parsed times, ordered by time.
// Steps sharing a time keep their file order.
func (tr *Trace) schedule() []timedStep {
	out := make([]timedStep, 0, len(tr.Steps))
	for _, s := range tr.Steps {
		at, _ := s.at()
		pane, _ := s.pane()
		out = append(out, timedStep{Step: s, when: at, src: pane})
	}
	slices.SortStableFunc(out, func(a, b timedStep) int {
		return cmp.Compare(a.when, b.when)
	})
	return out
}

type timedStep struct {
	Step
	when time.Duration
	src  mdsync.Source
}
