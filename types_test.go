package mdsync_test

import (
	"math"
	"testing"

	"github.com/alnah/go-mdsync"
)

func TestClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want mdsync.Fraction
	}{
		{in: -0.5, want: 0},
		{in: 0, want: 0},
		{in: 0.25, want: 0.25},
		{in: 1, want: 1},
		{in: 1.0001, want: 1},
		{in: math.Inf(1), want: 1},
		{in: math.Inf(-1), want: 0},
		{in: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		if got := mdsync.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGeometry(t *testing.T) {
	t.Parallel()

	g := mdsync.Geometry{ScrollTop: 300, ScrollHeight: 1300, ClientHeight: 300}
	if g.MaxScroll() != 1000 {
		t.Errorf("MaxScroll() = %v, want 1000", g.MaxScroll())
	}
	if !g.Scrollable() {
		t.Error("Scrollable() = false, want true")
	}
	if f, ok := g.Fraction(); !ok || f != 0.3 {
		t.Errorf("Fraction() = (%v, %v), want (0.3, true)", f, ok)
	}
	if got := g.OffsetFor(0.1234); got != 123 {
		t.Errorf("OffsetFor(0.1234) = %v, want 123", got)
	}

	flat := mdsync.Geometry{ScrollHeight: 300, ClientHeight: 300}
	if flat.Scrollable() {
		t.Error("equal heights reported scrollable")
	}
	if _, ok := flat.Fraction(); ok {
		t.Error("Fraction() defined for content that fits")
	}
	if flat.OffsetFor(0.5) != 0 {
		t.Error("OffsetFor() on flat geometry should be 0")
	}
}

func TestSource(t *testing.T) {
	t.Parallel()

	for _, s := range []mdsync.Source{mdsync.None, mdsync.Editor, mdsync.Preview} {
		got, ok := mdsync.ParseSource(s.String())
		if !ok || got != s {
			t.Errorf("ParseSource(%q) = (%v, %v), want (%v, true)", s.String(), got, ok, s)
		}
	}
	if _, ok := mdsync.ParseSource("sidebar"); ok {
		t.Error("ParseSource(sidebar) ok = true, want false")
	}
}

func TestState_Phase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  mdsync.Source
		want mdsync.Phase
	}{
		{src: mdsync.None, want: mdsync.Idle},
		{src: mdsync.Editor, want: mdsync.ActiveEditor},
		{src: mdsync.Preview, want: mdsync.ActivePreview},
	}
	for _, tt := range tests {
		if got := (mdsync.State{Source: tt.src}).Phase(); got != tt.want {
			t.Errorf("State{%v}.Phase() = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestEventKind_String(t *testing.T) {
	t.Parallel()

	want := map[mdsync.EventKind]string{
		mdsync.EventReport:   "report",
		mdsync.EventApply:    "apply",
		mdsync.EventSuppress: "suppress",
		mdsync.EventEcho:     "echo",
		mdsync.EventIdle:     "idle",
		mdsync.EventKind(99): "unknown",
	}
	for k, s := range want {
		if k.String() != s {
			t.Errorf("EventKind(%d).String() = %q, want %q", k, k.String(), s)
		}
	}
}
