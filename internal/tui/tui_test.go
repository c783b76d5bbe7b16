package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alnah/go-mdsync"
)

// harness drives a Model the way the bubbletea runtime would, except that
// timers are recorded and fired on demand instead of sleeping.
type harness struct {
	t      *testing.T
	m      *Model
	timers []pendingTimer
}

type pendingTimer struct {
	d   time.Duration
	msg tea.Msg
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{t: t, m: New(opts)}
	h.m.sched.tick = func(d time.Duration, msg tea.Msg) tea.Cmd {
		h.timers = append(h.timers, pendingTimer{d: d, msg: msg})
		return nil
	}
	h.send(tea.WindowSizeMsg{Width: 80, Height: 13})
	return h
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	_, cmd := h.m.Update(msg)
	h.run(cmd)
}

func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(c)
		}
	default:
		h.send(msg)
	}
}

// settle fires every pending timer, shortest delay first, until none remain.
func (h *harness) settle() {
	for len(h.timers) > 0 {
		batch := h.timers
		h.timers = nil
		slices.SortStableFunc(batch, func(a, b pendingTimer) int { return int(a.d - b.d) })
		for _, p := range batch {
			h.send(p.msg)
		}
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func wheel(x int, b tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: 5, Button: b, Action: tea.MouseActionPress}
}

// doc returns n one-line paragraphs: 2n-1 lines in both panes.
func doc(n int) []byte {
	var b strings.Builder
	for i := range n {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "para %d\n", i)
	}
	return []byte(b.String())
}

// ---------------------------------------------------------------------------
// TestModel - Sync through Update
// ---------------------------------------------------------------------------

func TestModel_EditorDrivesPreview(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{Path: "doc.md", Source: doc(50)})
	if h.m.editor.TotalLineCount() != 99 || h.m.preview.TotalLineCount() != 99 {
		t.Fatalf("line counts = %d/%d, want 99/99", h.m.editor.TotalLineCount(), h.m.preview.TotalLineCount())
	}

	h.send(key("G"))

	if h.m.editor.YOffset != 89 {
		t.Errorf("editor offset = %d, want 89", h.m.editor.YOffset)
	}
	if h.m.preview.YOffset != 89 {
		t.Errorf("preview offset = %d, want 89", h.m.preview.YOffset)
	}
	st := h.m.sess.State()
	if st.Source != mdsync.Editor || st.Fraction != 1 {
		t.Errorf("state = %+v, want editor at 1", st)
	}

	ed, pv := h.m.sess.Stats()
	if ed.Reports != 1 {
		t.Errorf("editor reports = %d, want 1", ed.Reports)
	}
	if pv.Writes != 1 || pv.Reports != 0 || pv.Suppressed != 1 {
		t.Errorf("preview stats = %+v, want 1 write, 0 reports, 1 suppressed", pv)
	}

	h.settle()
	if got := h.m.sess.State().Source; got != mdsync.None {
		t.Errorf("source after idle = %v, want none", got)
	}
}

func TestModel_WheelScrollsPaneUnderPointer(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{Source: doc(50)})

	h.send(wheel(60, tea.MouseButtonWheelDown))

	if h.m.preview.YOffset != wheelStep {
		t.Errorf("preview offset = %d, want %d", h.m.preview.YOffset, wheelStep)
	}
	if h.m.editor.YOffset != wheelStep {
		t.Errorf("editor offset = %d, want %d", h.m.editor.YOffset, wheelStep)
	}
	if got := h.m.sess.State().Source; got != mdsync.Preview {
		t.Errorf("source = %v, want preview", got)
	}
	if h.m.focus != mdsync.Editor {
		t.Error("wheel changed keyboard focus")
	}
}

func TestModel_FocusedPaneScrolls(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{Source: doc(50)})

	h.send(key("tab"))
	if h.m.focus != mdsync.Preview {
		t.Fatalf("focus = %v, want preview", h.m.focus)
	}
	h.send(key("j"))
	h.send(key("j"))

	if h.m.preview.YOffset != 2 || h.m.editor.YOffset != 2 {
		t.Errorf("offsets = %d/%d, want 2/2", h.m.editor.YOffset, h.m.preview.YOffset)
	}
	_, pv := h.m.sess.Stats()
	if pv.Reports != 2 {
		t.Errorf("preview reports = %d, want 2", pv.Reports)
	}
}

func TestModel_ShortDocumentDoesNotSync(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{Source: []byte("# Title\n\nshort\n")})

	h.send(key("j"))
	h.send(key("G"))

	ed, pv := h.m.sess.Stats()
	if ed.Reports != 0 || pv.Writes != 0 {
		t.Errorf("stats = %+v / %+v, want no reports or writes", ed, pv)
	}
	if len(h.timers) != 0 {
		t.Errorf("timers = %d, want none", len(h.timers))
	}
}

func TestModel_ReloadClampsAndReports(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{Source: doc(50)})
	h.send(key("G"))
	h.settle()

	h.send(ReloadMsg{Source: doc(25)})

	// 49 lines, 10 rows tall.
	if h.m.editor.YOffset != 39 {
		t.Errorf("editor offset = %d, want 39", h.m.editor.YOffset)
	}
	ed, _ := h.m.sess.Stats()
	if ed.Reports != 2 {
		t.Errorf("editor reports = %d, want 2", ed.Reports)
	}
	if st := h.m.sess.State(); st.Fraction != 1 {
		t.Errorf("fraction = %v, want 1", st.Fraction)
	}
}

func TestModel_Quit(t *testing.T) {
	t.Parallel()

	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			t.Parallel()
			m := New(Options{Source: doc(3)})
			_, cmd := m.Update(key(k))
			if cmd == nil {
				t.Fatal("no command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("command is not tea.Quit")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestModel - Rendering
// ---------------------------------------------------------------------------

func TestModel_View(t *testing.T) {
	t.Parallel()

	if got := New(Options{}).View(); got != "loading…" {
		t.Errorf("View() before size = %q", got)
	}

	h := newHarness(t, Options{Path: "/tmp/notes.md", Source: doc(50), LineNumbers: true})
	view := h.m.View()
	for _, want := range []string{"notes.md", "light", "▸ editor", "preview", "   1 │ para 0", "idle"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	h.send(key("t"))
	if !h.m.dark || !strings.Contains(h.m.View(), "dark") {
		t.Error("theme toggle did not switch to dark")
	}

	h.send(ErrMsg{Err: errors.New("read failed")})
	if !strings.Contains(h.m.View(), "error: read failed") {
		t.Error("View() does not show the error")
	}
	h.send(ReloadMsg{Source: doc(50)})
	if strings.Contains(h.m.View(), "error:") {
		t.Error("reload did not clear the error")
	}
}

func TestModel_Status(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{Source: doc(50)})
	h.send(key("G"))

	got := h.m.Status()
	for _, want := range []string{"active-editor", "100%", "preview:hold"} {
		if !strings.Contains(got, want) {
			t.Errorf("Status() = %q, missing %q", got, want)
		}
	}

	h.settle()
	if got := h.m.Status(); strings.Contains(got, ":hold") || !strings.HasPrefix(got, "idle") {
		t.Errorf("Status() after settle = %q", got)
	}
}

func TestModel_PreviewWidth(t *testing.T) {
	t.Parallel()

	h := newHarness(t, Options{Source: []byte("one two three four five six seven eight\n"), PreviewWidth: 20})
	for _, b := range h.m.layout.Blocks {
		for _, line := range b.Lines {
			if len(line) > 20 {
				t.Errorf("line %q wider than 20", line)
			}
		}
	}
	if h.m.layout.Width != 20 {
		t.Errorf("layout width = %d, want 20", h.m.layout.Width)
	}
}

// ---------------------------------------------------------------------------
// TestTeaScheduler
// ---------------------------------------------------------------------------

func TestTeaScheduler(t *testing.T) {
	t.Parallel()

	s := newTeaScheduler()
	var ticks []time.Duration
	s.tick = func(d time.Duration, msg tea.Msg) tea.Cmd {
		ticks = append(ticks, d)
		return func() tea.Msg { return msg }
	}

	if s.flush() != nil {
		t.Error("flush() on empty queue returned a command")
	}

	calls := 0
	s.AfterFunc(50*time.Millisecond, func() { calls++ })
	stopped := s.AfterFunc(100*time.Millisecond, func() { calls += 10 })

	if !stopped.Stop() {
		t.Error("Stop() = false on pending timer")
	}
	if stopped.Stop() {
		t.Error("second Stop() = true")
	}

	cmd := s.flush()
	if cmd == nil {
		t.Fatal("flush() = nil with queued timers")
	}
	if !slices.Equal(ticks, []time.Duration{50 * time.Millisecond, 100 * time.Millisecond}) {
		t.Errorf("ticks = %v", ticks)
	}
	if s.flush() != nil {
		t.Error("second flush() returned a command")
	}

	s.fire(1)
	s.fire(1)
	s.fire(2)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestTeaScheduler_Post(t *testing.T) {
	t.Parallel()

	s := newTeaScheduler()
	s.post(scrolledMsg{pane: mdsync.Preview})

	cmd := s.flush()
	if cmd == nil {
		t.Fatal("flush() = nil")
	}
	if got, ok := cmd().(scrolledMsg); !ok || got.pane != mdsync.Preview {
		t.Errorf("posted msg = %#v", got)
	}
}

// ---------------------------------------------------------------------------
// TestViewportSurface
// ---------------------------------------------------------------------------

func TestViewportSurface(t *testing.T) {
	t.Parallel()

	vp := viewport.New(20, 10)
	vp.SetContent(strings.Repeat("x\n", 29) + "x")
	s := &viewportSurface{pane: mdsync.Editor, vp: &vp, sched: newTeaScheduler()}

	g := s.Geometry()
	if g.ScrollHeight != 30 || g.ClientHeight != 10 || g.ScrollTop != 0 {
		t.Errorf("Geometry() = %+v", g)
	}

	s.SetScrollTop(4.6)
	if vp.YOffset != 5 {
		t.Errorf("offset = %d, want 5", vp.YOffset)
	}
	if s.sched.flush() == nil {
		t.Error("moving write did not post a scroll event")
	}

	s.SetScrollTop(5.2)
	if s.sched.flush() != nil {
		t.Error("no-op write posted a scroll event")
	}

	s.SetScrollTop(1000)
	if vp.YOffset != 20 {
		t.Errorf("offset = %d, want clamped 20", vp.YOffset)
	}
	if s.RowHeight() != 1 {
		t.Errorf("RowHeight() = %v", s.RowHeight())
	}
}
