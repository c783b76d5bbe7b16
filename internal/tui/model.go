// Package tui is the terminal live view: raw Markdown on the left, the
// rendered preview on the right, scroll positions kept in sync.
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/alnah/go-mdsync"
	"github.com/alnah/go-mdsync/internal/render"
)

// ReloadMsg replaces the document, e.g. after the file changed on disk.
type ReloadMsg struct {
	Source []byte
}

// ErrMsg shows a non-fatal error in the status line.
type ErrMsg struct {
	Err error
}

// Options configures the view.
type Options struct {
	Path         string
	Source       []byte
	Dark         bool
	LineNumbers  bool
	PreviewWidth int // 0 wraps to the pane width
	Sync         []mdsync.Option
}

const (
	chromeRows = 3 // header, pane titles, status
	gutterCols = 7
	wheelStep  = 3
)

// Model is the bubbletea model. Use it through a pointer.
type Model struct {
	opts     Options
	src      []byte
	renderer *render.Renderer
	layout   render.Document
	styles   styles

	editor  viewport.Model
	preview viewport.Model
	sched   *teaScheduler
	sess    *mdsync.Session

	focus  mdsync.Source
	dark   bool
	width  int
	height int
	ready  bool
	err    error
}

var _ tea.Model = (*Model)(nil)

// New creates the view model. The session is wired immediately; panes
// get their size from the first WindowSizeMsg.
func New(opts Options) *Model {
	m := &Model{
		opts:     opts,
		src:      opts.Source,
		renderer: render.New(),
		styles:   newStyles(opts.Dark),
		editor:   viewport.New(0, 0),
		preview:  viewport.New(0, 0),
		sched:    newTeaScheduler(),
		focus:    mdsync.Editor,
		dark:     opts.Dark,
	}
	edSurface := &viewportSurface{pane: mdsync.Editor, vp: &m.editor, sched: m.sched}
	pvSurface := &viewportSurface{pane: mdsync.Preview, vp: &m.preview, sched: m.sched}
	m.sess = mdsync.NewSession(edSurface, pvSurface, m.sched, opts.Sync...)
	return m
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if m.key(msg.String()) {
			m.sess.Close()
			return m, tea.Quit
		}
	case tea.MouseMsg:
		m.mouse(msg)
	case timerMsg:
		m.sched.fire(msg.id)
	case scrolledMsg:
		m.sess.Scrolled(msg.pane)
	case ReloadMsg:
		m.src = msg.Source
		m.err = nil
		m.refresh(true)
	case ErrMsg:
		m.err = msg.Err
	}
	return m, m.sched.flush()
}

// key handles a key press and reports whether the program should quit.
func (m *Model) key(k string) bool {
	switch k {
	case "q", "ctrl+c":
		return true
	case "tab":
		m.focus = other(m.focus)
	case "t":
		m.dark = !m.dark
		m.styles = newStyles(m.dark)
		m.refresh(false)
	case "j", "down":
		m.scrollBy(m.focus, 1)
	case "k", "up":
		m.scrollBy(m.focus, -1)
	case "pgdown", " ", "f":
		m.scrollBy(m.focus, m.vp(m.focus).Height)
	case "pgup", "b":
		m.scrollBy(m.focus, -m.vp(m.focus).Height)
	case "g", "home":
		m.scrollTo(m.focus, 0)
	case "G", "end":
		m.scrollTo(m.focus, m.vp(m.focus).TotalLineCount())
	}
	return false
}

func (m *Model) mouse(msg tea.MouseMsg) {
	pane := mdsync.Editor
	if msg.X >= m.editor.Width+1 {
		pane = mdsync.Preview
	}
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		m.scrollBy(pane, wheelStep)
	case tea.MouseButtonWheelUp:
		m.scrollBy(pane, -wheelStep)
	}
}

func (m *Model) scrollBy(pane mdsync.Source, rows int) {
	m.scrollTo(pane, m.vp(pane).YOffset+rows)
}

// scrollTo moves pane as the user would. The native scroll event fires
// only if the pane actually moved.
func (m *Model) scrollTo(pane mdsync.Source, row int) {
	vp := m.vp(pane)
	before := vp.YOffset
	vp.SetYOffset(row)
	if vp.YOffset != before {
		m.sess.Scrolled(pane)
	}
}

func (m *Model) vp(pane mdsync.Source) *viewport.Model {
	if pane == mdsync.Preview {
		return &m.preview
	}
	return &m.editor
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	body := max(height-chromeRows, 1)
	edWidth := max(width/2, 1)
	pvWidth := max(width-edWidth-1, 1)

	m.editor.Width, m.editor.Height = edWidth, body
	m.preview.Width, m.preview.Height = pvWidth, body
	m.ready = true
	m.refresh(true)
}

// refresh rebuilds both panes' content. With reflow, a pane whose offset
// was clamped by the new content height fires its native scroll event.
func (m *Model) refresh(reflow bool) {
	if !m.ready {
		return
	}
	edBefore, pvBefore := m.editor.YOffset, m.preview.YOffset

	m.editor.SetContent(m.editorContent())
	width := m.preview.Width
	if m.opts.PreviewWidth > 0 {
		width = min(width, m.opts.PreviewWidth)
	}
	m.layout = m.renderer.Layout(m.src, width)
	m.preview.SetContent(m.previewContent())

	if !reflow {
		return
	}
	if m.editor.YOffset != edBefore {
		m.sess.EditorScrolled()
	}
	if m.preview.YOffset != pvBefore {
		m.sess.PreviewScrolled()
	}
}

func (m *Model) editorContent() string {
	text := strings.TrimSuffix(string(m.src), "\n")
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	width := m.editor.Width
	if m.opts.LineNumbers {
		width -= gutterCols
	}
	for i, line := range lines {
		line = ansi.Truncate(strings.ReplaceAll(line, "\t", "    "), max(width, 1), "…")
		if m.opts.LineNumbers {
			line = m.styles.gutter.Render(fmt.Sprintf("%4d │ ", i+1)) + line
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func (m *Model) previewContent() string {
	var lines []string
	for i, b := range m.layout.Blocks {
		if i > 0 {
			lines = append(lines, "")
		}
		style := m.styles.block(b.Kind)
		for _, line := range b.Lines {
			lines = append(lines, style.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) View() string {
	if !m.ready {
		return "loading…"
	}

	theme := "light"
	if m.dark {
		theme = "dark"
	}
	header := m.styles.title.Render("mdsync") + m.styles.status.Render(" · "+filepath.Base(m.opts.Path)+" · "+theme)

	titles := lipgloss.JoinHorizontal(lipgloss.Top,
		m.paneTitle(mdsync.Editor, "editor", m.editor.Width),
		" ",
		m.paneTitle(mdsync.Preview, "preview", m.preview.Width),
	)

	sep := m.styles.sep.Render(strings.TrimSuffix(strings.Repeat("│\n", m.editor.Height), "\n"))
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.editor.Width).Height(m.editor.Height).Render(m.editor.View()),
		sep,
		lipgloss.NewStyle().Width(m.preview.Width).Height(m.preview.Height).Render(m.preview.View()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, titles, body, m.statusLine())
}

func (m *Model) paneTitle(pane mdsync.Source, name string, width int) string {
	style := m.styles.paneOff
	if pane == m.focus {
		style = m.styles.paneOn
		name = "▸ " + name
	}
	return style.Width(width).Render(ansi.Truncate(name, width, ""))
}

func (m *Model) statusLine() string {
	if m.err != nil {
		return m.styles.warn.Render(ansi.Truncate("error: "+m.err.Error(), max(m.width, 1), "…"))
	}
	return m.styles.status.Render(ansi.Truncate(m.Status(), max(m.width, 1), "…"))
}

// Status summarizes the sync state: phase, shared position, and which
// panes are suppressing their own echoes.
func (m *Model) Status() string {
	st := m.sess.State()
	s := fmt.Sprintf("%s  %3.0f%%", st.Phase(), float64(st.Fraction)*100)
	for _, pane := range []mdsync.Source{mdsync.Editor, mdsync.Preview} {
		if m.sess.Adapter(pane).Suppressed() {
			s += "  " + pane.String() + ":hold"
		}
	}
	return s + "  tab focus · t theme · q quit"
}

func other(s mdsync.Source) mdsync.Source {
	if s == mdsync.Editor {
		return mdsync.Preview
	}
	return mdsync.Editor
}
