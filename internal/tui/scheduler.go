package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alnah/go-mdsync"
)

// timerMsg fires the scheduler callback registered under id.
type timerMsg struct{ id int }

// teaScheduler runs sync timers on the bubbletea event loop. AfterFunc
// queues a tick command; the callback runs inside Update when the tick's
// message arrives, so every session call stays on the program goroutine.
type teaScheduler struct {
	next   int
	timers map[int]func()
	out    []tea.Cmd
	tick   func(d time.Duration, msg tea.Msg) tea.Cmd
}

var _ mdsync.Scheduler = (*teaScheduler)(nil)

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{
		timers: make(map[int]func()),
		tick: func(d time.Duration, msg tea.Msg) tea.Cmd {
			return tea.Tick(d, func(time.Time) tea.Msg { return msg })
		},
	}
}

func (s *teaScheduler) AfterFunc(d time.Duration, f func()) mdsync.Timer {
	s.next++
	id := s.next
	s.timers[id] = f
	s.out = append(s.out, s.tick(d, timerMsg{id: id}))
	return teaTimer{s: s, id: id}
}

// post delivers msg on a later turn of the event loop.
func (s *teaScheduler) post(msg tea.Msg) {
	s.out = append(s.out, func() tea.Msg { return msg })
}

func (s *teaScheduler) fire(id int) {
	f, ok := s.timers[id]
	if !ok {
		return
	}
	delete(s.timers, id)
	f()
}

// flush returns the commands queued since the last flush.
func (s *teaScheduler) flush() tea.Cmd {
	if len(s.out) == 0 {
		return nil
	}
	cmds := s.out
	s.out = nil
	return tea.Batch(cmds...)
}

type teaTimer struct {
	s  *teaScheduler
	id int
}

func (t teaTimer) Stop() bool {
	if _, ok := t.s.timers[t.id]; !ok {
		return false
	}
	delete(t.s.timers, t.id)
	return true
}
