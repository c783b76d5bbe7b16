package mdsync

// Session couples an editor and a preview surface for one open document.
//
// Session is not safe for concurrent use: the host calls EditorScrolled and
// PreviewScrolled from the same event queue that runs sched's callbacks.
type Session struct {
	coord   *Coordinator
	editor  *PaneAdapter
	preview *PaneAdapter
}

// NewSession wires a coordinator and both pane adapters.
// Panics if a surface or the scheduler is nil.
func NewSession(editor, preview Surface, sched Scheduler, opts ...Option) *Session {
	coord := NewCoordinator(sched, opts...)
	cfg := coord.cfg
	tol := WithAdapterEchoTolerance(cfg.echoTolerance)

	s := &Session{
		coord:   coord,
		editor:  NewEditorAdapter(editor, sched, cfg.suppressDelay, tol),
		preview: NewPreviewAdapter(preview, sched, cfg.suppressDelay, tol),
	}
	// Distinct identities on a fresh coordinator: Attach cannot fail.
	_ = coord.Attach(s.editor)
	_ = coord.Attach(s.preview)
	return s
}

// EditorScrolled is the native scroll hook of the editor surface.
func (s *Session) EditorScrolled() {
	s.editor.ReportScroll()
}

// PreviewScrolled is the native scroll hook of the preview surface.
func (s *Session) PreviewScrolled() {
	s.preview.ReportScroll()
}

// Scrolled dispatches a native scroll event by pane identity.
func (s *Session) Scrolled(pane Source) {
	switch pane {
	case Editor:
		s.EditorScrolled()
	case Preview:
		s.PreviewScrolled()
	}
}

// State returns a snapshot of the shared sync state.
func (s *Session) State() State {
	return s.coord.State()
}

// Adapter returns the adapter for pane, or nil for None.
func (s *Session) Adapter(pane Source) *PaneAdapter {
	switch pane {
	case Editor:
		return s.editor
	case Preview:
		return s.preview
	}
	return nil
}

// Stats returns the counters of both panes.
func (s *Session) Stats() (editor, preview Stats) {
	return s.editor.Stats(), s.preview.Stats()
}

// Close cancels pending timers.
func (s *Session) Close() {
	s.coord.Close()
}
