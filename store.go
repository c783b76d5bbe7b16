package mdsync

// Store holds the single shared sync state of an editing session.
// Only the Coordinator mutates it.
type Store struct {
	state State
}

// State returns a snapshot of the shared state.
func (s *Store) State() State {
	return s.state
}

// Phase returns the state machine phase.
func (s *Store) Phase() Phase {
	return s.state.Phase()
}

// record makes source the active pane at fraction f.
func (s *Store) record(source Source, f Fraction) {
	s.state = State{Fraction: f, Source: source}
}

// clearSource returns to Idle, keeping the last fraction.
func (s *Store) clearSource() {
	s.state.Source = None
}
