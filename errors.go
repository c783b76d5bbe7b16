package mdsync

import "errors"

// Sentinel errors for library operations.
// The scroll path itself never fails; these cover wiring and lifecycle.
var (
	ErrUnknownPane   = errors.New("unknown pane")
	ErrDuplicatePane = errors.New("pane already attached")
	ErrNilSurface    = errors.New("surface cannot be nil")
	ErrNilScheduler  = errors.New("scheduler cannot be nil")
	ErrLoopClosed    = errors.New("event loop closed")
)
