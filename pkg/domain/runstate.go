package domain

// RunState is the process-wide snapshot of run activity, read by any number
// of UI observers and mutated only by run controllers.
type RunState struct {
	// Running is true while notebook cells are executing.
	Running bool

	// SessionInProgress is true from session-open until finalize or abort.
	SessionInProgress bool

	// Operation is a short human-readable label for the current operation,
	// empty when nothing is happening.
	Operation string
}
