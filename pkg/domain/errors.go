package domain

import (
	"errors"
	"fmt"
)

// ErrRunInProgress is returned when a run is requested for a notebook that
// already holds an active run session.
var ErrRunInProgress = errors.New("a stage run is already in progress for this notebook")

// ErrMissingStageName is returned when a run or save is requested for a stage
// definition without a name.
var ErrMissingStageName = errors.New("stage name is required")

// ErrMissingEnvironment is returned when a stage has no environment assigned.
// A stage cannot run until its environment reference is set.
var ErrMissingEnvironment = errors.New("stage has no environment; set one before running")

// ErrNoSession is returned when a finalize is attempted without an open
// run-session plan.
var ErrNoSession = errors.New("no open run session")

// ExecutionError reports that a notebook run produced at least one error
// output. The first failing cell is recorded; the run is failed as a whole.
type ExecutionError struct {
	CellIndex int
	Name      string
	Message   string
}

func (e *ExecutionError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("cell %d failed: %s: %s", e.CellIndex, e.Name, e.Message)
	}
	return fmt.Sprintf("cell %d failed: %s", e.CellIndex, e.Message)
}
