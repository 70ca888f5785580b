package ports

import (
	"context"

	"github.com/calkit/nbstage/pkg/domain"
)

// Kernel is an observed interpreter process. The client never owns its
// lifecycle beyond requesting restarts; status transitions are driven by the
// interpreter and surfaced through StatusChanges.
type Kernel interface {
	// Status returns the last observed status.
	Status() domain.KernelStatus

	// Restart asks the interpreter process to restart. The new process
	// reports its own status transitions; Restart does not wait for idle.
	Restart(ctx context.Context) error

	// StatusChanges subscribes to status transitions. The returned cancel
	// function MUST be called to release the subscription; after cancel the
	// channel is closed.
	StatusChanges() (<-chan domain.KernelStatus, func())

	// Language returns the interpreter language name (e.g. "python", "r",
	// "julia"), used to select an instrumentation strategy.
	Language() string
}
