package ports

import (
	"context"

	"github.com/calkit/nbstage/pkg/domain"
)

// Notebook is the host frontend's live notebook document. The controller
// drives it but never owns it: saving, cell execution, and silent code
// evaluation are all performed by the host against its own kernel
// connection.
type Notebook interface {
	// Path returns the project-relative notebook path.
	Path() string

	// Save persists the current document, including output cells.
	Save(ctx context.Context) error

	// RunAllCells executes every cell top to bottom and returns the recorded
	// per-cell results. It returns when the last cell has finished; there is
	// no timeout at this level.
	RunAllCells(ctx context.Context) ([]domain.CellResult, error)

	// Execute evaluates a code fragment on the notebook's kernel without
	// adding a cell, returning the execute result bundle.
	Execute(ctx context.Context, code string) (*domain.ExecuteResult, error)

	// Kernel returns the notebook's current kernel.
	Kernel() Kernel
}
