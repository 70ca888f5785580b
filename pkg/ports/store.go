package ports

import (
	"context"

	"github.com/calkit/nbstage/pkg/domain"
)

// PipelineStore is the backend pipeline store consumed by the controller.
// All calls are JSON over HTTP in the reference adapter; errors carry the
// message extracted from the backend response.
type PipelineStore interface {
	// OpenRunSession records a run attempt for (notebookPath, stageName) and
	// returns the plan to pass back at finalize time. Past this call the
	// backend considers a run in flight; abandoned sessions are cleaned up
	// by the backend, never by the client.
	OpenRunSession(ctx context.Context, notebookPath, stageName string) (*domain.RunSessionPlan, error)

	// FinalizeRunSession commits a successful run. The plan must be the
	// exact value returned by OpenRunSession.
	FinalizeRunSession(ctx context.Context, notebookPath, stageName string, plan *domain.RunSessionPlan) error

	// DetectInputs asks the backend to infer input paths for a notebook.
	DetectInputs(ctx context.Context, notebookPath string) ([]string, error)

	// DetectOutputs asks the backend to infer output paths for a notebook.
	DetectOutputs(ctx context.Context, notebookPath string) ([]string, error)

	// PipelineStatus returns the raw pipeline status document. Its shape has
	// changed across backend versions; callers go through the staleness
	// reconciler instead of reading it directly.
	PipelineStatus(ctx context.Context) (map[string]any, error)

	// SaveStage declares or updates a stage definition for a notebook,
	// independent of any run.
	SaveStage(ctx context.Context, notebookPath string, def *domain.StageDefinition) error
}
