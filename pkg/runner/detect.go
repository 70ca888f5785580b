package runner

import (
	"context"

	"github.com/calkit/nbstage/pkg/domain"
	"github.com/calkit/nbstage/pkg/ports"
	"github.com/calkit/nbstage/pkg/trace"
)

// DetectStageIO discovers the files a notebook reads and writes by
// instrumenting its live kernel: install the open-wrapper, run every cell,
// collect the accumulated sets, then restore the original primitive.
//
// Unsupported kernel languages return (nil, nil). A collect result that
// fails to decode degrades to an empty result and is logged only; it never
// fails the caller. Interpreter transport errors do propagate.
func (c *Controller) DetectStageIO(ctx context.Context, nb ports.Notebook) (*domain.TraceResult, error) {
	lang := nb.Kernel().Language()
	strat, ok := trace.ForLanguage(lang)
	if !ok {
		c.logger.Info("no instrumentation for kernel language", "language", lang)
		return nil, nil
	}
	log := c.logger.With("language", strat.Language(), "notebook", nb.Path())

	startRes, err := nb.Execute(ctx, strat.StartCode())
	if err != nil {
		c.metrics.DetectionsTotal.WithLabelValues(strat.Language(), outcomeFailed).Inc()
		return nil, err
	}
	if startRes != nil && startRes.Error != nil {
		// The interpreter rejected the instrumentation; the run proceeds but
		// tracking is inactive and the collect step will report nothing.
		log.Warn("instrumentation install failed on kernel",
			"name", startRes.Error.Name,
			"err", startRes.Error.Message,
		)
	}

	_, runErr := nb.RunAllCells(ctx)
	var res *domain.ExecuteResult
	var collectErr error
	if runErr == nil {
		res, collectErr = nb.Execute(ctx, strat.CollectCode())
	}

	// Restore the interpreter regardless of how collection went.
	if _, err := nb.Execute(ctx, strat.StopCode()); err != nil {
		log.Warn("failed to remove instrumentation", "err", err)
	}

	if runErr != nil {
		c.metrics.DetectionsTotal.WithLabelValues(strat.Language(), outcomeFailed).Inc()
		return nil, runErr
	}
	if collectErr != nil {
		c.metrics.DetectionsTotal.WithLabelValues(strat.Language(), outcomeFailed).Inc()
		return nil, collectErr
	}

	parsed := trace.ParseDetection(res)
	if parsed == nil {
		// Parse failures degrade to "nothing detected" per the error
		// taxonomy; the session must not crash on malformed output.
		log.Warn("detection result did not decode; reporting no files")
		c.metrics.DetectionsTotal.WithLabelValues(strat.Language(), outcomeEmpty).Inc()
		return &domain.TraceResult{}, nil
	}

	c.metrics.DetectionsTotal.WithLabelValues(strat.Language(), outcomeSuccess).Inc()
	return c.normalizeDetection(parsed), nil
}

// DetectFromServer pre-populates a stage definition from the backend's
// detection endpoints and merges the result into def. Existing declarations
// are kept; new outputs default to DVC storage.
func (c *Controller) DetectFromServer(ctx context.Context, nb ports.Notebook, def *domain.StageDefinition) (*domain.TraceResult, error) {
	inputs, err := c.store.DetectInputs(ctx, nb.Path())
	if err != nil {
		return nil, err
	}
	outputs, err := c.store.DetectOutputs(ctx, nb.Path())
	if err != nil {
		return nil, err
	}
	res := c.normalizeDetection(&domain.TraceResult{Inputs: inputs, Outputs: outputs})
	def.MergeTrace(res)
	return res, nil
}
