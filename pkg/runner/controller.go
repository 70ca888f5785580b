package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/calkit/nbstage/internal/logging"
	"github.com/calkit/nbstage/pkg/domain"
	"github.com/calkit/nbstage/pkg/kernel"
	"github.com/calkit/nbstage/pkg/ports"
	"github.com/calkit/nbstage/pkg/runstate"
	"github.com/calkit/nbstage/pkg/staleness"
	"github.com/calkit/nbstage/pkg/trace"
)

// Controller sequences stage runs against the backend pipeline store.
type Controller struct {
	store     ports.PipelineStore
	locker    ports.RunLocker
	states    *runstate.Broadcaster
	kernels   *kernel.Manager
	presenter ports.ErrorPresenter
	refresher ports.Refresher
	logger    *slog.Logger
	metrics   *Metrics

	// projectRoot, when set, re-filters detection results on the Go side.
	projectRoot string
}

// Option configures the Controller.
type Option func(*Controller)

// WithKernelManager overrides the kernel lifecycle manager.
func WithKernelManager(m *kernel.Manager) Option {
	return func(c *Controller) {
		c.kernels = m
	}
}

// WithPresenter sets the host's user-visible error surface.
func WithPresenter(p ports.ErrorPresenter) Option {
	return func(c *Controller) {
		c.presenter = p
	}
}

// WithRefresher sets the host's cache invalidation hooks, called after a
// successful finalize.
func WithRefresher(r ports.Refresher) Option {
	return func(c *Controller) {
		c.refresher = r
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMetrics configures prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithProjectRoot sets the absolute project root used to re-filter detected
// paths client-side. Empty skips the extra filtering (the interpreter
// fragments filter regardless).
func WithProjectRoot(root string) Option {
	return func(c *Controller) {
		c.projectRoot = root
	}
}

// New creates a Controller. The broadcaster is shared with UI observers and
// must be the process-wide instance.
func New(store ports.PipelineStore, locker ports.RunLocker, states *runstate.Broadcaster, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		locker:  locker,
		states:  states,
		kernels: kernel.NewManager(),
		logger:  logging.NewNop(),
		metrics: NewMetrics(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.presenter == nil {
		c.presenter = logPresenter{logger: c.logger}
	}
	return c
}

// RunStage executes one stage run for the notebook, end to end. On success
// the backend session opened at the start is finalized with the exact plan
// it issued; on any failure the session is abandoned un-finalized and the
// error is surfaced to the user. The whole sequence is never retried
// automatically.
func (c *Controller) RunStage(ctx context.Context, nb ports.Notebook, def *domain.StageDefinition) error {
	// Pre-flight: nothing has been touched yet, fail fast.
	if err := def.Validate(); err != nil {
		c.presenter.ShowError("Cannot run stage", err.Error())
		return err
	}

	runID := ulid.Make().String()
	log := c.logger.With("run_id", runID, "stage", def.Name, "notebook", nb.Path())
	operation := "Running stage " + def.Name

	unlock, err := c.locker.Acquire(ctx, nb.Path(), runID)
	if err != nil {
		c.presenter.ShowError("Cannot run stage", err.Error())
		return err
	}
	defer func() {
		// Release survives a canceled run context.
		if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
			log.Warn("failed to release run lock", "err", uerr)
		}
	}()

	started := time.Now()
	log.Info("stage run starting")

	// Saving: persist the document before the backend hears anything.
	if err := nb.Save(ctx); err != nil {
		return c.abort(log, phaseSaving, err)
	}

	// SessionOpening: past this point the backend has recorded a run
	// attempt; a crash leaves the session dangling for backend cleanup.
	plan, err := c.store.OpenRunSession(ctx, nb.Path(), def.Name)
	if err != nil {
		return c.abort(log, phaseSessionOpening, err)
	}
	c.states.SetSessionInProgress(true, operation)
	defer c.states.SetSessionInProgress(false, "")

	// KernelRestarting: mandatory, so no interactive state leaks into the
	// run being recorded as reproducible. Best-effort bounded wait.
	waitStart := time.Now()
	c.kernels.RestartAndWaitIdle(ctx, nb.Kernel())
	c.metrics.KernelIdleWait.Observe(time.Since(waitStart).Seconds())

	// Executing: unbounded; only the kernel-idle wait above is bounded.
	c.states.SetRunning(true, operation)
	results, execErr := nb.RunAllCells(ctx)
	c.states.SetRunning(false, "")
	if execErr != nil {
		return c.abort(log, phaseExecuting, execErr)
	}

	// Verifying: re-save to persist output cells, then scan for error
	// outputs. One error fails the whole run; there is no partial credit.
	if err := nb.Save(ctx); err != nil {
		return c.abort(log, phaseVerifying, err)
	}
	if cellErr := firstCellError(results); cellErr != nil {
		c.metrics.RunsTotal.WithLabelValues(outcomeFailed).Inc()
		log.Warn("stage run failed", "cell", cellErr.CellIndex, "err", cellErr.Message)
		c.presenter.ShowError("Stage run failed", cellErr.Error())
		return cellErr
	}

	// Finalizing: pass the plan back verbatim.
	if err := c.store.FinalizeRunSession(ctx, nb.Path(), def.Name, plan); err != nil {
		return c.abort(log, phaseFinalizing, err)
	}
	if c.refresher != nil {
		c.refresher.RefreshPipelineStatus()
		c.refresher.RefreshNotebooks()
	}

	c.metrics.RunsTotal.WithLabelValues(outcomeSuccess).Inc()
	c.metrics.RunDuration.Observe(time.Since(started).Seconds())
	log.Info("stage run finalized", "duration", time.Since(started))
	return nil
}

// abort surfaces a failure, records it, and returns the wrapped error. The
// run lock and run-state flags unwind via the deferred handlers in
// RunStage.
func (c *Controller) abort(log *slog.Logger, phase runPhase, err error) error {
	c.metrics.RunsTotal.WithLabelValues(outcomeAborted).Inc()
	log.Warn("stage run aborted", "phase", string(phase), "err", err)
	c.presenter.ShowError("Stage run aborted", err.Error())
	return fmt.Errorf("%s: %w", phase, err)
}

func firstCellError(results []domain.CellResult) *domain.ExecutionError {
	for _, r := range results {
		if r.Error != nil {
			return &domain.ExecutionError{
				CellIndex: r.Index,
				Name:      r.Error.Name,
				Message:   r.Error.Message,
			}
		}
	}
	return nil
}

// IsStageStale polls the backend and reconciles its response into one
// boolean for the stage.
func (c *Controller) IsStageStale(ctx context.Context, stageName string) (bool, error) {
	status, err := c.store.PipelineStatus(ctx)
	if err != nil {
		return false, err
	}
	return staleness.IsStale(stageName, status), nil
}

// SaveStage validates and declares a stage definition, independent of any
// run. An unset kind defaults to jupyter-notebook.
func (c *Controller) SaveStage(ctx context.Context, nb ports.Notebook, def *domain.StageDefinition) error {
	if err := def.Validate(); err != nil {
		c.presenter.ShowError("Cannot save stage", err.Error())
		return err
	}
	if def.Kind == "" {
		def.Kind = domain.StageKindNotebook
	}
	return c.store.SaveStage(ctx, nb.Path(), def)
}

// logPresenter is the default ErrorPresenter for hosts that wire none: the
// message only reaches the log.
type logPresenter struct {
	logger *slog.Logger
}

func (p logPresenter) ShowError(title, message string) {
	p.logger.Error(title, "message", message)
}

var _ ports.ErrorPresenter = logPresenter{}

// normalizeDetection applies the Go-side path filter when a project root is
// configured.
func (c *Controller) normalizeDetection(res *domain.TraceResult) *domain.TraceResult {
	if res == nil || c.projectRoot == "" {
		return res
	}
	return trace.Normalize(res, c.projectRoot)
}
