// Package testutils provides in-memory fakes for the driven ports, shared
// by the controller and adapter tests.
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/calkit/nbstage/pkg/domain"
	"github.com/calkit/nbstage/pkg/ports"
)

// FakeKernel is a scriptable ports.Kernel.
type FakeKernel struct {
	mu       sync.Mutex
	status   domain.KernelStatus
	language string
	subs     map[chan domain.KernelStatus]struct{}

	RestartErr error
	Restarts   int
	// IdleAfter, when positive, moves the kernel to idle that long after a
	// restart, emulating an interpreter that comes back on its own clock.
	IdleAfter time.Duration

	Subscribed   int
	Unsubscribed int
}

// NewFakeKernel creates a kernel in the given state.
func NewFakeKernel(language string, status domain.KernelStatus) *FakeKernel {
	return &FakeKernel{
		status:   status,
		language: language,
		subs:     make(map[chan domain.KernelStatus]struct{}),
	}
}

// SetStatus transitions the kernel and notifies subscribers.
func (k *FakeKernel) SetStatus(status domain.KernelStatus) {
	k.mu.Lock()
	k.status = status
	var targets []chan domain.KernelStatus
	for ch := range k.subs {
		targets = append(targets, ch)
	}
	k.mu.Unlock()
	for _, ch := range targets {
		select {
		case ch <- status:
		default:
		}
	}
}

func (k *FakeKernel) Status() domain.KernelStatus {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.status
}

func (k *FakeKernel) Restart(ctx context.Context) error {
	k.mu.Lock()
	k.Restarts++
	err := k.RestartErr
	if err == nil {
		k.status = domain.KernelRestarting
	}
	after := k.IdleAfter
	k.mu.Unlock()

	if err == nil && after > 0 {
		go func() {
			time.Sleep(after)
			k.SetStatus(domain.KernelIdle)
		}()
	}
	return err
}

func (k *FakeKernel) StatusChanges() (<-chan domain.KernelStatus, func()) {
	ch := make(chan domain.KernelStatus, 8)
	k.mu.Lock()
	k.subs[ch] = struct{}{}
	k.Subscribed++
	k.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			k.mu.Lock()
			delete(k.subs, ch)
			k.Unsubscribed++
			k.mu.Unlock()
			close(ch)
		})
	}
}

func (k *FakeKernel) Language() string { return k.language }

var _ ports.Kernel = (*FakeKernel)(nil)

// FakeNotebook is a scriptable ports.Notebook.
type FakeNotebook struct {
	NotebookPath string
	K            *FakeKernel

	SaveErr error
	Saves   int

	RunResults []domain.CellResult
	RunErr     error
	Runs       int

	// ExecuteFn handles silent code evaluation; nil returns an empty result.
	ExecuteFn func(code string) (*domain.ExecuteResult, error)
	Executed  []string
}

func (n *FakeNotebook) Path() string { return n.NotebookPath }

func (n *FakeNotebook) Save(ctx context.Context) error {
	n.Saves++
	return n.SaveErr
}

func (n *FakeNotebook) RunAllCells(ctx context.Context) ([]domain.CellResult, error) {
	n.Runs++
	return n.RunResults, n.RunErr
}

func (n *FakeNotebook) Execute(ctx context.Context, code string) (*domain.ExecuteResult, error) {
	n.Executed = append(n.Executed, code)
	if n.ExecuteFn != nil {
		return n.ExecuteFn(code)
	}
	return &domain.ExecuteResult{}, nil
}

func (n *FakeNotebook) Kernel() ports.Kernel { return n.K }

var _ ports.Notebook = (*FakeNotebook)(nil)

// FakeStore is a scriptable ports.PipelineStore.
type FakeStore struct {
	Plan        *domain.RunSessionPlan
	OpenErr     error
	Opens       int
	FinalizeErr error
	Finalizes   int
	// FinalizedPlan records the plan passed at finalize time.
	FinalizedPlan *domain.RunSessionPlan

	Status    map[string]any
	StatusErr error

	Inputs    []string
	Outputs   []string
	DetectErr error

	SavedStages []*domain.StageDefinition
}

func (s *FakeStore) OpenRunSession(ctx context.Context, notebookPath, stageName string) (*domain.RunSessionPlan, error) {
	s.Opens++
	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	return s.Plan, nil
}

func (s *FakeStore) FinalizeRunSession(ctx context.Context, notebookPath, stageName string, plan *domain.RunSessionPlan) error {
	s.Finalizes++
	s.FinalizedPlan = plan
	return s.FinalizeErr
}

func (s *FakeStore) DetectInputs(ctx context.Context, notebookPath string) ([]string, error) {
	return s.Inputs, s.DetectErr
}

func (s *FakeStore) DetectOutputs(ctx context.Context, notebookPath string) ([]string, error) {
	return s.Outputs, s.DetectErr
}

func (s *FakeStore) PipelineStatus(ctx context.Context) (map[string]any, error) {
	return s.Status, s.StatusErr
}

func (s *FakeStore) SaveStage(ctx context.Context, notebookPath string, def *domain.StageDefinition) error {
	s.SavedStages = append(s.SavedStages, def)
	return nil
}

var _ ports.PipelineStore = (*FakeStore)(nil)

// FakePresenter records user-visible errors.
type FakePresenter struct {
	mu     sync.Mutex
	Errors []string
}

func (p *FakePresenter) ShowError(title, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Errors = append(p.Errors, title+": "+message)
}

// FakeRefresher counts cache invalidations.
type FakeRefresher struct {
	StatusRefreshes   int
	NotebookRefreshes int
}

func (r *FakeRefresher) RefreshPipelineStatus() { r.StatusRefreshes++ }
func (r *FakeRefresher) RefreshNotebooks()      { r.NotebookRefreshes++ }
