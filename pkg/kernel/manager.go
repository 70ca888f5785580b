// Package kernel manages interpreter lifecycle around stage runs: a
// mandatory restart followed by a bounded, best-effort wait for idle.
package kernel

import (
	"context"
	"log/slog"
	"time"

	"github.com/calkit/nbstage/internal/logging"
	"github.com/calkit/nbstage/pkg/domain"
	"github.com/calkit/nbstage/pkg/ports"
)

// DefaultIdleTimeout bounds the wait for a restarted kernel to report idle.
const DefaultIdleTimeout = 5 * time.Second

// Manager restarts kernels and waits for them to become ready.
type Manager struct {
	idleTimeout time.Duration
	logger      *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithIdleTimeout overrides the bounded idle wait.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.idleTimeout = d
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager with the default idle timeout.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		idleTimeout: DefaultIdleTimeout,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RestartAndWaitIdle restarts the kernel and waits until it reports idle or
// the idle timeout elapses, whichever comes first. It never fails the
// caller: a restart request error and a timeout are both logged and the run
// proceeds optimistically. The status subscription is always released before
// returning.
func (m *Manager) RestartAndWaitIdle(ctx context.Context, k ports.Kernel) {
	if err := k.Restart(ctx); err != nil {
		m.logger.Warn("kernel restart request failed; proceeding", "err", err)
	}

	if k.Status() == domain.KernelIdle {
		return
	}

	changes, cancel := k.StatusChanges()
	defer cancel()

	timer := time.NewTimer(m.idleTimeout)
	defer timer.Stop()

	for {
		select {
		case status, ok := <-changes:
			if !ok {
				return
			}
			if status == domain.KernelIdle {
				return
			}
		case <-timer.C:
			m.logger.Warn("kernel did not report idle within timeout; proceeding",
				"timeout", m.idleTimeout,
			)
			return
		case <-ctx.Done():
			return
		}
	}
}
