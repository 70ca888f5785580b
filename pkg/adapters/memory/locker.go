// Package memory provides the in-process run locker used by single-client
// deployments (one frontend per project checkout).
package memory

import (
	"context"
	"sync"

	"github.com/calkit/nbstage/pkg/domain"
	"github.com/calkit/nbstage/pkg/ports"
)

// Locker implements ports.RunLocker with a per-path map. Acquisition is
// single-shot: a held lock rejects immediately with ErrRunInProgress.
type Locker struct {
	mu      sync.Mutex
	holders map[string]string // notebook path -> holder token
}

// NewLocker creates an empty in-process locker.
func NewLocker() *Locker {
	return &Locker{holders: make(map[string]string)}
}

// Acquire takes the run lock for notebookPath or fails with
// domain.ErrRunInProgress.
func (l *Locker) Acquire(ctx context.Context, notebookPath, token string) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.holders[notebookPath]; held {
		return nil, domain.ErrRunInProgress
	}
	l.holders[notebookPath] = token

	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// Only the recorded holder may release; a stale unlock after a
		// re-acquisition must not free someone else's lock.
		if l.holders[notebookPath] == token {
			delete(l.holders, notebookPath)
		}
		return nil
	}, nil
}

// Held reports whether a run lock is currently held for the path.
func (l *Locker) Held(notebookPath string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, held := l.holders[notebookPath]
	return held
}

var _ ports.RunLocker = (*Locker)(nil)
