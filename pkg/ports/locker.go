package ports

import "context"

// UnlockFunc releases a held run lock.
type UnlockFunc func(ctx context.Context) error

// RunLocker provides per-notebook mutual exclusion for stage runs. The
// session protocol assumes serialized access per notebook, so a second
// acquisition while one is held is rejected with domain.ErrRunInProgress
// rather than queued.
type RunLocker interface {
	// Acquire takes the run lock for the given notebook path. The token is
	// an opaque holder identity (e.g. a run ID) recorded with the lock.
	// Returns an UnlockFunc that MUST be called on every exit path.
	Acquire(ctx context.Context, notebookPath, token string) (UnlockFunc, error)
}
