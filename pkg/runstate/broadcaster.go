// Package runstate holds the shared "is a run active" state observed by UI
// surfaces. One Broadcaster is created per client process and passed by
// reference to every consumer at construction time; there is no ambient
// global lookup.
package runstate

import (
	"sync"

	"github.com/calkit/nbstage/pkg/domain"
)

// Listener receives the new state after every mutation.
type Listener func(domain.RunState)

// Broadcaster is a synchronous publish/subscribe holder for domain.RunState.
// Mutations that do not change the state are no-ops. Every effective
// mutation notifies all current subscribers in registration order before the
// mutating call returns; there is no batching.
//
// Listeners MUST NOT mutate or subscribe/unsubscribe the Broadcaster from
// within their callback; doing so panics.
type Broadcaster struct {
	mu        sync.Mutex
	state     domain.RunState
	subs      []*subscription
	notifying bool
}

type subscription struct {
	fn Listener
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// GetState returns the current snapshot.
func (b *Broadcaster) GetState() domain.RunState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// SetRunning updates the cell-execution flag and operation label.
func (b *Broadcaster) SetRunning(running bool, operation string) {
	b.mutate(func(s *domain.RunState) {
		s.Running = running
		s.Operation = operation
	})
}

// SetSessionInProgress updates the session flag and operation label.
func (b *Broadcaster) SetSessionInProgress(inProgress bool, operation string) {
	b.mutate(func(s *domain.RunState) {
		s.SessionInProgress = inProgress
		s.Operation = operation
	})
}

// Subscribe registers a listener and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (b *Broadcaster) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.notifying {
		panic("runstate: Subscribe called from within a listener callback")
	}
	sub := &subscription{fn: fn}
	b.subs = append(b.subs, sub)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.notifying {
			panic("runstate: unsubscribe called from within a listener callback")
		}
		for i, s := range b.subs {
			if s == sub {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

func (b *Broadcaster) mutate(apply func(*domain.RunState)) {
	b.mu.Lock()
	if b.notifying {
		b.mu.Unlock()
		panic("runstate: mutation from within a listener callback")
	}
	next := b.state
	apply(&next)
	if next == b.state {
		b.mu.Unlock()
		return
	}
	b.state = next
	// Snapshot under the lock; notify synchronously in registration order.
	subs := make([]*subscription, len(b.subs))
	copy(subs, b.subs)
	b.notifying = true
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(next)
	}

	b.mu.Lock()
	b.notifying = false
	b.mu.Unlock()
}
