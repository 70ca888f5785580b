// Package redis provides a redis-backed run locker for deployments where
// several clients (e.g. a JupyterHub) may target the same project.
package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/calkit/nbstage/pkg/domain"
	"github.com/calkit/nbstage/pkg/ports"
)

// DefaultTTL guards against locks orphaned by a crashed client. A run that
// outlives the TTL loses its lock; the backend session protocol tolerates
// that the same way it tolerates dangling sessions.
const DefaultTTL = 30 * time.Minute

// Locker implements ports.RunLocker using Redis SET NX PX. Acquisition is a
// single attempt: contended locks reject with ErrRunInProgress rather than
// polling, matching the in-process locker's semantics.
type Locker struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// NewLocker creates a Redis run locker. The prefix namespaces lock keys per
// project.
func NewLocker(client *backend.Client, prefix string, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Locker{client: client, prefix: prefix, ttl: ttl}
}

// Acquire takes the run lock for notebookPath, recording the holder token
// as the value so only the holder can release it.
func (l *Locker) Acquire(ctx context.Context, notebookPath, token string) (ports.UnlockFunc, error) {
	key := l.prefix + "runlock:" + notebookPath

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error acquiring run lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrRunInProgress
	}

	return func(ctx context.Context) error {
		// Value-checked release so an expired-and-reacquired lock is never
		// deleted by the old holder.
		script := `
			if redis.call("get", KEYS[1]) == ARGV[1] then
				return redis.call("del", KEYS[1])
			else
				return 0
			end
		`
		return l.client.Eval(ctx, script, []string{key}, token).Err()
	}, nil
}

var _ ports.RunLocker = (*Locker)(nil)
