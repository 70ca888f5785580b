package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "github.com/calkit/nbstage/pkg/adapters/redis"
	"github.com/calkit/nbstage/pkg/domain"
)

func setup(t *testing.T) (*miniredis.Miniredis, *redisadapter.Locker) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return mr, redisadapter.NewLocker(client, "nbstage:", 5*time.Second)
}

func TestLocker_AcquireRelease(t *testing.T) {
	mr, locker := setup(t)
	ctx := context.Background()

	unlock, err := locker.Acquire(ctx, "notebooks/process.ipynb", "run-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("nbstage:runlock:notebooks/process.ipynb"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("nbstage:runlock:notebooks/process.ipynb"))
}

func TestLocker_ContentionRejectsImmediately(t *testing.T) {
	_, locker := setup(t)
	ctx := context.Background()

	unlock, err := locker.Acquire(ctx, "nb.ipynb", "run-1")
	require.NoError(t, err)

	start := time.Now()
	_, err = locker.Acquire(ctx, "nb.ipynb", "run-2")
	assert.ErrorIs(t, err, domain.ErrRunInProgress)
	assert.Less(t, time.Since(start), time.Second, "contended acquire must not poll")

	require.NoError(t, unlock(ctx))
	_, err = locker.Acquire(ctx, "nb.ipynb", "run-2")
	assert.NoError(t, err)
}

func TestLocker_ValueCheckedRelease(t *testing.T) {
	mr, locker := setup(t)
	ctx := context.Background()

	unlock1, err := locker.Acquire(ctx, "nb.ipynb", "run-1")
	require.NoError(t, err)

	// Simulate TTL expiry followed by another client's acquisition.
	mr.FastForward(10 * time.Second)
	_, err = locker.Acquire(ctx, "nb.ipynb", "run-2")
	require.NoError(t, err)

	// The first holder's release must not delete run-2's lock.
	require.NoError(t, unlock1(ctx))
	assert.True(t, mr.Exists("nbstage:runlock:nb.ipynb"))
}
