package kernel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/calkit/nbstage/internal/testutils"
	"github.com/calkit/nbstage/pkg/domain"
)

func TestRestartAndWaitIdle_AlreadyIdle(t *testing.T) {
	k := testutils.NewFakeKernel("python", domain.KernelRestarting)
	k.IdleAfter = time.Nanosecond // effectively immediate

	m := NewManager(WithIdleTimeout(5 * time.Second))

	// The fake flips back to idle almost instantly after restart; if Status
	// reads idle before the subscription path, we return without waiting.
	start := time.Now()
	m.RestartAndWaitIdle(context.Background(), k)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, k.Restarts)
}

func TestRestartAndWaitIdle_ResolvesOnIdleTransition(t *testing.T) {
	k := testutils.NewFakeKernel("python", domain.KernelBusy)
	k.IdleAfter = 200 * time.Millisecond

	m := NewManager(WithIdleTimeout(5 * time.Second))

	start := time.Now()
	m.RestartAndWaitIdle(context.Background(), k)
	elapsed := time.Since(start)

	// Resolves at ~200ms, not at the 5s bound.
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
	assert.Equal(t, domain.KernelIdle, k.Status())
}

func TestRestartAndWaitIdle_TimeoutResolvesSilently(t *testing.T) {
	k := testutils.NewFakeKernel("python", domain.KernelBusy) // never goes idle

	m := NewManager(WithIdleTimeout(100 * time.Millisecond))

	start := time.Now()
	m.RestartAndWaitIdle(context.Background(), k)
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, time.Second, "wait must resolve within timeout + epsilon")
}

func TestRestartAndWaitIdle_UnsubscribesOnEveryPath(t *testing.T) {
	t.Run("timeout path", func(t *testing.T) {
		k := testutils.NewFakeKernel("python", domain.KernelBusy)
		m := NewManager(WithIdleTimeout(50 * time.Millisecond))
		m.RestartAndWaitIdle(context.Background(), k)
		assert.Equal(t, k.Subscribed, k.Unsubscribed)
	})

	t.Run("idle path", func(t *testing.T) {
		k := testutils.NewFakeKernel("python", domain.KernelBusy)
		k.IdleAfter = 20 * time.Millisecond
		m := NewManager(WithIdleTimeout(5 * time.Second))
		m.RestartAndWaitIdle(context.Background(), k)
		assert.Equal(t, k.Subscribed, k.Unsubscribed)
	})
}

func TestRestartAndWaitIdle_RestartErrorDoesNotFail(t *testing.T) {
	k := testutils.NewFakeKernel("python", domain.KernelBusy)
	k.RestartErr = errors.New("kernel gone")

	m := NewManager(WithIdleTimeout(50 * time.Millisecond))

	// Must not panic or error; timeout path resolves.
	m.RestartAndWaitIdle(context.Background(), k)
}

func TestRestartAndWaitIdle_ContextCancel(t *testing.T) {
	k := testutils.NewFakeKernel("python", domain.KernelBusy)

	m := NewManager(WithIdleTimeout(10 * time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	m.RestartAndWaitIdle(ctx, k)
	assert.Less(t, time.Since(start), time.Second)
}
