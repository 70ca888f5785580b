package jupyter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calkit/nbstage/pkg/domain"
)

// fakeJupyter serves the kernel endpoints the adapter consumes.
type fakeJupyter struct {
	mu       sync.Mutex
	state    string
	name     string
	restarts int
	auth     []string
}

func (f *fakeJupyter) setState(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = s
}

func (f *fakeJupyter) handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/kernels/{id}", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.auth = append(f.auth, req.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{
			"id":              chi.URLParam(req, "id"),
			"name":            f.name,
			"execution_state": f.state,
		})
	})
	r.Post("/api/kernels/{id}/restart", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.restarts++
		f.state = "starting"
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestKernel_StatusAndLanguage(t *testing.T) {
	fake := &fakeJupyter{state: "idle", name: "python3"}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := NewClient(srv.URL, WithToken("tok"))
	k, err := c.Kernel(context.Background(), "abc-123")
	require.NoError(t, err)

	assert.Equal(t, "python", k.Language())
	assert.Equal(t, domain.KernelIdle, k.Status())

	fake.setState("busy")
	assert.Equal(t, domain.KernelBusy, k.Status())

	// Jupyter token auth header on every request.
	for _, h := range fake.auth {
		assert.Equal(t, "token tok", h)
	}
}

func TestKernel_Restart(t *testing.T) {
	fake := &fakeJupyter{state: "idle", name: "ir"}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := NewClient(srv.URL)
	k, err := c.Kernel(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "r", k.Language())

	require.NoError(t, k.Restart(context.Background()))
	assert.Equal(t, 1, fake.restarts)
	assert.Equal(t, domain.KernelRestarting, k.Status())
}

func TestKernel_StatusChangesEmitsTransitions(t *testing.T) {
	fake := &fakeJupyter{state: "busy", name: "python3"}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := NewClient(srv.URL)
	k, err := c.Kernel(context.Background(), "abc", WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)

	changes, cancel := k.StatusChanges()
	defer cancel()

	fake.setState("idle")

	select {
	case status := <-changes:
		assert.Equal(t, domain.KernelIdle, status)
	case <-time.After(2 * time.Second):
		t.Fatal("no status transition observed")
	}
}

func TestKernel_StatusChangesCancelClosesChannel(t *testing.T) {
	fake := &fakeJupyter{state: "idle", name: "python3"}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := NewClient(srv.URL)
	k, err := c.Kernel(context.Background(), "abc", WithPollInterval(10*time.Millisecond))
	require.NoError(t, err)

	changes, cancel := k.StatusChanges()
	cancel()
	cancel() // idempotent

	select {
	case _, open := <-changes:
		assert.False(t, open, "channel must close after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close")
	}
}

func TestKernel_StatusFetchFailureKeepsLastObserved(t *testing.T) {
	fake := &fakeJupyter{state: "idle", name: "python3"}
	srv := httptest.NewServer(fake.handler())

	c := NewClient(srv.URL)
	k, err := c.Kernel(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, domain.KernelIdle, k.Status())

	srv.Close()
	assert.Equal(t, domain.KernelIdle, k.Status(), "transport failure reports last observed status")
}

func TestMapState(t *testing.T) {
	cases := map[string]domain.KernelStatus{
		"idle":           domain.KernelIdle,
		"busy":           domain.KernelBusy,
		"starting":       domain.KernelRestarting,
		"restarting":     domain.KernelRestarting,
		"autorestarting": domain.KernelRestarting,
		"dead":           domain.KernelDead,
		"mystery":        domain.KernelUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, mapState(in), "state %q", in)
	}
}
