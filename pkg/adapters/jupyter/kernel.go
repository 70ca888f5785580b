// Package jupyter implements ports.Kernel over the Jupyter Server REST API.
//
// The REST API covers kernel lifecycle (status, restart) but not code
// execution, which runs on the host frontend's websocket channel; execution
// therefore stays on the Notebook port. Status-change notifications are
// derived by polling, since the status websocket also belongs to the
// frontend.
package jupyter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/calkit/nbstage/internal/logging"
	"github.com/calkit/nbstage/pkg/domain"
	"github.com/calkit/nbstage/pkg/ports"
)

// DefaultPollInterval is the status polling period for StatusChanges.
const DefaultPollInterval = 250 * time.Millisecond

// Client talks to one Jupyter Server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithToken sets the Jupyter API token.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Jupyter Server client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type kernelModel struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ExecutionState string `json:"execution_state"`
}

// Kernel is an observed Jupyter kernel.
type Kernel struct {
	client       *Client
	id           string
	language     string
	pollInterval time.Duration

	mu   sync.Mutex
	last domain.KernelStatus
}

// KernelOption configures a Kernel.
type KernelOption func(*Kernel)

// WithPollInterval overrides the status polling period.
func WithPollInterval(d time.Duration) KernelOption {
	return func(k *Kernel) {
		if d > 0 {
			k.pollInterval = d
		}
	}
}

// Kernel binds to an existing kernel by ID, fetching its model once to
// learn the language.
func (c *Client) Kernel(ctx context.Context, id string, opts ...KernelOption) (*Kernel, error) {
	model, err := c.getKernel(ctx, id)
	if err != nil {
		return nil, err
	}
	k := &Kernel{
		client:       c,
		id:           id,
		language:     languageFromSpec(model.Name),
		pollInterval: DefaultPollInterval,
		last:         mapState(model.ExecutionState),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// Status fetches the current execution state. Transport failures report the
// last observed status rather than erroring; the kernel is observed, never
// owned.
func (k *Kernel) Status() domain.KernelStatus {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	model, err := k.client.getKernel(ctx, k.id)

	k.mu.Lock()
	defer k.mu.Unlock()
	if err != nil {
		k.client.logger.Debug("kernel status fetch failed", "kernel", k.id, "err", err)
		return k.last
	}
	k.last = mapState(model.ExecutionState)
	return k.last
}

// Restart asks the server to restart the kernel process.
func (k *Kernel) Restart(ctx context.Context) error {
	req, err := k.client.newRequest(ctx, http.MethodPost, "/api/kernels/"+k.id+"/restart", nil)
	if err != nil {
		return err
	}
	resp, err := k.client.http.Do(req)
	if err != nil {
		return fmt.Errorf("kernel restart: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("kernel restart: HTTP %d", resp.StatusCode)
	}
	return nil
}

// StatusChanges polls the kernel model and emits each observed transition.
// Cancel stops the poller and closes the channel.
func (k *Kernel) StatusChanges() (<-chan domain.KernelStatus, func()) {
	ch := make(chan domain.KernelStatus, 8)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() { close(done) })
	}

	go func() {
		defer close(ch)
		ticker := time.NewTicker(k.pollInterval)
		defer ticker.Stop()
		last := k.Status()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				status := k.Status()
				if status == last {
					continue
				}
				last = status
				select {
				case ch <- status:
				case <-done:
					return
				}
			}
		}
	}()

	return ch, cancel
}

// Language returns the kernel language inferred from its spec name.
func (k *Kernel) Language() string {
	return k.language
}

func (c *Client) getKernel(ctx context.Context, id string) (*kernelModel, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/kernels/"+id, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jupyter server unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("get kernel %s: HTTP %d", id, resp.StatusCode)
	}
	var model kernelModel
	if err := json.NewDecoder(resp.Body).Decode(&model); err != nil {
		return nil, fmt.Errorf("decode kernel model: %w", err)
	}
	return &model, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	return req, nil
}

func mapState(state string) domain.KernelStatus {
	switch state {
	case "idle":
		return domain.KernelIdle
	case "busy":
		return domain.KernelBusy
	case "starting", "restarting", "autorestarting":
		return domain.KernelRestarting
	case "dead":
		return domain.KernelDead
	default:
		return domain.KernelUnknown
	}
}

// languageFromSpec maps a kernel spec name like "python3", "ir", or
// "julia-1.11" to a language name the trace strategies understand.
func languageFromSpec(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.HasPrefix(n, "python"):
		return "python"
	case strings.HasPrefix(n, "ir"):
		return "r"
	case strings.HasPrefix(n, "julia"):
		return "julia"
	default:
		return n
	}
}

var _ ports.Kernel = (*Kernel)(nil)
