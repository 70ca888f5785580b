// Package rest implements ports.PipelineStore over the backend's JSON HTTP
// API. The client is deliberately thin: no retries, no caching, and the
// run-session lock fields pass through as raw JSON.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/calkit/nbstage/internal/logging"
	"github.com/calkit/nbstage/pkg/domain"
	"github.com/calkit/nbstage/pkg/ports"
)

// DefaultTimeout applies to every request. Cell execution never flows
// through this client, so a generous but bounded timeout is safe.
const DefaultTimeout = 2 * time.Minute

// Client talks to one backend pipeline store.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a pipeline-store client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type runSessionRequest struct {
	NotebookPath string          `json:"notebook_path"`
	StageName    string          `json:"stage_name"`
	DVCStage     json.RawMessage `json:"dvc_stage,omitempty"`
	LockDeps     json.RawMessage `json:"lock_deps,omitempty"`
	LockOuts     json.RawMessage `json:"lock_outs,omitempty"`
}

// OpenRunSession opens a run session and returns the backend-issued plan.
func (c *Client) OpenRunSession(ctx context.Context, notebookPath, stageName string) (*domain.RunSessionPlan, error) {
	var plan domain.RunSessionPlan
	body := runSessionRequest{NotebookPath: notebookPath, StageName: stageName}
	if err := c.do(ctx, http.MethodPost, "/notebook/stage/run/session", body, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// FinalizeRunSession commits the session using the exact plan from open.
func (c *Client) FinalizeRunSession(ctx context.Context, notebookPath, stageName string, plan *domain.RunSessionPlan) error {
	if plan == nil {
		return domain.ErrNoSession
	}
	body := runSessionRequest{
		NotebookPath: notebookPath,
		StageName:    stageName,
		DVCStage:     plan.DVCStage,
		LockDeps:     plan.LockDeps,
		LockOuts:     plan.LockOuts,
	}
	return c.do(ctx, http.MethodPut, "/notebook/stage/run/session", body, nil)
}

// DetectInputs asks the backend to infer input paths for a notebook.
func (c *Client) DetectInputs(ctx context.Context, notebookPath string) ([]string, error) {
	var out struct {
		Inputs []string `json:"inputs"`
	}
	body := map[string]string{"path": notebookPath}
	if err := c.do(ctx, http.MethodPost, "/notebook/detect-inputs", body, &out); err != nil {
		return nil, err
	}
	return out.Inputs, nil
}

// DetectOutputs asks the backend to infer output paths for a notebook.
func (c *Client) DetectOutputs(ctx context.Context, notebookPath string) ([]string, error) {
	var out struct {
		Outputs []string `json:"outputs"`
	}
	body := map[string]string{"path": notebookPath}
	if err := c.do(ctx, http.MethodPost, "/notebook/detect-outputs", body, &out); err != nil {
		return nil, err
	}
	return out.Outputs, nil
}

// PipelineStatus fetches the raw pipeline status document.
func (c *Client) PipelineStatus(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/pipeline/status", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type stageRequest struct {
	Path                 string              `json:"path"`
	StageName            string              `json:"stage_name"`
	Environment          string              `json:"environment"`
	Kind                 domain.StageKind    `json:"kind"`
	Inputs               []string            `json:"inputs"`
	Outputs              []domain.OutputSpec `json:"outputs"`
	ExecutedIpynbStorage domain.StorageClass `json:"executed_ipynb_storage,omitempty"`
	HTMLStorage          domain.StorageClass `json:"html_storage,omitempty"`
}

// SaveStage declares or updates a stage definition for a notebook.
func (c *Client) SaveStage(ctx context.Context, notebookPath string, def *domain.StageDefinition) error {
	body := stageRequest{
		Path:                 notebookPath,
		StageName:            def.Name,
		Environment:          def.Environment,
		Kind:                 def.Kind,
		Inputs:               def.Inputs,
		Outputs:              def.Outputs,
		ExecutedIpynbStorage: def.ExecutedNotebookStorage,
		HTMLStorage:          def.HTMLStorage,
	}
	return c.do(ctx, http.MethodPut, "/notebook/stage", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("pipeline store request", "method", method, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("pipeline store unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.errorFrom(resp, method, path)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// errorFrom extracts the backend's error message for user display. The
// backend reports either {"detail": ...} or {"message": ...}.
func (c *Client) errorFrom(resp *http.Response, method, path string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Detail != "" {
			msg = payload.Detail
		} else if payload.Message != "" {
			msg = payload.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	c.logger.Warn("pipeline store error",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"msg", msg,
	)
	return fmt.Errorf("%s (HTTP %d)", msg, resp.StatusCode)
}

var _ ports.PipelineStore = (*Client)(nil)
