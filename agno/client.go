// Copyright (c) Microsoft. All rights reserved.

package agno

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
)

// Client is the façade over transport, decoder, and reducer. It owns
// the configuration, the event emitter that bindings subscribe to, and
// the set of runs started through it.
//
// Create one with [New] and functional options:
//
//	client, err := agno.New("http://localhost:7777",
//	    agno.WithAgentID("generative-ui-demo"),
//	    agno.WithUserID("u-123"),
//	)
type Client struct {
	tp      transport
	emitter *Emitter

	mu     sync.Mutex
	cfg    Config
	runs   []*Run
	byID   map[string]*Run
	active *Run
}

// New creates a Client for the given AgentOS endpoint. The endpoint
// and the component id for the selected mode (agent by default) are
// required; everything else is optional.
func New(endpoint string, opts ...Option) (*Client, error) {
	cc := &clientConfig{cfg: Config{Mode: ModeAgent}}
	for _, opt := range opts {
		opt(cc)
	}
	if endpoint != "" {
		cc.cfg.Endpoint = endpoint
	}
	if err := cc.cfg.validate(); err != nil {
		return nil, err
	}
	if cc.credential != nil && len(cc.scopes) == 0 {
		return nil, fmt.Errorf("%w: credential scopes are required", ErrInvalidRequest)
	}
	return &Client{
		tp:      newHTTPTransport(cc),
		emitter: NewEmitter(),
		cfg:     cc.cfg.clone(),
		byID:    make(map[string]*Run),
	}, nil
}

// Events returns the client's emitter. Bindings subscribe with On/Once
// and detach with the returned functions; no other coupling exists.
func (c *Client) Events() *Emitter { return c.emitter }

// Config returns a copy of the current configuration. Never blocks.
func (c *Client) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.clone()
}

// SetSessionID switches the session runs are attributed to.
func (c *Client) SetSessionID(id string) {
	c.mu.Lock()
	c.cfg.SessionID = id
	cfg := c.cfg.clone()
	c.mu.Unlock()
	c.emitter.Emit(ConfigChange, cfg)
}

// SetUserID switches the user id attached to runs and session queries.
func (c *Client) SetUserID(id string) {
	c.mu.Lock()
	c.cfg.UserID = id
	cfg := c.cfg.clone()
	c.mu.Unlock()
	c.emitter.Emit(ConfigChange, cfg)
}

// Runs returns snapshots of every run started through this client,
// in start order. Never blocks.
func (c *Client) Runs() []*RunState {
	c.mu.Lock()
	runs := append([]*Run(nil), c.runs...)
	c.mu.Unlock()

	states := make([]*RunState, len(runs))
	for i, r := range runs {
		states[i] = r.red.Snapshot()
	}
	return states
}

// RunState returns a snapshot of the run with the given id.
func (c *Client) RunState(runID string) (*RunState, bool) {
	run, err := c.findRun(runID)
	if err != nil {
		return nil, false
	}
	return run.red.Snapshot(), true
}

// runRequest is the body of a run-creation request.
type runRequest struct {
	Message   string `json:"message"`
	Stream    bool   `json:"stream"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// continueRequest is the body of a run continuation request.
type continueRequest struct {
	Tools     []ToolResult `json:"tools"`
	Stream    bool         `json:"stream"`
	SessionID string       `json:"session_id,omitempty"`
	UserID    string       `json:"user_id,omitempty"`
}

// SendMessage starts a new run for content and returns its handle.
// It is rejected with [ErrRunActive] while a run started through this
// client is still Streaming or Paused: a paused run accepts only
// [Client.ContinueRun].
func (c *Client) SendMessage(ctx context.Context, content string, opts ...CallOption) (*Run, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidRequest)
	}

	c.mu.Lock()
	if c.active != nil && !c.active.red.Status().Terminal() {
		status := c.active.red.Status()
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: current run is %s", ErrRunActive, status)
	}
	cfg := c.cfg.clone()
	c.mu.Unlock()

	cc := resolveCallConfig(opts)
	sessionID := cfg.SessionID
	if cc.sessionID != "" {
		sessionID = cc.sessionID
	}
	userID := cfg.UserID
	if cc.userID != "" {
		userID = cc.userID
	}

	body := runRequest{Message: content, Stream: true, SessionID: sessionID, UserID: userID}
	path := fmt.Sprintf("%s/runs", c.componentPath(cfg))

	resp, err := c.tp.do(ctx, "POST", path, callQuery(cc), cc.headers, body, true)
	if err != nil {
		// Rejection of the initiating call is the error surface here;
		// no run state exists yet for a message:error emission.
		return nil, err
	}

	red := newReducer(c.emitter, sessionID)
	red.AddUserMessage(content)

	slog.DebugContext(ctx, "run started", "component", cfg.componentID(), "session_id", sessionID)

	run := &Run{client: c, red: red}
	run.attach(ctx, resp.Body)

	c.mu.Lock()
	c.runs = append(c.runs, run)
	c.active = run
	c.mu.Unlock()
	return run, nil
}

// ContinueRun resumes a paused run with the resolved tool results.
// Only a run in the Paused state accepts a continuation; anything else
// is rejected with [ErrNotPaused] before any transport call. An empty
// runID targets the client's current run.
func (c *Client) ContinueRun(ctx context.Context, runID string, results []ToolResult, opts ...CallOption) (*Run, error) {
	run, err := c.findRun(runID)
	if err != nil {
		return nil, err
	}
	if status := run.red.Status(); status != RunStatusPaused {
		return nil, fmt.Errorf("%w: run is %s", ErrNotPaused, status)
	}

	cfg := c.Config()
	cc := resolveCallConfig(opts)
	sessionID := run.red.Snapshot().SessionID
	if cc.sessionID != "" {
		sessionID = cc.sessionID
	}
	userID := cfg.UserID
	if cc.userID != "" {
		userID = cc.userID
	}

	body := continueRequest{Tools: results, Stream: true, SessionID: sessionID, UserID: userID}
	path := fmt.Sprintf("%s/runs/%s/continue", c.componentPath(cfg), url.PathEscape(run.ID()))

	resp, err := c.tp.do(ctx, "POST", path, callQuery(cc), cc.headers, body, true)
	if err != nil {
		return nil, err
	}

	run.red.Resume()
	run.attach(ctx, resp.Body)
	return run, nil
}

// CancelRun cancels a run from Streaming or Paused. The backend is
// notified best-effort; the local state reaches Cancelled either way.
// An empty runID targets the client's current run.
func (c *Client) CancelRun(ctx context.Context, runID string, opts ...CallOption) error {
	run, err := c.findRun(runID)
	if err != nil {
		return err
	}
	if status := run.red.Status(); status.Terminal() {
		return fmt.Errorf("%w: run already %s", ErrRunState, status)
	}

	cfg := c.Config()
	cc := resolveCallConfig(opts)
	if id := run.ID(); id != "" {
		path := fmt.Sprintf("%s/runs/%s/cancel", c.componentPath(cfg), url.PathEscape(id))
		if err := doJSON(ctx, c.tp, "POST", path, callQuery(cc), cc.headers, nil, nil); err != nil {
			slog.DebugContext(ctx, "backend cancel failed", "run_id", id, "error", err)
		}
	}

	run.mu.Lock()
	cancel := run.cancel
	run.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	run.red.Cancel("cancel requested")
	return nil
}

// findRun resolves a run id to its handle; empty targets the current run.
func (c *Client) findRun(runID string) (*Run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if runID == "" {
		if c.active == nil {
			return nil, fmt.Errorf("%w: no current run", ErrRunState)
		}
		return c.active, nil
	}
	if run, ok := c.byID[runID]; ok {
		return run, nil
	}
	// Ids arrive with the first frame; resolve late registrations.
	for _, run := range c.runs {
		if id := run.red.RunID(); id != "" {
			c.byID[id] = run
			if id == runID {
				return run, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: unknown run %q", ErrRunState, runID)
}

// componentPath returns the path prefix for the configured component.
func (c *Client) componentPath(cfg Config) string {
	if cfg.Mode == ModeTeam {
		return "/teams/" + url.PathEscape(cfg.TeamID)
	}
	return "/agents/" + url.PathEscape(cfg.AgentID)
}

// callQuery converts per-call params into query values; global params
// are merged by the transport with per-call precedence.
func callQuery(cc *callConfig) url.Values {
	if len(cc.params) == 0 {
		return nil
	}
	q := url.Values{}
	for k, v := range cc.params {
		q.Set(k, v)
	}
	return q
}
