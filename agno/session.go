// Copyright (c) Microsoft. All rights reserved.

package agno

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Session CRUD. Each operation issues one buffered transport call and
// maps the backend schema onto the typed result; failures surface as
// returned errors without mutating shared state.

// FetchSessions lists the stored sessions of the configured component.
func (c *Client) FetchSessions(ctx context.Context, opts ...CallOption) ([]*SessionEntry, error) {
	cfg := c.Config()
	cc := resolveCallConfig(opts)

	q := url.Values{}
	q.Set("type", string(cfg.Mode))
	q.Set("component_id", cfg.componentID())
	if userID := pick(cc.userID, cfg.UserID); userID != "" {
		q.Set("user_id", userID)
	}
	for k, v := range cc.params {
		q.Set(k, v)
	}

	var out struct {
		Sessions []*SessionEntry `json:"data"`
	}
	if err := doJSON(ctx, c.tp, "GET", "/sessions", q, cc.headers, nil, &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// GetSession fetches one session with its stored runs.
func (c *Client) GetSession(ctx context.Context, sessionID string, opts ...CallOption) (*SessionDetail, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrInvalidRequest)
	}
	cfg := c.Config()
	cc := resolveCallConfig(opts)

	q := sessionQuery(cfg, cc)
	var detail SessionDetail
	path := "/sessions/" + url.PathEscape(sessionID)
	if err := doJSON(ctx, c.tp, "GET", path, q, cc.headers, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// LoadSession fetches a session, makes it the client's current session,
// and replays its stored runs for subscribers: session:loaded carries
// the detail, message:refreshed the reconstructed messages.
func (c *Client) LoadSession(ctx context.Context, sessionID string, opts ...CallOption) (*SessionDetail, error) {
	detail, err := c.GetSession(ctx, sessionID, opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cfg.SessionID = detail.SessionID
	c.mu.Unlock()

	c.emitter.Emit(SessionLoaded, detail)
	c.emitter.Emit(MessageRefreshed, detail.Messages())
	return detail, nil
}

// GetRun fetches one stored run of a session.
func (c *Client) GetRun(ctx context.Context, sessionID, runID string, opts ...CallOption) (*StoredRun, error) {
	if sessionID == "" || runID == "" {
		return nil, fmt.Errorf("%w: session id and run id are required", ErrInvalidRequest)
	}
	cfg := c.Config()
	cc := resolveCallConfig(opts)

	var run StoredRun
	path := "/sessions/" + url.PathEscape(sessionID) + "/runs/" + url.PathEscape(runID)
	if err := doJSON(ctx, c.tp, "GET", path, sessionQuery(cfg, cc), cc.headers, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// CreateSession creates a session with the given display name.
func (c *Client) CreateSession(ctx context.Context, name string, opts ...CallOption) (*SessionEntry, error) {
	cfg := c.Config()
	cc := resolveCallConfig(opts)

	body := map[string]any{
		"session_name": name,
		"type":         string(cfg.Mode),
		"component_id": cfg.componentID(),
	}
	if userID := pick(cc.userID, cfg.UserID); userID != "" {
		body["user_id"] = userID
	}

	var entry SessionEntry
	if err := doJSON(ctx, c.tp, "POST", "/sessions", callQuery(cc), cc.headers, body, &entry); err != nil {
		return nil, err
	}
	c.emitter.Emit(SessionCreated, &entry)
	return &entry, nil
}

// UpdateSession patches arbitrary fields of a session.
func (c *Client) UpdateSession(ctx context.Context, sessionID string, fields map[string]any, opts ...CallOption) (*SessionEntry, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrInvalidRequest)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidRequest)
	}
	cc := resolveCallConfig(opts)

	var entry SessionEntry
	path := "/sessions/" + url.PathEscape(sessionID)
	if err := doJSON(ctx, c.tp, "PATCH", path, callQuery(cc), cc.headers, fields, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// RenameSession changes a session's display name.
func (c *Client) RenameSession(ctx context.Context, sessionID, name string, opts ...CallOption) (*SessionEntry, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty session name", ErrInvalidRequest)
	}
	return c.UpdateSession(ctx, sessionID, map[string]any{"session_name": name}, opts...)
}

// DeleteSession deletes one session.
func (c *Client) DeleteSession(ctx context.Context, sessionID string, opts ...CallOption) error {
	if sessionID == "" {
		return fmt.Errorf("%w: empty session id", ErrInvalidRequest)
	}
	cc := resolveCallConfig(opts)
	path := "/sessions/" + url.PathEscape(sessionID)
	return doJSON(ctx, c.tp, "DELETE", path, callQuery(cc), cc.headers, nil, nil)
}

// DeleteSessions deletes several sessions in one call.
func (c *Client) DeleteSessions(ctx context.Context, sessionIDs []string, opts ...CallOption) error {
	if len(sessionIDs) == 0 {
		return fmt.Errorf("%w: no session ids", ErrInvalidRequest)
	}
	cc := resolveCallConfig(opts)
	body := map[string]any{"session_ids": sessionIDs}
	return doJSON(ctx, c.tp, "DELETE", "/sessions", callQuery(cc), cc.headers, body, nil)
}

// Messages reconstructs the conversation of a stored session from its
// runs, oldest first, for display and for seeding bindings.
func (d *SessionDetail) Messages() []*ChatMessage {
	var msgs []*ChatMessage
	for _, run := range d.Runs {
		created := time.Unix(run.CreatedAt, 0)
		if run.Input != "" {
			msgs = append(msgs, &ChatMessage{
				ID:        run.RunID + ":user",
				Role:      RoleUser,
				Content:   run.Input,
				Complete:  true,
				CreatedAt: created,
			})
		}
		msg := &ChatMessage{
			ID:        run.RunID,
			Role:      RoleAssistant,
			Content:   run.Content,
			ToolCalls: run.ToolCalls,
			Complete:  true,
			CreatedAt: created,
		}
		for _, call := range run.ToolCalls {
			if ui := parseUIComponent(call.Result); ui != nil {
				call.UI = ui
				msg.UI = append(msg.UI, ui)
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// sessionQuery builds the identifying query for session reads.
func sessionQuery(cfg Config, cc *callConfig) url.Values {
	q := url.Values{}
	q.Set("type", string(cfg.Mode))
	if userID := pick(cc.userID, cfg.UserID); userID != "" {
		q.Set("user_id", userID)
	}
	for k, v := range cc.params {
		q.Set(k, v)
	}
	return q
}

func pick(override, base string) string {
	if override != "" {
		return override
	}
	return base
}
