// Copyright (c) Microsoft. All rights reserved.

package agno

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"gopkg.in/yaml.v3"
)

// Mode selects which AgentOS component the client talks to.
type Mode string

const (
	ModeAgent Mode = "agent"
	ModeTeam  Mode = "team"
)

// Config holds the client's effective configuration. All fields except
// Endpoint and the component id for the selected Mode are optional.
// Per-call options override Headers and Params key-for-key.
type Config struct {
	Endpoint  string            `yaml:"endpoint"`
	Mode      Mode              `yaml:"mode"`
	AgentID   string            `yaml:"agent_id"`
	TeamID    string            `yaml:"team_id"`
	UserID    string            `yaml:"user_id"`
	SessionID string            `yaml:"session_id"`
	Token     string            `yaml:"token"`
	Headers   map[string]string `yaml:"headers"`
	Params    map[string]string `yaml:"params"`
}

// componentID returns the id of the configured agent or team.
func (c *Config) componentID() string {
	if c.Mode == ModeTeam {
		return c.TeamID
	}
	return c.AgentID
}

// validate checks the fields required before any request can be built.
func (c *Config) validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrInvalidRequest)
	}
	switch c.Mode {
	case ModeAgent:
		if c.AgentID == "" {
			return fmt.Errorf("%w: agent id is required in agent mode", ErrInvalidRequest)
		}
	case ModeTeam:
		if c.TeamID == "" {
			return fmt.Errorf("%w: team id is required in team mode", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, c.Mode)
	}
	return nil
}

// clone returns a copy with the maps duplicated.
func (c *Config) clone() Config {
	cp := *c
	cp.Headers = copyMap(c.Headers)
	cp.Params = copyMap(c.Params)
	return cp
}

// LoadConfig reads a Config from a YAML file. Missing optional fields
// keep their zero values; [New] applies defaults and validation.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse config %s: %v", ErrInvalidRequest, path, err)
	}
	return &cfg, nil
}

// TokenRefresh obtains a replacement auth token after an authentication
// failure. It is invoked at most once per request.
type TokenRefresh func(ctx context.Context) (string, error)

// clientConfig holds the resolved construction-time options.
type clientConfig struct {
	cfg        Config
	httpClient *http.Client
	refresh    TokenRefresh
	credential azcore.TokenCredential
	scopes     []string
}

// Option configures a [Client] at construction time.
type Option func(*clientConfig)

// WithMode selects agent or team mode. The default is [ModeAgent].
func WithMode(m Mode) Option {
	return func(c *clientConfig) { c.cfg.Mode = m }
}

// WithAgentID sets the target agent for agent-mode runs.
func WithAgentID(id string) Option {
	return func(c *clientConfig) { c.cfg.AgentID = id }
}

// WithTeamID sets the target team for team-mode runs.
func WithTeamID(id string) Option {
	return func(c *clientConfig) { c.cfg.TeamID = id }
}

// WithUserID sets the default user id attached to runs and session queries.
func WithUserID(id string) Option {
	return func(c *clientConfig) { c.cfg.UserID = id }
}

// WithSessionID sets the initial session id. Runs started without a
// per-call session override are attributed to it.
func WithSessionID(id string) Option {
	return func(c *clientConfig) { c.cfg.SessionID = id }
}

// WithToken sets a static bearer token for authentication.
func WithToken(token string) Option {
	return func(c *clientConfig) { c.cfg.Token = token }
}

// WithTokenRefresh sets a hook invoked once after an authentication
// failure; the returned token replaces the configured one and the
// failed request is retried.
func WithTokenRefresh(fn TokenRefresh) Option {
	return func(c *clientConfig) { c.refresh = fn }
}

// WithCredential enables token-credential authentication. When set,
// the client obtains and refreshes tokens from cred instead of using a
// static bearer token. At least one scope naming the deployment's token
// audience is required; there is no default audience for an AgentOS
// endpoint.
func WithCredential(cred azcore.TokenCredential, scopes ...string) Option {
	return func(c *clientConfig) {
		c.credential = cred
		c.scopes = scopes
	}
}

// WithHeaders adds global headers attached to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *clientConfig) { c.cfg.Headers = mergeMaps(c.cfg.Headers, headers) }
}

// WithParams adds global query parameters attached to every request.
func WithParams(params map[string]string) Option {
	return func(c *clientConfig) { c.cfg.Params = mergeMaps(c.cfg.Params, params) }
}

// WithHTTPClient provides a custom http.Client for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = client }
}

// WithConfig overlays a loaded [Config] (see [LoadConfig]). Later
// options still override individual fields.
func WithConfig(cfg Config) Option {
	return func(c *clientConfig) {
		if cfg.Mode != "" {
			c.cfg.Mode = cfg.Mode
		}
		if cfg.Endpoint != "" {
			c.cfg.Endpoint = cfg.Endpoint
		}
		for _, s := range []struct {
			dst *string
			src string
		}{
			{&c.cfg.AgentID, cfg.AgentID},
			{&c.cfg.TeamID, cfg.TeamID},
			{&c.cfg.UserID, cfg.UserID},
			{&c.cfg.SessionID, cfg.SessionID},
			{&c.cfg.Token, cfg.Token},
		} {
			if s.src != "" {
				*s.dst = s.src
			}
		}
		c.cfg.Headers = mergeMaps(c.cfg.Headers, cfg.Headers)
		c.cfg.Params = mergeMaps(c.cfg.Params, cfg.Params)
	}
}

// callConfig holds resolved per-call options.
type callConfig struct {
	headers   map[string]string
	params    map[string]string
	sessionID string
	userID    string
}

// CallOption configures a single client operation. Per-call headers
// and params take precedence over the global configuration key-for-key.
type CallOption func(*callConfig)

// WithCallHeaders adds headers for this call only.
func WithCallHeaders(headers map[string]string) CallOption {
	return func(c *callConfig) { c.headers = mergeMaps(c.headers, headers) }
}

// WithCallParams adds query parameters for this call only.
func WithCallParams(params map[string]string) CallOption {
	return func(c *callConfig) { c.params = mergeMaps(c.params, params) }
}

// WithCallSessionID overrides the session id for this call only.
func WithCallSessionID(id string) CallOption {
	return func(c *callConfig) { c.sessionID = id }
}

// WithCallUserID overrides the user id for this call only.
func WithCallUserID(id string) CallOption {
	return func(c *callConfig) { c.userID = id }
}

func resolveCallConfig(opts []CallOption) *callConfig {
	cc := &callConfig{}
	for _, opt := range opts {
		opt(cc)
	}
	return cc
}

// mergeMaps overlays override onto base, override keys winning.
// Both inputs are left untouched; nil inputs are fine.
func mergeMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
