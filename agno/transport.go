// Copyright (c) Microsoft. All rights reserved.

package agno

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// transport is an unexported interface for HTTP communication.
// The default implementation uses net/http; tests inject a mock.
type transport interface {
	do(ctx context.Context, method, path string, query url.Values, headers map[string]string, body any, stream bool) (*http.Response, error)
}

// httpTransport is the default transport using net/http. It is
// stateless across invocations apart from the cached bearer token.
type httpTransport struct {
	client     *http.Client
	baseURL    string
	headers    map[string]string
	params     map[string]string
	refresh    TokenRefresh
	credential azcore.TokenCredential
	scopes     []string

	mu    sync.Mutex
	token string
}

func newHTTPTransport(opts *clientConfig) *httpTransport {
	t := &httpTransport{
		client:     opts.httpClient,
		baseURL:    strings.TrimRight(opts.cfg.Endpoint, "/"),
		headers:    opts.cfg.Headers,
		params:     opts.cfg.Params,
		token:      opts.cfg.Token,
		refresh:    opts.refresh,
		credential: opts.credential,
		scopes:     opts.scopes,
	}
	if t.client == nil {
		t.client = http.DefaultClient
	}
	return t
}

// do issues one request. Global headers and query parameters are
// attached first, then per-call values override key-for-key. When
// stream is true the response body is returned unread for incremental
// delivery; otherwise callers own a fully available body.
//
// Cancellation of ctx aborts the connection and surfaces ctx.Err()
// rather than a generic transport error.
func (t *httpTransport) do(ctx context.Context, method, path string, query url.Values, headers map[string]string, body any, stream bool) (*http.Response, error) {
	resp, err := t.send(ctx, method, path, query, headers, body, stream)
	if err != nil {
		return nil, err
	}

	// One refresh attempt on auth failure, then replay the request.
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if t.refresh == nil {
			defer resp.Body.Close()
			return nil, readError(resp)
		}
		resp.Body.Close()
		slog.DebugContext(ctx, "refreshing auth token", "status", resp.StatusCode)
		token, err := t.refresh(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: token refresh: %v", ErrAuth, err)
		}
		t.mu.Lock()
		t.token = token
		t.mu.Unlock()
		if resp, err = t.send(ctx, method, path, query, headers, body, stream); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, readError(resp)
	}
	return resp, nil
}

func (t *httpTransport) send(ctx context.Context, method, path string, query url.Values, headers map[string]string, body any, stream bool) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal request: %v", ErrInvalidRequest, err)
		}
		bodyReader = bytes.NewReader(b)
	}

	u := t.baseURL + path
	q := url.Values{}
	for k, v := range t.params {
		q.Set(k, v)
	}
	for k, vs := range query {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrInvalidRequest, err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	if t.credential != nil {
		token, err := t.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: t.scopes})
		if err != nil {
			return nil, fmt.Errorf("%w: get token: %v", ErrAuth, err)
		}
		req.Header.Set("Authorization", "Bearer "+token.Token)
	} else if tok := t.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}

func (t *httpTransport) bearer() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

// readError drains an error response and maps it to an *APIError with
// the matching sentinel.
func readError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var apiErr struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &apiErr)

	msg := apiErr.Message
	if msg == "" {
		msg = apiErr.Detail
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	e := &APIError{StatusCode: resp.StatusCode, Message: msg, Detail: apiErr.Detail}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		e.Err = ErrAuth
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		e.Err = ErrInvalidRequest
	default:
		e.Err = ErrStatus
	}
	return e
}

// doJSON issues a buffered request and decodes the JSON response into out.
func doJSON(ctx context.Context, tp transport, method, path string, query url.Values, headers map[string]string, body, out any) error {
	resp, err := tp.do(ctx, method, path, query, headers, body, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: response body: %v", ErrDecode, err)
	}
	return nil
}

// isCancellation distinguishes caller-driven cancellation from failures.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
