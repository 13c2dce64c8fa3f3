// Copyright (c) Microsoft. All rights reserved.

package agno

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrClient is the base error for client-side failures.
	ErrClient = errors.New("agno client error")

	// ErrInvalidRequest indicates the caller supplied invalid arguments
	// or configuration; no request was sent.
	ErrInvalidRequest = fmt.Errorf("%w: invalid request", ErrClient)

	// ErrRunState indicates an operation was attempted against a run in
	// the wrong state (e.g. continuing a run that is not paused).
	ErrRunState = fmt.Errorf("%w: run state", ErrClient)

	// ErrRunActive is returned by SendMessage while a run is already
	// streaming or paused for the same conversation.
	ErrRunActive = fmt.Errorf("%w: run already active", ErrRunState)

	// ErrNotPaused is returned by ContinueRun when the targeted run is
	// not paused.
	ErrNotPaused = fmt.Errorf("%w: run not paused", ErrRunState)

	// ErrTransport is the base error for network and HTTP failures.
	ErrTransport = errors.New("transport error")

	// ErrStatus indicates a non-success HTTP status from the backend.
	ErrStatus = fmt.Errorf("%w: status", ErrTransport)

	// ErrAuth indicates an authentication failure that survived a token
	// refresh attempt (or no refresh hook was configured).
	ErrAuth = fmt.Errorf("%w: authentication", ErrTransport)

	// ErrDecode indicates a frame or response body failed to parse.
	ErrDecode = errors.New("decode error")
)

// APIError provides rich context for backend HTTP failures.
// Use errors.As to extract it from a wrapped error chain.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
	Err        error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("agno api error %d: %s (%s)", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("agno api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }
