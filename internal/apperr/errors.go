// Package apperr defines the error taxonomy shared by the session store,
// gateway, orchestrator and export trigger.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const DefaultAuthMessage = "Authentication failed"

// ErrSuperseded is returned by an operation whose result was discarded because
// a newer operation on the same state slot started after it.
var ErrSuperseded = errors.New("superseded by a newer request")

// ValidationError reports missing or invalid user input. It is raised before
// any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthError is returned by login/register. Message is safe to show to the user.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NetworkError covers transport failures, timeouts and cancellation.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response. Message holds the server's "error" field
// and is empty when the server sent none.
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s: server error %d: %s", e.Op, e.Status, msg)
}

// DecodeError is a 2xx response whose body could not be decoded.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ExportError is returned by the export trigger. The cause is kept for logs
// only; Message stays coarse.
type ExportError struct {
	Kind    string
	Message string
	Err     error
}

func (e *ExportError) Error() string {
	return e.Message
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
