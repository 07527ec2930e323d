package apperr

import (
	"errors"
	"net/http"
)

// Message converts any error into a single line for the user.
func Message(err error) string {
	return MessageOr(err, "")
}

// MessageOr prefers a message the server or the user input produced and falls
// back to fallback for everything else. An empty fallback yields a generic
// text per error class.
func MessageOr(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var validation *ValidationError
	var auth *AuthError
	var server *ServerError
	var network *NetworkError
	var decode *DecodeError
	var export *ExportError

	switch {
	case errors.Is(err, ErrSuperseded):
		return ""
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &auth):
		return auth.Message
	case errors.As(err, &export):
		return export.Message
	case errors.As(err, &server) && server.Message != "":
		return server.Message
	}

	if fallback != "" {
		return fallback
	}

	switch {
	case errors.As(err, &server):
		return "Server error: " + http.StatusText(server.Status)
	case errors.As(err, &network):
		return "Could not reach the server"
	case errors.As(err, &decode):
		return "Unexpected response from the server"
	default:
		return err.Error()
	}
}

// IsTransient reports whether retrying the same action later may succeed.
func IsTransient(err error) bool {
	var network *NetworkError
	if errors.As(err, &network) {
		return true
	}
	var server *ServerError
	return errors.As(err, &server) && server.Status >= http.StatusInternalServerError
}

// IsUnauthorized reports a 401 from the server, meaning the stored token is no
// longer accepted.
func IsUnauthorized(err error) bool {
	var server *ServerError
	return errors.As(err, &server) && server.Status == http.StatusUnauthorized
}
