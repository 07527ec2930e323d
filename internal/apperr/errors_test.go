package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageOr(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{"nil", nil, "Upload failed", ""},
		{"validation", &ValidationError{Field: "file", Message: "Please select a file"}, "Upload failed", "Please select a file"},
		{"server message wins", &ServerError{Op: "upload", Status: 400, Message: "File must be CSV format"}, "Upload failed", "File must be CSV format"},
		{"server without message uses fallback", &ServerError{Op: "upload", Status: 500}, "Upload failed", "Upload failed"},
		{"server without message or fallback", &ServerError{Op: "upload", Status: 502}, "", "Server error: Bad Gateway"},
		{"network uses fallback", &NetworkError{Op: "upload", Err: context.DeadlineExceeded}, "Upload failed", "Upload failed"},
		{"network generic", &NetworkError{Op: "history", Err: errors.New("refused")}, "", "Could not reach the server"},
		{"decode generic", &DecodeError{Op: "summary", Err: errors.New("eof")}, "", "Unexpected response from the server"},
		{"wrapped auth", fmt.Errorf("login: %w", &AuthError{Message: "Invalid credentials"}), "", "Invalid credentials"},
		{"export stays coarse", &ExportError{Kind: "pdf", Message: "Error generating PDF", Err: &ServerError{Status: 403, Message: "Permission denied"}}, "", "Error generating PDF"},
		{"superseded is silent", fmt.Errorf("select: %w", ErrSuperseded), "x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MessageOr(tt.err, tt.fallback))
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&NetworkError{Op: "x", Err: errors.New("timeout")}))
	assert.True(t, IsTransient(&ServerError{Status: 503}))
	assert.False(t, IsTransient(&ServerError{Status: 404}))
	assert.False(t, IsTransient(&ValidationError{Message: "no file"}))
	assert.False(t, IsTransient(nil))
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(fmt.Errorf("wrap: %w", &ServerError{Status: 401})))
	assert.False(t, IsUnauthorized(&ServerError{Status: 403}))
}

func TestErrorStrings(t *testing.T) {
	assert.Equal(t, "upload: server error 404: Not Found", (&ServerError{Op: "upload", Status: 404}).Error())
	assert.Equal(t, "upload: server error 400: bad", (&ServerError{Op: "upload", Status: 400, Message: "bad"}).Error())

	cause := errors.New("boom")
	assert.ErrorIs(t, &NetworkError{Op: "x", Err: cause}, cause)
	assert.ErrorIs(t, &DecodeError{Op: "x", Err: cause}, cause)
	assert.ErrorIs(t, &ExportError{Err: cause}, cause)
}
