package service

import "net/http"

// APIError is a failure the fake API reports as {"error": Message}.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

var (
	ErrMissingCredentials = &APIError{Status: http.StatusBadRequest, Message: "Username and password are required"}
	ErrUsernameTaken      = &APIError{Status: http.StatusBadRequest, Message: "Username already exists"}
	ErrInvalidCredentials = &APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	ErrInvalidToken       = &APIError{Status: http.StatusUnauthorized, Message: "Invalid token."}
	ErrNoFile             = &APIError{Status: http.StatusBadRequest, Message: "No file provided"}
	ErrNotCSV             = &APIError{Status: http.StatusBadRequest, Message: "File must be CSV format"}
	ErrNoData             = &APIError{Status: http.StatusNotFound, Message: "No data available"}
	ErrUploadNotFound     = &APIError{Status: http.StatusNotFound, Message: "Upload not found"}
	ErrPermissionDenied   = &APIError{Status: http.StatusForbidden, Message: "Permission denied"}
)
