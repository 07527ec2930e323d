package dto

type CredentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token    string `json:"token"`
	UserId   int64  `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// ErrorResponse is the error body every API endpoint uses.
type ErrorResponse struct {
	Error string `json:"error"`
}
