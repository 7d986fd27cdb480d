package transport

// TokenResponse is the login success body.
type TokenResponse struct {
	Token string `json:"token"`
}

// MessageResponse is the error body shape for authentication failures.
type MessageResponse struct {
	Message string `json:"message"`
}
