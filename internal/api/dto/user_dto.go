package dto

import (
	"time"

	"github.com/spec-kit/ticketapp/internal/domain"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login. From is the protected page the caller
// was sent away from, if any.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	From     string `json:"from,omitempty"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionResponse describes the current session.
type SessionResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionResult is returned by signup and login.
type SessionResult struct {
	Session  SessionResponse `json:"session"`
	Auth     AuthResponse    `json:"auth"`
	Redirect string          `json:"redirect"`
}

// NewSessionResponse maps a domain session.
func NewSessionResponse(s domain.Session) SessionResponse {
	return SessionResponse{Name: s.Name, Email: s.Email}
}
