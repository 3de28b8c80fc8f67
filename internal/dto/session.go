package dto

import "time"

// LoginRequest carries the admin console credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionStatus answers GET /admin/session.
type SessionStatus struct {
	Authenticated bool       `json:"authenticated"`
	Username      string     `json:"username,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}
