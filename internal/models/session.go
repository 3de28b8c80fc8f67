package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are carried by the signed admin session cookie.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Session is the verified view of a session cookie.
type Session struct {
	ID        string    `json:"-"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}
