package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard-api/pkg/errors"
	"github.com/noah-isme/attendance-dashboard-api/pkg/response"
)

// ContextSessionKey is the gin context key storing the admin session.
const ContextSessionKey = "adminSession"

// SessionValidator verifies a session cookie value.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*models.Session, error)
}

// RequireSession rejects requests without a valid admin session cookie.
func RequireSession(validator SessionValidator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		session, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// RequireSessionUnless skips the check when public is set. Used for
// read-only admin endpoints that may be opened up by configuration.
func RequireSessionUnless(public bool, validator SessionValidator, cookieName string) gin.HandlerFunc {
	if public {
		return func(c *gin.Context) { c.Next() }
	}
	return RequireSession(validator, cookieName)
}

// SessionFromContext returns the session attached by RequireSession.
func SessionFromContext(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, ok := value.(*models.Session)
	if !ok {
		return nil
	}
	return session
}
