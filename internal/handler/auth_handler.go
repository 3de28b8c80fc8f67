package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard-api/internal/dto"
	"github.com/noah-isme/attendance-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard-api/pkg/errors"
	"github.com/noah-isme/attendance-dashboard-api/pkg/response"
)

type sessionService interface {
	Login(ctx context.Context, req dto.LoginRequest) (string, *models.Session, error)
	Logout(ctx context.Context, token string) error
	Validate(ctx context.Context, token string) (*models.Session, error)
	TTL() time.Duration
}

// CookieConfig controls the admin session cookie attributes.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler issues and clears the admin session cookie.
type AuthHandler struct {
	service sessionService
	cookie  CookieConfig
}

// NewAuthHandler builds the login handler; cookie controls the session cookie attributes.
func NewAuthHandler(svc sessionService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "admin_session"
	}
	return &AuthHandler{service: svc, cookie: cookie}
}

// Login godoc
// @Summary Admin login
// @Description Sets an HttpOnly session cookie when the credentials match.
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope{data=dto.SessionStatus}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	token, session, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setCookie(c, token, int(h.service.TTL().Seconds()))
	response.JSON(c, http.StatusOK, dto.SessionStatus{
		Authenticated: true,
		Username:      session.Username,
		ExpiresAt:     &session.ExpiresAt,
	})
}

// Logout godoc
// @Summary Admin logout
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.Name); err == nil && token != "" {
		if err := h.service.Logout(c.Request.Context(), token); err != nil {
			response.Error(c, err)
			return
		}
	}
	h.setCookie(c, "", -1)
	response.Message(c, http.StatusOK, "logged out")
}

// Session godoc
// @Summary Current admin session
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.SessionStatus}
// @Router /admin/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	token, err := c.Cookie(h.cookie.Name)
	if err != nil || token == "" {
		response.JSON(c, http.StatusOK, dto.SessionStatus{})
		return
	}
	session, err := h.service.Validate(c.Request.Context(), token)
	if err != nil {
		response.JSON(c, http.StatusOK, dto.SessionStatus{})
		return
	}
	response.JSON(c, http.StatusOK, dto.SessionStatus{
		Authenticated: true,
		Username:      session.Username,
		ExpiresAt:     &session.ExpiresAt,
	})
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
