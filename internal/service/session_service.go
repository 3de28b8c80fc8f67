package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/attendance-dashboard-api/internal/dto"
	"github.com/noah-isme/attendance-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/attendance-dashboard-api/pkg/errors"
)

const sessionIssuer = "attendance-dashboard-api"

type sessionRevocationStore interface {
	Revoke(ctx context.Context, id string, ttl time.Duration) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

type loginRecorder interface {
	RecordLogin(success bool)
}

// SessionConfig holds the static admin credentials and cookie signing settings.
type SessionConfig struct {
	Username     string
	Password     string
	PasswordHash string
	Secret       string
	TTL          time.Duration
}

// SessionService issues and verifies the admin session cookie.
type SessionService struct {
	store   sessionRevocationStore
	metrics loginRecorder
	logger  *zap.Logger
	config  SessionConfig
	now     func() time.Time
}

// NewSessionService builds the session service. A nil store disables revocation.
func NewSessionService(store sessionRevocationStore, metrics loginRecorder, logger *zap.Logger, config SessionConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	return &SessionService{store: store, metrics: metrics, logger: logger, config: config, now: time.Now}
}

// TTL is the lifetime of an issued session.
func (s *SessionService) TTL() time.Duration {
	return s.config.TTL
}

// Login checks the credentials and returns a signed session token.
func (s *SessionService) Login(ctx context.Context, req dto.LoginRequest) (string, *models.Session, error) {
	if !s.credentialsMatch(req.Username, req.Password) {
		s.recordLogin(false)
		s.logger.Warn("admin login rejected", zap.String("username", req.Username))
		return "", nil, appErrors.ErrInvalidCredentials
	}

	issuedAt := s.now().UTC()
	claims := models.SessionClaims{
		Username: req.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    sessionIssuer,
			Subject:   req.Username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.TTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", nil, appErrors.With(appErrors.ErrInternal, err, "failed to sign session")
	}

	s.recordLogin(true)
	return token, &models.Session{ID: claims.ID, Username: claims.Username, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Validate parses the token and rejects expired, forged or revoked sessions.
func (s *SessionService) Validate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, appErrors.ErrUnauthorized
	}

	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.ErrSessionExpired
		}
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session")
	}

	if s.store != nil {
		revoked, err := s.store.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Error("session revocation lookup failed", zap.Error(err))
			return nil, appErrors.With(appErrors.ErrUnauthorized, err, "session could not be verified")
		}
		if revoked {
			return nil, appErrors.ErrSessionRevoked
		}
	}

	return &models.Session{ID: claims.ID, Username: claims.Username, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Logout revokes the session until its natural expiry. Invalid tokens are ignored.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	session, err := s.Validate(ctx, token)
	if err != nil {
		return nil
	}
	if s.store == nil {
		return nil
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if err := s.store.Revoke(ctx, session.ID, ttl); err != nil {
		return appErrors.With(appErrors.ErrInternal, err, "failed to revoke session")
	}
	return nil
}

// credentialsMatch compares in constant time. With no password configured the console is closed.
func (s *SessionService) credentialsMatch(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.config.Username)) == 1

	var passOK bool
	switch {
	case s.config.PasswordHash != "":
		passOK = bcrypt.CompareHashAndPassword([]byte(s.config.PasswordHash), []byte(password)) == nil
	case s.config.Password != "":
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(s.config.Password)) == 1
	}

	return userOK && passOK && s.config.Username != ""
}

func (s *SessionService) recordLogin(success bool) {
	if s.metrics != nil {
		s.metrics.RecordLogin(success)
	}
}
