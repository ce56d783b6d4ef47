package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/ports"
	"github.com/aimatch/portal/internal/pkg/metrics"
)

// Session end reasons.
const (
	ReasonLogout       = "logout"
	ReasonUnauthorized = "unauthorized"
	ReasonExpired      = "expired"
)

// SessionEnded is published whenever a session is torn down.
type SessionEnded struct {
	SessionID string
	Reason    string
}

// SessionService implements login, session lookup and teardown.
type SessionService struct {
	store     ports.SessionStore
	api       ports.MarketplaceAPI
	jwtSecret string
	ttl       time.Duration
	logger    zerolog.Logger

	mu        sync.RWMutex
	listeners []func(SessionEnded)
}

func NewSessionService(store ports.SessionStore, api ports.MarketplaceAPI, jwtSecret string, ttl time.Duration, logger zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{store: store, api: api, jwtSecret: jwtSecret, ttl: ttl, logger: logger}
}

// Subscribe registers fn to be called after every session teardown.
func (s *SessionService) Subscribe(fn func(SessionEnded)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Login authenticates against the marketplace, persists the session record
// and issues the portal session token.
func (s *SessionService) Login(ctx context.Context, email, password string) (*ports.LoginOutput, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("marketplace login: %w", err)
	}

	id := uuid.NewString()
	if err := s.store.Save(ctx, id, ports.SessionRecord{Token: res.AccessToken, User: res.User}, s.ttl); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.generateToken(id)
	if err != nil {
		_ = s.store.Delete(ctx, id)
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	sess := domain.DecodeSession(id, res.AccessToken, res.User)
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	s.logger.Info().
		Str("session_id", id).
		Int64("user_id", sess.UserID).
		Str("role", sess.Role.String()).
		Msg("session started")

	return &ports.LoginOutput{Token: token, Session: sess}, nil
}

// Current loads the session and refreshes its TTL. The role is decoded from
// the stored record on every call.
func (s *SessionService) Current(ctx context.Context, sessionID string) (domain.Session, error) {
	rec, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Session{}, fmt.Errorf("session %s: %w", sessionID, domain.ErrUnauthorized)
		}
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}

	if err := s.store.Touch(ctx, sessionID, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("session ttl refresh failed")
	}
	return domain.DecodeSession(sessionID, rec.Token, rec.User), nil
}

func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	return s.Teardown(ctx, sessionID, ReasonLogout)
}

// Teardown clears the stored session and notifies subscribers.
func (s *SessionService) Teardown(ctx context.Context, sessionID, reason string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	metrics.SessionsEndedTotal.WithLabelValues(reason).Inc()
	s.logger.Info().Str("session_id", sessionID).Str("reason", reason).Msg("session ended")

	s.mu.RLock()
	listeners := append([]func(SessionEnded){}, s.listeners...)
	s.mu.RUnlock()

	ev := SessionEnded{SessionID: sessionID, Reason: reason}
	for _, fn := range listeners {
		fn(ev)
	}
	return nil
}

// HandleRemoteError tears the session down when err says the marketplace
// rejected its token. It reports whether it did.
func (s *SessionService) HandleRemoteError(ctx context.Context, sessionID string, err error) bool {
	if sessionID == "" || !errors.Is(err, domain.ErrUnauthorized) {
		return false
	}
	if terr := s.Teardown(ctx, sessionID, ReasonUnauthorized); terr != nil {
		s.logger.Error().Err(terr).Str("session_id", sessionID).Msg("session teardown failed")
	}
	return true
}

func (s *SessionService) generateToken(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": time.Now().Add(s.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}
