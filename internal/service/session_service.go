package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facilityops/helpdesk-gateway/internal/auth"
	"github.com/facilityops/helpdesk-gateway/internal/backend"
	"github.com/facilityops/helpdesk-gateway/internal/domain"
	"github.com/facilityops/helpdesk-gateway/internal/events"
	"github.com/facilityops/helpdesk-gateway/internal/repository"
	apperrors "github.com/facilityops/helpdesk-gateway/pkg/util/errorutil"
)

// SessionService owns the lifecycle of gateway sessions: created at login,
// resolved on every request, torn down at logout.
type SessionService struct {
	identity   IdentityAPI
	sessions   repository.SessionRepository
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	ttl        time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// SessionDependencies bundles collaborators for the session service.
type SessionDependencies struct {
	Identity   IdentityAPI
	Sessions   repository.SessionRepository
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	TTL        time.Duration
	Logger     *zap.Logger
}

// LoginResult is a freshly started session and the token that names it.
type LoginResult struct {
	Session *domain.Session
	Token   string
}

// NewSessionService constructs the service.
func NewSessionService(deps SessionDependencies) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		identity:   deps.Identity,
		sessions:   deps.Sessions,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		ttl:        deps.TTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Login authenticates against the ticket API, loads the actor's identity and
// stores a session that lives no longer than the ticket API token.
func (s *SessionService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}

	login, err := s.identity.Login(ctx, email, password)
	if err != nil {
		return nil, loginError(err)
	}
	identity, err := s.identity.Me(ctx, login.AccessToken)
	if err != nil {
		return nil, loginError(err)
	}

	now := s.now().UTC()
	ttl := s.ttl
	if !login.ExpiresAt.IsZero() {
		if remaining := login.ExpiresAt.Sub(now); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		return nil, apperrors.NewUnauthorized("ticket service issued an expired token")
	}

	session := &domain.Session{
		ID: uuid.NewString(),
		Actor: domain.Actor{
			ID:    identity.ID,
			Name:  identity.FullName,
			Email: identity.Email,
			Roles: domain.ParseRoles(identity.Roles),
		},
		BackendToken: login.AccessToken,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
	if len(session.Actor.Roles) == 0 {
		s.logger.Warn("identity carries no recognised role", zap.String("actor_id", identity.ID), zap.Strings("roles", identity.Roles))
	}

	if err := s.sessions.Save(ctx, session, ttl); err != nil {
		return nil, apperrors.NewUnavailable("session store unavailable", err)
	}
	token, err := s.tokens.GenerateToken(session.ID, session.Actor.ID, session.ExpiresAt)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("session started", zap.String("session_id", session.ID), zap.String("actor_id", session.Actor.ID))
	s.publish(ctx, events.EventSessionStarted, session)
	return &LoginResult{Session: session, Token: token}, nil
}

// Resolve returns the live session named by token. A malformed, expired or
// unknown token yields no session and no error; an error means the session
// store could not answer.
func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, nil
	}
	session, err := s.sessions.Get(ctx, claims.SessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Warn("session lookup failed", zap.String("session_id", claims.SessionID), zap.Error(err))
		return nil, err
	}
	if session.Expired(s.now()) {
		return nil, nil
	}
	return session, nil
}

// Logout tears the session down.
func (s *SessionService) Logout(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return apperrors.NewUnavailable("session store unavailable", err)
	}
	s.logger.Info("session ended", zap.String("session_id", session.ID), zap.String("actor_id", session.Actor.ID))
	s.publish(ctx, events.EventSessionEnded, session)
	return nil
}

func (s *SessionService) publish(ctx context.Context, eventType events.EventType, session *domain.Session) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     events.ActorFrom(session.Actor),
		Timestamp: s.now().UTC(),
		Payload:   events.SessionPayload{SessionID: session.ID},
	})
	if err != nil {
		s.logger.Warn("publish event", zap.String("type", string(eventType)), zap.Error(err))
	}
}

func loginError(err error) error {
	var apiErr *backend.Error
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
		return apperrors.NewUnauthorized("invalid email or password")
	}
	return mapBackendError("identity", err)
}
