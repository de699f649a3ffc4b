package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilityops/helpdesk-gateway/internal/auth"
	"github.com/facilityops/helpdesk-gateway/internal/backend"
	"github.com/facilityops/helpdesk-gateway/internal/domain"
	"github.com/facilityops/helpdesk-gateway/internal/events"
	apperrors "github.com/facilityops/helpdesk-gateway/pkg/util/errorutil"
)

func newSessionService(identity IdentityAPI, sessions *memorySessions, bus events.Dispatcher) *SessionService {
	return NewSessionService(SessionDependencies{
		Identity:   identity,
		Sessions:   sessions,
		Tokens:     auth.NewTokenManager("secret"),
		Dispatcher: bus,
		TTL:        8 * time.Hour,
	})
}

func TestSessionService_LoginResolveLogout(t *testing.T) {
	identity := &fakeIdentity{
		login:    &backend.LoginResult{AccessToken: "api-token", ExpiresAt: time.Now().Add(time.Hour)},
		identity: &backend.Identity{ID: "U1", FullName: "Dana", Email: "dana@example.com", Roles: []string{"staff", "Unknown"}},
	}
	sessions := newMemorySessions()
	bus := events.NewInMemoryDispatcher()
	var seen []events.EventType
	record := func(ctx context.Context, e events.Event) error {
		seen = append(seen, e.Type)
		return nil
	}
	bus.Subscribe(events.EventSessionStarted, record)
	bus.Subscribe(events.EventSessionEnded, record)
	svc := newSessionService(identity, sessions, bus)
	ctx := context.Background()

	result, err := svc.Login(ctx, " dana@example.com ", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.Session.Actor.Roles.Has(domain.RoleStaff))
	assert.Len(t, result.Session.Actor.Roles, 1)
	assert.Equal(t, "api-token", result.Session.BackendToken)

	ttl := sessions.ttls[result.Session.ID]
	assert.LessOrEqual(t, ttl, time.Hour)
	assert.Greater(t, ttl, 50*time.Minute)

	resolved, err := svc.Resolve(ctx, result.Token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "U1", resolved.Actor.ID)

	require.NoError(t, svc.Logout(ctx, resolved))
	resolved, err = svc.Resolve(ctx, result.Token)
	require.NoError(t, err)
	assert.Nil(t, resolved)

	assert.Equal(t, []events.EventType{events.EventSessionStarted, events.EventSessionEnded}, seen)
}

func TestSessionService_LoginUsesConfiguredTTLWhenShorter(t *testing.T) {
	identity := &fakeIdentity{
		login:    &backend.LoginResult{AccessToken: "api-token", ExpiresAt: time.Now().Add(48 * time.Hour)},
		identity: &backend.Identity{ID: "U1", Roles: []string{"Reporter"}},
	}
	sessions := newMemorySessions()
	svc := newSessionService(identity, sessions, nil)

	result, err := svc.Login(context.Background(), "r@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, sessions.ttls[result.Session.ID])
}

func TestSessionService_LoginErrors(t *testing.T) {
	svc := newSessionService(&fakeIdentity{}, newMemorySessions(), nil)
	_, err := svc.Login(context.Background(), "", "pw")
	assert.Equal(t, http.StatusBadRequest, apperrors.ToDomainError(err).HTTPStatus)

	svc = newSessionService(&fakeIdentity{loginErr: &backend.Error{StatusCode: http.StatusUnauthorized}}, newMemorySessions(), nil)
	_, err = svc.Login(context.Background(), "a@example.com", "bad")
	assert.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)

	svc = newSessionService(&fakeIdentity{loginErr: &backend.Error{Err: errors.New("dial tcp")}}, newMemorySessions(), nil)
	_, err = svc.Login(context.Background(), "a@example.com", "pw")
	assert.Equal(t, http.StatusBadGateway, apperrors.ToDomainError(err).HTTPStatus)

	down := newMemorySessions()
	down.err = errors.New("redis down")
	svc = newSessionService(&fakeIdentity{
		login:    &backend.LoginResult{AccessToken: "t"},
		identity: &backend.Identity{ID: "U1", Roles: []string{"Staff"}},
	}, down, nil)
	_, err = svc.Login(context.Background(), "a@example.com", "pw")
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.ToDomainError(err).HTTPStatus)

	svc = newSessionService(&fakeIdentity{
		login:    &backend.LoginResult{AccessToken: "t", ExpiresAt: time.Now().Add(-time.Minute)},
		identity: &backend.Identity{ID: "U1"},
	}, newMemorySessions(), nil)
	_, err = svc.Login(context.Background(), "a@example.com", "pw")
	assert.Equal(t, http.StatusUnauthorized, apperrors.ToDomainError(err).HTTPStatus)
}

func TestSessionService_ResolveEdgeCases(t *testing.T) {
	sessions := newMemorySessions()
	svc := newSessionService(&fakeIdentity{}, sessions, nil)
	tokens := auth.NewTokenManager("secret")
	ctx := context.Background()

	session, err := svc.Resolve(ctx, "garbage")
	require.NoError(t, err)
	assert.Nil(t, session)

	token, err := tokens.GenerateToken("missing", "U1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	session, err = svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, session)

	expired := domain.Session{ID: "old", Actor: domain.Actor{ID: "U1"}, ExpiresAt: time.Now().Add(-time.Second)}
	sessions.sessions[expired.ID] = expired
	token, err = tokens.GenerateToken("old", "U1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	session, err = svc.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, session)

	sessions.err = errors.New("redis down")
	_, err = svc.Resolve(ctx, token)
	assert.Error(t, err)
}
