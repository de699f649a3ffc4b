package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilityops/helpdesk-gateway/internal/domain"
	apperrors "github.com/facilityops/helpdesk-gateway/pkg/util/errorutil"
)

type fakeResolver struct {
	sessions map[string]*domain.Session
	err      error
	seen     []string
}

func (f *fakeResolver) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	f.seen = append(f.seen, token)
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions[token], nil
}

func newGuardedApp(resolver SessionResolver, allow ...domain.Role) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		},
	})
	mw := NewMiddleware(resolver, "helpdesk_session")
	app.Use(mw.Load)
	app.Get("/view", Guard(allow...), func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(session.Actor.ID)
	})
	return app
}

func TestGuard_Redirects(t *testing.T) {
	resolver := &fakeResolver{sessions: map[string]*domain.Session{
		"staff-token": sessionWith(domain.RoleStaff),
		"admin-token": sessionWith(domain.RoleAdministrator),
	}}
	app := newGuardedApp(resolver, domain.RoleManager, domain.RoleAdministrator)

	req := httptest.NewRequest(http.MethodGet, "/view", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, LoginPath, resp.Header.Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/view", nil)
	req.Header.Set("Authorization", "Bearer staff-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/staff/dashboard", resp.Header.Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/view", nil)
	req.AddCookie(&http.Cookie{Name: "helpdesk_session", Value: "admin-token"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuard_UnknownTokenIsUnauthenticated(t *testing.T) {
	app := newGuardedApp(&fakeResolver{})

	req := httptest.NewRequest(http.MethodGet, "/view", nil)
	req.Header.Set("Authorization", "Bearer stale")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, LoginPath, resp.Header.Get("Location"))
}

func TestGuard_StoreDownIsLoading(t *testing.T) {
	app := newGuardedApp(&fakeResolver{err: errors.New("redis: connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/view", nil)
	req.Header.Set("Authorization", "Bearer anything")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestLoad_CookieWinsOverHeader(t *testing.T) {
	resolver := &fakeResolver{sessions: map[string]*domain.Session{"cookie": sessionWith(domain.RoleReporter)}}
	app := newGuardedApp(resolver)

	req := httptest.NewRequest(http.MethodGet, "/view", nil)
	req.AddCookie(&http.Cookie{Name: "helpdesk_session", Value: "cookie"})
	req.Header.Set("Authorization", "Bearer header")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"cookie"}, resolver.seen)
}

func TestLoad_StaleCookieFallsBackToHeader(t *testing.T) {
	header := sessionWith(domain.RoleStaff)
	header.Actor.ID = "from-header"
	resolver := &fakeResolver{sessions: map[string]*domain.Session{"header": header}}
	app := newGuardedApp(resolver)

	req := httptest.NewRequest(http.MethodGet, "/view", nil)
	req.AddCookie(&http.Cookie{Name: "helpdesk_session", Value: "stale"})
	req.Header.Set("Authorization", "Bearer header")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "from-header", string(body))
	assert.Equal(t, []string{"stale", "header"}, resolver.seen)
}

func TestLoad_SameTokenResolvedOnce(t *testing.T) {
	resolver := &fakeResolver{}
	app := newGuardedApp(resolver)

	req := httptest.NewRequest(http.MethodGet, "/view", nil)
	req.AddCookie(&http.Cookie{Name: "helpdesk_session", Value: "tok"})
	req.Header.Set("Authorization", "Bearer tok")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, []string{"tok"}, resolver.seen)
}
