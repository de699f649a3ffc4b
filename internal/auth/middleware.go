package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/facilityops/helpdesk-gateway/internal/domain"
	apperrors "github.com/facilityops/helpdesk-gateway/pkg/util/errorutil"
)

const lookupKey = "auth_session_lookup"

// SessionResolver maps a presented token to a live session. It returns a nil
// session with a nil error when the token names no live session, and an
// error only when the session store could not answer.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

// Middleware loads the caller's session once per request.
type Middleware struct {
	sessions   SessionResolver
	cookieName string
}

// NewMiddleware constructs middleware.
func NewMiddleware(sessions SessionResolver, cookieName string) *Middleware {
	return &Middleware{sessions: sessions, cookieName: cookieName}
}

// Load resolves the session token and stores the lookup for Guard. The cookie
// is tried first; the bearer header is tried when the cookie names no live
// session. A store failure with no other live session leaves the lookup
// unresolved.
func (m *Middleware) Load(c *fiber.Ctx) error {
	lookup := SessionLookup{Resolved: true}
	for _, token := range m.tokens(c) {
		session, err := m.sessions.Resolve(c.UserContext(), token)
		if err != nil {
			lookup = SessionLookup{}
			continue
		}
		if session != nil {
			lookup = SessionLookup{Resolved: true, Session: session}
			break
		}
	}
	c.Locals(lookupKey, lookup)
	return c.Next()
}

func (m *Middleware) tokens(c *fiber.Ctx) []string {
	var out []string
	if m.cookieName != "" {
		if cookie := strings.TrimSpace(c.Cookies(m.cookieName)); cookie != "" {
			out = append(out, cookie)
		}
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		if bearer := strings.TrimSpace(parts[1]); bearer != "" && (len(out) == 0 || out[0] != bearer) {
			out = append(out, bearer)
		}
	}
	return out
}

// Guard admits callers holding one of the allowed roles. Any role is enough
// when none are given.
func Guard(allow ...domain.Role) fiber.Handler {
	allowSet := domain.NewRoles(allow...)

	return func(c *fiber.Ctx) error {
		decision := Evaluate(LookupFromContext(c), allowSet)
		switch decision.State {
		case GuardAuthorized:
			return c.Next()
		case GuardLoading:
			return apperrors.NewUnavailable("session could not be verified, try again shortly", nil)
		default:
			c.Set(fiber.HeaderLocation, decision.Redirect)
			return c.Status(fiber.StatusSeeOther).JSON(fiber.Map{
				"state":    decision.State.String(),
				"redirect": decision.Redirect,
			})
		}
	}
}

// LookupFromContext returns what Load stored, or the loading state when Load
// has not run.
func LookupFromContext(c *fiber.Ctx) SessionLookup {
	lookup, _ := c.Locals(lookupKey).(SessionLookup)
	return lookup
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	lookup := LookupFromContext(c)
	if lookup.Session == nil {
		return nil, false
	}
	return lookup.Session, true
}
