package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/facilityops/helpdesk-gateway/internal/api/dto"
	"github.com/facilityops/helpdesk-gateway/internal/auth"
	"github.com/facilityops/helpdesk-gateway/internal/config"
	"github.com/facilityops/helpdesk-gateway/internal/domain"
	"github.com/facilityops/helpdesk-gateway/internal/service"
	apperrors "github.com/facilityops/helpdesk-gateway/pkg/util/errorutil"
)

// SessionHandler exposes login, logout and the current session.
type SessionHandler struct {
	sessions *service.SessionService
	cookie   config.AuthConfig
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions *service.SessionService, cookie config.AuthConfig) *SessionHandler {
	return &SessionHandler{sessions: sessions, cookie: cookie}
}

// Login handles POST /auth/login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.sessions.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.CookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.Session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"session": sessionResponse(result.Session),
			"auth":    dto.AuthResponse{Token: result.Token, ExpiresAt: result.Session.ExpiresAt},
		},
	})
}

// Logout handles POST /auth/logout.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	if err := h.sessions.Logout(c.UserContext(), session); err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"data": fiber.Map{"redirect": auth.LoginPath}})
}

// Current handles GET /auth/session.
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}

func sessionResponse(session *domain.Session) dto.SessionResponse {
	return dto.SessionResponse{
		Actor: dto.ActorResponse{
			ID:          session.Actor.ID,
			Name:        session.Actor.Name,
			Email:       session.Actor.Email,
			Roles:       session.Actor.Roles.Strings(),
			PrimaryRole: session.Actor.Roles.Primary(),
		},
		Home:      auth.HomeFor(session.Actor.Roles),
		ExpiresAt: session.ExpiresAt,
	}
}
