package dto

import (
	"time"

	"github.com/facilityops/helpdesk-gateway/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ActorResponse describes the signed-in user.
type ActorResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Roles       []string    `json:"roles"`
	PrimaryRole domain.Role `json:"primary_role"`
}

// SessionResponse is the current session and where the actor lands.
type SessionResponse struct {
	Actor     ActorResponse `json:"actor"`
	Home      string        `json:"home"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// AuthResponse carries the gateway token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
