package domain

import "time"

// Session binds a gateway session id to an actor and the ticket API token
// obtained at login.
type Session struct {
	ID           string
	Actor        Actor
	BackendToken string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
