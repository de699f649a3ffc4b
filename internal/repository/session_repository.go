package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/facilityops/helpdesk-gateway/internal/domain"
)

// ErrSessionNotFound is returned when no live session exists for an id.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository stores gateway sessions.
type SessionRepository interface {
	Save(ctx context.Context, session *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

type sessionRepository struct {
	client *redis.Client
	prefix string
}

// NewSessionRepository builds a Redis backed repository. Keys are prefix+id.
func NewSessionRepository(client *redis.Client, prefix string) SessionRepository {
	return &sessionRepository{client: client, prefix: prefix}
}

type sessionRecord struct {
	ID           string    `json:"id"`
	ActorID      string    `json:"actorId"`
	ActorName    string    `json:"actorName"`
	ActorEmail   string    `json:"actorEmail"`
	Roles        []string  `json:"roles"`
	BackendToken string    `json:"backendToken"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func (r *sessionRepository) key(id string) string {
	return r.prefix + id
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("session %s: non-positive ttl", session.ID)
	}
	payload, err := json.Marshal(sessionRecord{
		ID:           session.ID,
		ActorID:      session.Actor.ID,
		ActorName:    session.Actor.Name,
		ActorEmail:   session.Actor.Email,
		Roles:        session.Actor.Roles.Strings(),
		BackendToken: session.BackendToken,
		CreatedAt:    session.CreatedAt,
		ExpiresAt:    session.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(session.ID), payload, ttl).Err()
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	payload, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var record sessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &domain.Session{
		ID: record.ID,
		Actor: domain.Actor{
			ID:    record.ActorID,
			Name:  record.ActorName,
			Email: record.ActorEmail,
			Roles: domain.ParseRoles(record.Roles),
		},
		BackendToken: record.BackendToken,
		CreatedAt:    record.CreatedAt,
		ExpiresAt:    record.ExpiresAt,
	}, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}
