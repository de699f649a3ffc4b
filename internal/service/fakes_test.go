package service

import (
	"context"
	"sync"
	"time"

	"github.com/facilityops/helpdesk-gateway/internal/backend"
	"github.com/facilityops/helpdesk-gateway/internal/domain"
	"github.com/facilityops/helpdesk-gateway/internal/repository"
)

type fakeIdentity struct {
	login    *backend.LoginResult
	identity *backend.Identity
	loginErr error
	meErr    error
}

func (f *fakeIdentity) Login(ctx context.Context, email, password string) (*backend.LoginResult, error) {
	return f.login, f.loginErr
}

func (f *fakeIdentity) Me(ctx context.Context, token string) (*backend.Identity, error) {
	return f.identity, f.meErr
}

type fakeTicketAPI struct {
	tickets map[string]domain.Ticket
	page    *backend.TicketPage
	pages   map[int]*backend.TicketPage
	err     error
	gets    []string
	queries []backend.TicketQuery
	created []backend.NewTicket
}

func (f *fakeTicketAPI) GetTicket(ctx context.Context, token, ticketID string) (*domain.Ticket, error) {
	f.gets = append(f.gets, ticketID)
	if f.err != nil {
		return nil, f.err
	}
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return nil, &backend.Error{StatusCode: 404, Message: "not found"}
	}
	return &ticket, nil
}

func (f *fakeTicketAPI) ListTickets(ctx context.Context, token string, query backend.TicketQuery) (*backend.TicketPage, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if f.pages != nil {
		if page, ok := f.pages[query.Page]; ok {
			return page, nil
		}
		return &backend.TicketPage{}, nil
	}
	if f.page == nil {
		return &backend.TicketPage{}, nil
	}
	return f.page, nil
}

func (f *fakeTicketAPI) CreateTicket(ctx context.Context, token string, input backend.NewTicket) (*domain.Ticket, error) {
	f.created = append(f.created, input)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Ticket{ID: "T-new", Title: input.Title, Severity: input.Severity, Status: domain.TicketStatusReported}, nil
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	ttls     map[string]time.Duration
	err      error
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: map[string]domain.Session{}, ttls: map[string]time.Duration{}}
}

func (m *memorySessions) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sessions[session.ID] = *session
	m.ttls[session.ID] = ttl
	return nil
}

func (m *memorySessions) Get(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	session, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &session, nil
}

func (m *memorySessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.sessions, id)
	return nil
}

type fakeSender struct {
	paths []string
	err   error
}

func (f *fakeSender) Send(ctx context.Context, token, method, path string, body any) error {
	f.paths = append(f.paths, path)
	return f.err
}

func actorSession(id string, roles ...domain.Role) *domain.Session {
	return &domain.Session{ID: "S-" + id, BackendToken: "tok-" + id, Actor: domain.Actor{ID: id, Roles: domain.NewRoles(roles...)}}
}
