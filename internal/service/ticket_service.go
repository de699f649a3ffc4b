package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facilityops/helpdesk-gateway/internal/backend"
	"github.com/facilityops/helpdesk-gateway/internal/domain"
	"github.com/facilityops/helpdesk-gateway/internal/events"
	"github.com/facilityops/helpdesk-gateway/internal/workflow"
	apperrors "github.com/facilityops/helpdesk-gateway/pkg/util/errorutil"
)

const (
	defaultPageSize   = 20
	maxPageSize       = 100
	dashboardPageSize = 100
	dashboardMaxPages = 20
)

// TicketService serves ticket views scoped to the acting user.
type TicketService struct {
	api        TicketAPI
	dispatcher events.Dispatcher
	validate   *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	API        TicketAPI
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateInput describes a newly reported issue.
type TicketCreateInput struct {
	Title       string   `validate:"required,max=200"`
	Description string   `validate:"required"`
	Location    string   `validate:"required"`
	Severity    string   `validate:"required"`
	IssueIDs    []string `validate:"dive,required"`
}

// TicketListFilter narrows a ticket listing. Scope is always derived from the
// actor and cannot be widened by the filter.
type TicketListFilter struct {
	Statuses []domain.TicketStatus
	Page     int
	PageSize int
}

// TicketView is a ticket together with its workflow projection for the actor.
type TicketView struct {
	Ticket   domain.Ticket
	Workflow workflow.Projection
}

// TicketList is one page of scoped tickets.
type TicketList struct {
	Items      []TicketView
	TotalCount int
	Page       int
	PageSize   int
}

// StatusCount is the number of tickets in one status.
type StatusCount struct {
	Status domain.TicketStatus
	Count  int
}

// Dashboard summarizes the tickets in scope for one role view. Counted is the
// number of tickets the counts cover; it falls short of Total only when the
// scope exceeds the page limit.
type Dashboard struct {
	Role     domain.Role
	Counts   []StatusCount
	Total    int
	Counted  int
	Awaiting []TicketView
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		api:        deps.API,
		dispatcher: deps.Dispatcher,
		validate:   validator.New(),
		logger:     logger,
		now:        time.Now,
	}
}

// Get fetches a ticket and projects it for the session's actor.
func (s *TicketService) Get(ctx context.Context, session *domain.Session, ticketID string) (*TicketView, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, apperrors.NewValidationError("ticket id required", nil)
	}
	ticket, err := s.api.GetTicket(ctx, session.BackendToken, ticketID)
	if err != nil {
		return nil, mapBackendError("ticket", err)
	}
	if !ticket.Status.Known() {
		s.logger.Warn("ticket has unrecognised status", zap.String("ticket_id", ticket.ID), zap.String("status", string(ticket.Status)))
	}
	view := project(*ticket, session.Actor)
	return &view, nil
}

// List returns the page of tickets the actor may see.
func (s *TicketService) List(ctx context.Context, session *domain.Session, filter TicketListFilter) (*TicketList, error) {
	query, err := scopeQuery(session.Actor)
	if err != nil {
		return nil, err
	}
	query.Statuses = filter.Statuses
	query.Page = filter.Page
	if query.Page <= 0 {
		query.Page = 1
	}
	query.PageSize = filter.PageSize
	if query.PageSize <= 0 {
		query.PageSize = defaultPageSize
	}
	if query.PageSize > maxPageSize {
		query.PageSize = maxPageSize
	}

	page, err := s.api.ListTickets(ctx, session.BackendToken, query)
	if err != nil {
		return nil, mapBackendError("tickets", err)
	}
	list := &TicketList{
		Items:      make([]TicketView, 0, len(page.Items)),
		TotalCount: page.TotalCount,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	for _, ticket := range page.Items {
		list.Items = append(list.Items, project(ticket, session.Actor))
	}
	return list, nil
}

// Create reports a new issue on behalf of the actor.
func (s *TicketService) Create(ctx context.Context, session *domain.Session, input TicketCreateInput) (*domain.Ticket, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.NewValidationError("title, description, location and severity required", map[string]any{"error": err.Error()})
	}
	severity, ok := domain.ParseSeverity(input.Severity)
	if !ok {
		return nil, apperrors.NewValidationError("unknown severity", map[string]any{
			"severity": input.Severity,
			"allowed":  []domain.Severity{domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh, domain.SeverityCritical},
		})
	}

	ticket, err := s.api.CreateTicket(ctx, session.BackendToken, backend.NewTicket{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Severity:    severity,
		IssueIDs:    input.IssueIDs,
	})
	if err != nil {
		return nil, mapBackendError("ticket", err)
	}

	s.logger.Info("ticket reported", zap.String("ticket_id", ticket.ID), zap.String("actor_id", session.Actor.ID))
	s.publish(ctx, session, ticket)
	return ticket, nil
}

// Dashboard counts the tickets in scope for the role view by status and lists
// those whose current step waits on the actor. The actor must hold the role.
func (s *TicketService) Dashboard(ctx context.Context, session *domain.Session, role domain.Role) (*Dashboard, error) {
	query, err := roleQuery(session.Actor, role)
	if err != nil {
		return nil, err
	}
	query.PageSize = dashboardPageSize

	counts := make(map[domain.TicketStatus]int, len(domain.TicketStatuses))
	dashboard := &Dashboard{Role: role, Awaiting: []TicketView{}}
	for page := 1; page <= dashboardMaxPages; page++ {
		query.Page = page
		result, err := s.api.ListTickets(ctx, session.BackendToken, query)
		if err != nil {
			return nil, mapBackendError("tickets", err)
		}
		dashboard.Total = result.TotalCount
		for _, ticket := range result.Items {
			view := project(ticket, session.Actor)
			counts[ticket.Status]++
			dashboard.Counted++
			if awaitsActor(view.Workflow) {
				dashboard.Awaiting = append(dashboard.Awaiting, view)
			}
		}
		if len(result.Items) < dashboardPageSize || dashboard.Counted >= result.TotalCount {
			break
		}
	}
	if dashboard.Counted < dashboard.Total {
		s.logger.Warn("dashboard counts truncated",
			zap.String("actor_id", session.Actor.ID),
			zap.String("role", string(role)),
			zap.Int("counted", dashboard.Counted),
			zap.Int("total", dashboard.Total))
	}

	for _, status := range domain.TicketStatuses {
		dashboard.Counts = append(dashboard.Counts, StatusCount{Status: status, Count: counts[status]})
		delete(counts, status)
	}
	unknown := make([]domain.TicketStatus, 0, len(counts))
	for status := range counts {
		unknown = append(unknown, status)
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	for _, status := range unknown {
		dashboard.Counts = append(dashboard.Counts, StatusCount{Status: status, Count: counts[status]})
	}
	return dashboard, nil
}

func (s *TicketService) publish(ctx context.Context, session *domain.Session, ticket *domain.Ticket) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketReported,
		TicketID:  ticket.ID,
		Actor:     events.ActorFrom(session.Actor),
		Timestamp: s.now().UTC(),
		Payload:   events.TicketReportedPayload{Title: ticket.Title, Severity: ticket.Severity},
	})
	if err != nil {
		s.logger.Warn("publish event", zap.String("type", string(events.EventTicketReported)), zap.Error(err))
	}
}

func project(ticket domain.Ticket, actor domain.Actor) TicketView {
	return TicketView{Ticket: ticket, Workflow: workflow.Project(ticket, actor)}
}

// scopeQuery limits listings: managers see everything, staff their
// assignments, reporters what they reported.
func scopeQuery(actor domain.Actor) (backend.TicketQuery, error) {
	switch {
	case actor.Roles.IsManagerLike():
		return backend.TicketQuery{}, nil
	case actor.Roles.Has(domain.RoleStaff):
		return backend.TicketQuery{AssignedToUserID: actor.ID}, nil
	case actor.Roles.Has(domain.RoleReporter):
		return backend.TicketQuery{CreatedByUserID: actor.ID}, nil
	default:
		return backend.TicketQuery{}, apperrors.NewForbidden("no helpdesk role")
	}
}

// roleQuery scopes a dashboard by the role being viewed rather than the
// actor's highest role.
func roleQuery(actor domain.Actor, role domain.Role) (backend.TicketQuery, error) {
	switch {
	case role == domain.RoleManager && actor.Roles.IsManagerLike():
		return backend.TicketQuery{}, nil
	case role == domain.RoleAdministrator && actor.Roles.Has(domain.RoleAdministrator):
		return backend.TicketQuery{}, nil
	case role == domain.RoleStaff && actor.Roles.Has(domain.RoleStaff):
		return backend.TicketQuery{AssignedToUserID: actor.ID}, nil
	case role == domain.RoleReporter && actor.Roles.Has(domain.RoleReporter):
		return backend.TicketQuery{CreatedByUserID: actor.ID}, nil
	default:
		return backend.TicketQuery{}, apperrors.NewForbidden("dashboard not available for this role")
	}
}

func awaitsActor(projection workflow.Projection) bool {
	current, ok := projection.Current()
	if !ok {
		return false
	}
	for _, action := range current.Actions {
		if projection.Can(action) {
			return true
		}
	}
	return false
}
