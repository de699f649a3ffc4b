package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/facilityops/helpdesk-gateway/internal/api/dto"
	"github.com/facilityops/helpdesk-gateway/internal/auth"
	"github.com/facilityops/helpdesk-gateway/internal/dispatch"
	"github.com/facilityops/helpdesk-gateway/internal/domain"
	"github.com/facilityops/helpdesk-gateway/internal/service"
	apperrors "github.com/facilityops/helpdesk-gateway/pkg/util/errorutil"
)

// TicketsHandler manages ticket views and actions.
type TicketsHandler struct {
	tickets *service.TicketService
	actions *service.ActionService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, actions *service.ActionService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, actions: actions}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Create(c.UserContext(), session, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Severity:    req.Severity,
		IssueIDs:    req.IssueIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket, nil)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	list, err := h.tickets.List(c.UserContext(), session, parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(list.Items))
	for i := range list.Items {
		items = append(items, ticketSummary(&list.Items[i].Ticket, list.Items[i].Workflow.Allowed))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.PageMeta{Page: list.Page, PageSize: list.PageSize, TotalCount: list.TotalCount},
	})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	view, err := h.tickets.Get(c.UserContext(), session, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(view)})
}

// PerformAction POST /tickets/:id/actions/:action.
func (h *TicketsHandler) PerformAction(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var form dispatch.Form
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&form); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	outcome, err := h.actions.Perform(c.UserContext(), session, c.Params("id"), c.Params("action"), form)
	if err != nil {
		return err
	}
	return c.JSON(dto.ActionResponse{Refetch: outcome.Refetch})
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{
		Page:     parseInt(c.Query("page"), 1),
		PageSize: parseInt(c.Query("page_size"), 20),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.Statuses = append(filter.Statuses, domain.TicketStatus(part))
			}
		}
	}
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket, allowed []domain.ActionID) dto.TicketSummary {
	if allowed == nil {
		allowed = []domain.ActionID{}
	}
	return dto.TicketSummary{
		ID:               ticket.ID,
		Code:             ticket.Code,
		Title:            ticket.Title,
		Location:         ticket.Location,
		Status:           ticket.Status,
		Severity:         ticket.Severity,
		AssignedToUserID: ticket.AssignedToUserID,
		CreatedByUserID:  ticket.CreatedByUserID,
		CreatedAt:        ticket.CreatedAt,
		DueAt:            ticket.DueAt,
		AllowedActions:   allowed,
	}
}

func ticketDetail(view *service.TicketView) dto.TicketDetailResponse {
	ticket := &view.Ticket
	issues := make([]dto.TicketIssueResponse, 0, len(ticket.Issues))
	for _, issue := range ticket.Issues {
		issues = append(issues, dto.TicketIssueResponse{ID: issue.ID, Name: issue.Name})
	}
	return dto.TicketDetailResponse{
		TicketSummary: ticketSummary(ticket, view.Workflow.Allowed),
		Description:   ticket.Description,
		AssignedAt:    ticket.AssignedAt,
		ResolvedAt:    ticket.ResolvedAt,
		ClosedAt:      ticket.ClosedAt,
		Issues:        issues,
		History:       historyResponses(ticket.Histories),
		Workflow:      view.Workflow,
	}
}

func historyResponses(entries []domain.TicketHistory) []dto.TicketHistoryResponse {
	resp := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.TicketHistoryResponse{
			ID:          entry.ID,
			Action:      entry.Action,
			FromStatus:  entry.FromStatus,
			ToStatus:    entry.ToStatus,
			Note:        entry.Note,
			ChangedByID: entry.ChangedByID,
			ChangedBy:   entry.ChangedBy,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return resp
}
