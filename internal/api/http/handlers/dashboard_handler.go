package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/facilityops/helpdesk-gateway/internal/api/dto"
	"github.com/facilityops/helpdesk-gateway/internal/auth"
	"github.com/facilityops/helpdesk-gateway/internal/domain"
	"github.com/facilityops/helpdesk-gateway/internal/service"
	apperrors "github.com/facilityops/helpdesk-gateway/pkg/util/errorutil"
)

// DispatchLister reads the dispatch journal.
type DispatchLister interface {
	ListRecent(ctx context.Context, limit int) ([]domain.DispatchRecord, error)
}

// DashboardHandler serves the role landing pages and the admin journal view.
type DashboardHandler struct {
	tickets *service.TicketService
	journal DispatchLister
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(tickets *service.TicketService, journal DispatchLister) *DashboardHandler {
	return &DashboardHandler{tickets: tickets, journal: journal}
}

// Dashboard GET /{role}/dashboard, scoped to role.
func (h *DashboardHandler) Dashboard(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return h.dashboard(c, role)
	}
}

func (h *DashboardHandler) dashboard(c *fiber.Ctx, role domain.Role) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	dashboard, err := h.tickets.Dashboard(c.UserContext(), session, role)
	if err != nil {
		return err
	}

	resp := dto.DashboardResponse{
		Role:     dashboard.Role,
		Total:    dashboard.Total,
		Counted:  dashboard.Counted,
		Counts:   make([]dto.StatusCountResponse, 0, len(dashboard.Counts)),
		Awaiting: make([]dto.TicketSummary, 0, len(dashboard.Awaiting)),
	}
	for _, count := range dashboard.Counts {
		resp.Counts = append(resp.Counts, dto.StatusCountResponse{Status: count.Status, Count: count.Count})
	}
	for i := range dashboard.Awaiting {
		resp.Awaiting = append(resp.Awaiting, ticketSummary(&dashboard.Awaiting[i].Ticket, dashboard.Awaiting[i].Workflow.Allowed))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Dispatches GET /admin/dispatches.
func (h *DashboardHandler) Dispatches(c *fiber.Ctx) error {
	records, err := h.journal.ListRecent(c.UserContext(), parseInt(c.Query("limit"), 100))
	if err != nil {
		return apperrors.NewUnavailable("dispatch journal unavailable", err)
	}
	items := make([]dto.DispatchRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.DispatchRecordResponse{
			ID:        record.ID,
			TicketID:  record.TicketID,
			Action:    record.Action,
			ActorID:   record.ActorID,
			Succeeded: record.Succeeded,
			Message:   record.Message,
			CreatedAt: record.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
