package dto

import (
	"time"

	"github.com/facilityops/helpdesk-gateway/internal/domain"
)

// StatusCountResponse is the ticket count for one status.
type StatusCountResponse struct {
	Status domain.TicketStatus `json:"status"`
	Count  int                 `json:"count"`
}

// DashboardResponse summarizes the tickets in scope for one role view.
// Counted is below Total only when the counts were truncated.
type DashboardResponse struct {
	Role     domain.Role           `json:"role"`
	Total    int                   `json:"total"`
	Counted  int                   `json:"counted"`
	Counts   []StatusCountResponse `json:"counts"`
	Awaiting []TicketSummary       `json:"awaiting_action"`
}

// DispatchRecordResponse is one journal entry.
type DispatchRecordResponse struct {
	ID        string          `json:"id"`
	TicketID  string          `json:"ticket_id"`
	Action    domain.ActionID `json:"action"`
	ActorID   string          `json:"actor_id"`
	Succeeded bool            `json:"succeeded"`
	Message   string          `json:"message,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
