package dto

import (
	"time"

	"github.com/facilityops/helpdesk-gateway/internal/domain"
	"github.com/facilityops/helpdesk-gateway/internal/workflow"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Severity    string   `json:"severity"`
	IssueIDs    []string `json:"issue_ids"`
}

// TicketSummary response.
type TicketSummary struct {
	ID               string              `json:"id"`
	Code             string              `json:"code"`
	Title            string              `json:"title"`
	Location         string              `json:"location"`
	Status           domain.TicketStatus `json:"status"`
	Severity         domain.Severity     `json:"severity"`
	AssignedToUserID string              `json:"assigned_to_user_id,omitempty"`
	CreatedByUserID  string              `json:"created_by_user_id"`
	CreatedAt        time.Time           `json:"created_at"`
	DueAt            *time.Time          `json:"due_at,omitempty"`
	AllowedActions   []domain.ActionID   `json:"allowed_actions"`
}

// TicketDetailResponse provides full ticket info with its workflow projection.
type TicketDetailResponse struct {
	TicketSummary
	Description string                  `json:"description"`
	AssignedAt  *time.Time              `json:"assigned_at,omitempty"`
	ResolvedAt  *time.Time              `json:"resolved_at,omitempty"`
	ClosedAt    *time.Time              `json:"closed_at,omitempty"`
	Issues      []TicketIssueResponse   `json:"issues"`
	History     []TicketHistoryResponse `json:"history"`
	Workflow    workflow.Projection     `json:"workflow"`
}

// TicketIssueResponse is a problem tag.
type TicketIssueResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID          string              `json:"id"`
	Action      string              `json:"action"`
	FromStatus  domain.TicketStatus `json:"from_status,omitempty"`
	ToStatus    domain.TicketStatus `json:"to_status,omitempty"`
	Note        string              `json:"note,omitempty"`
	ChangedByID string              `json:"changed_by_id"`
	ChangedBy   string              `json:"changed_by,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// PageMeta describes a listing page.
type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// ActionResponse tells the caller to reload the ticket.
type ActionResponse struct {
	Refetch bool `json:"refetch"`
}
