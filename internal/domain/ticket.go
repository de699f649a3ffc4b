package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states reported by the ticket API.
type TicketStatus string

const (
	TicketStatusReported                TicketStatus = "Reported"
	TicketStatusWaitingForAssignment    TicketStatus = "WaitingForAssignment"
	TicketStatusAssigned                TicketStatus = "Assigned"
	TicketStatusReviewing               TicketStatus = "Reviewing"
	TicketStatusInProgress              TicketStatus = "InProgress"
	TicketStatusWaitingForPartApproval  TicketStatus = "WaitingForPartApproval"
	TicketStatusWaitingForParts         TicketStatus = "WaitingForParts"
	TicketStatusWaitingForCloseApproval TicketStatus = "WaitingForCloseApproval"
	TicketStatusClosed                  TicketStatus = "Closed"
)

// TicketStatuses lists every known status in workflow order.
var TicketStatuses = []TicketStatus{
	TicketStatusReported,
	TicketStatusWaitingForAssignment,
	TicketStatusAssigned,
	TicketStatusReviewing,
	TicketStatusInProgress,
	TicketStatusWaitingForPartApproval,
	TicketStatusWaitingForParts,
	TicketStatusWaitingForCloseApproval,
	TicketStatusClosed,
}

// Known reports whether the status is one of the fixed enumeration values.
func (s TicketStatus) Known() bool {
	for _, known := range TicketStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Severity enumerates ticket urgency.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// ParseSeverity accepts the canonical four-level scale, case-insensitively.
// Legacy letter grades are not mapped and yield false.
func ParseSeverity(raw string) (Severity, bool) {
	for sev := range severityRank {
		if strings.EqualFold(string(sev), strings.TrimSpace(raw)) {
			return sev, true
		}
	}
	return Severity(raw), false
}

// Known reports whether the severity is on the canonical scale.
func (s Severity) Known() bool {
	_, ok := severityRank[s]
	return ok
}

// Rank orders severities; unknown values rank 0.
func (s Severity) Rank() int {
	return severityRank[s]
}

// TicketIssue is a problem tag attached to a ticket.
type TicketIssue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Ticket is the read-only projection served by the ticket API.
type Ticket struct {
	ID               string          `json:"id"`
	Code             string          `json:"code"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Location         string          `json:"location"`
	Status           TicketStatus    `json:"status"`
	Severity         Severity        `json:"severity"`
	AssignedToUserID string          `json:"assignedToUserId"`
	CreatedByUserID  string          `json:"createdByUserId"`
	CreatedAt        time.Time       `json:"createdAt"`
	AssignedAt       *time.Time      `json:"assignedAt,omitempty"`
	ResolvedAt       *time.Time      `json:"resolvedAt,omitempty"`
	ClosedAt         *time.Time      `json:"closedAt,omitempty"`
	DueAt            *time.Time      `json:"dueDate,omitempty"`
	Issues           []TicketIssue   `json:"issues"`
	Histories        []TicketHistory `json:"histories"`
}

// IsAssigned reports whether a staff member currently holds the ticket.
func (t Ticket) IsAssigned() bool {
	return strings.TrimSpace(t.AssignedToUserID) != ""
}
