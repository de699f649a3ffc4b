package domain

import "time"

// TicketHistory is an audit entry returned alongside a ticket.
type TicketHistory struct {
	ID          string       `json:"id"`
	Action      string       `json:"action"`
	FromStatus  TicketStatus `json:"fromStatus,omitempty"`
	ToStatus    TicketStatus `json:"toStatus,omitempty"`
	Note        string       `json:"note,omitempty"`
	ChangedByID string       `json:"changedById,omitempty"`
	ChangedBy   string       `json:"changedBy,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}
