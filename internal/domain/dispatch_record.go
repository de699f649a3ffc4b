package domain

import "time"

// DispatchRecord is the journal entry written for every action sent to the
// ticket API.
type DispatchRecord struct {
	ID        string
	TicketID  string
	Action    ActionID
	ActorID   string
	Succeeded bool
	Message   string
	CreatedAt time.Time
}
