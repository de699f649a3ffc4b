// Package workflow projects a ticket status onto the helpdesk approval
// progression and decides which actions an actor may take next.
//
// Everything here is a pure function of its inputs. The ticket API remains the
// only authority on status; the projection is advisory.
package workflow

import (
	"fmt"

	"github.com/facilityops/helpdesk-gateway/internal/domain"
)

// CompletionState is the display state of a step.
type CompletionState string

const (
	StateCompleted CompletionState = "completed"
	StateCurrent   CompletionState = "current"
	StatePending   CompletionState = "pending"
)

// Step is one rendered entry of the progression.
type Step struct {
	ID          StepID            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	State       CompletionState   `json:"completion_state"`
	Responsible Responsible       `json:"responsible_role"`
	Actions     []domain.ActionID `json:"actions"`
}

// Projection is the workflow view of a ticket for one actor.
type Projection struct {
	Status  domain.TicketStatus `json:"status"`
	Known   bool                `json:"known"`
	Steps   []Step              `json:"steps"`
	Allowed []domain.ActionID   `json:"allowed_actions"`
}

// Current returns the step marked current, if any.
func (p Projection) Current() (Step, bool) {
	for _, step := range p.Steps {
		if step.State == StateCurrent {
			return step, true
		}
	}
	return Step{}, false
}

// Can reports whether action is among the allowed actions.
func (p Projection) Can(action domain.ActionID) bool {
	for _, allowed := range p.Allowed {
		if allowed == action {
			return true
		}
	}
	return false
}

// Project computes the steps and allowed actions for ticket as seen by actor.
func Project(ticket domain.Ticket, actor domain.Actor) Projection {
	row, ok := statusTable[ticket.Status]
	if !ok {
		return Projection{
			Status:  ticket.Status,
			Steps:   []Step{unknownStep(ticket.Status)},
			Allowed: []domain.ActionID{},
		}
	}

	out := Projection{
		Status:  ticket.Status,
		Known:   true,
		Steps:   buildSteps(row),
		Allowed: []domain.ActionID{},
	}
	for _, action := range domain.Actions {
		if CanPerform(ticket, actor, action) {
			out.Allowed = append(out.Allowed, action)
		}
	}
	return out
}

// Steps returns the progression for a status without evaluating permissions.
func Steps(status domain.TicketStatus) []Step {
	row, ok := statusTable[status]
	if !ok {
		return []Step{unknownStep(status)}
	}
	return buildSteps(row)
}

// CanPerform reports whether actor may invoke action on ticket right now.
func CanPerform(ticket domain.Ticket, actor domain.Actor, action domain.ActionID) bool {
	row, ok := statusTable[ticket.Status]
	if !ok {
		return false
	}
	if row.current != "" && containsAction(row.actions, action) {
		if permits(steps[row.current].responsible, ticket, actor) {
			return true
		}
	}
	for _, rule := range privilegedRules {
		if rule.action != action || !containsStatus(rule.statuses, ticket.Status) {
			continue
		}
		switch rule.scope {
		case scopeManager:
			if actor.Roles.IsManagerLike() {
				return true
			}
		case scopeCreator:
			if permits(ResponsibleReporter, ticket, actor) {
				return true
			}
		}
	}
	return false
}

func permits(responsible Responsible, ticket domain.Ticket, actor domain.Actor) bool {
	switch responsible {
	case ResponsibleManager:
		return actor.Roles.IsManagerLike()
	case ResponsibleStaff:
		return actor.Roles.Has(domain.RoleStaff) && actor.ID != "" && actor.ID == ticket.AssignedToUserID
	case ResponsibleReporter:
		return actor.Roles.Has(domain.RoleReporter) && actor.ID != "" && actor.ID == ticket.CreatedByUserID
	default:
		return false
	}
}

func buildSteps(row statusRow) []Step {
	out := make([]Step, 0, len(row.path))
	state := StateCompleted
	for _, id := range row.path {
		def := steps[id]
		step := Step{
			ID:          id,
			Title:       def.title,
			Description: def.description,
			Responsible: def.responsible,
			Actions:     []domain.ActionID{},
		}
		if id == row.current {
			step.State = StateCurrent
			step.Actions = append(step.Actions, row.actions...)
			state = StatePending
		} else {
			step.State = state
		}
		out = append(out, step)
	}
	return out
}

func unknownStep(status domain.TicketStatus) Step {
	return Step{
		ID:          StepUnknown,
		Title:       "Unknown Status",
		Description: fmt.Sprintf("Status %q is not recognised.", string(status)),
		State:       StatePending,
		Responsible: ResponsibleSystem,
		Actions:     []domain.ActionID{},
	}
}

func containsAction(actions []domain.ActionID, action domain.ActionID) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
