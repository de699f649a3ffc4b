package dispatch

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/facilityops/helpdesk-gateway/internal/domain"
)

// ErrUnknownAction is returned for identifiers with no route.
var ErrUnknownAction = errors.New("unknown action")

// Form carries what the user entered for an action.
type Form struct {
	AssigneeID        string     `json:"assignee_id"`
	Notes             string     `json:"notes"`
	Reason            string     `json:"reason"`
	Decision          string     `json:"decision"`
	PartName          string     `json:"part_name"`
	Vendor            string     `json:"vendor"`
	Quantity          int        `json:"quantity"`
	EstimatedCost     float64    `json:"estimated_cost"`
	CompletionNotes   string     `json:"completion_notes"`
	ResolutionSummary string     `json:"resolution_summary"`
	DueAt             *time.Time `json:"due_at"`
}

func (f Form) trimmed() Form {
	f.AssigneeID = strings.TrimSpace(f.AssigneeID)
	f.Notes = strings.TrimSpace(f.Notes)
	f.Reason = strings.TrimSpace(f.Reason)
	f.Decision = strings.ToLower(strings.TrimSpace(f.Decision))
	f.PartName = strings.TrimSpace(f.PartName)
	f.Vendor = strings.TrimSpace(f.Vendor)
	f.CompletionNotes = strings.TrimSpace(f.CompletionNotes)
	f.ResolutionSummary = strings.TrimSpace(f.ResolutionSummary)
	return f
}

// Request is one outbound call to the ticket API.
type Request struct {
	TicketID string
	Action   domain.ActionID
	Method   string
	Path     string
	Body     any
}

// FieldError names one missing or invalid form field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError blocks submission before any network call.
type ValidationError struct {
	Action domain.ActionID
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("%s: missing or invalid fields: %s", e.Action, strings.Join(names, ", "))
}

// Request bodies use the ticket API's field names; the form tag names the
// user-facing field reported in validation errors.

type assignBody struct {
	AssigneeID string     `json:"assigneeId" form:"assignee_id" validate:"required"`
	Notes      string     `json:"notes,omitempty"`
	DueAt      *time.Time `json:"dueDate,omitempty"`
}

type startWorkBody struct {
	Notes string `json:"notes,omitempty"`
}

type progressBody struct {
	Notes string `json:"notes" form:"notes" validate:"required"`
}

type partsBody struct {
	PartName      string  `json:"partName" form:"part_name" validate:"required"`
	Vendor        string  `json:"vendor" form:"vendor" validate:"required"`
	Quantity      int     `json:"quantity" form:"quantity" validate:"gt=0"`
	EstimatedCost float64 `json:"estimatedCost" form:"estimated_cost" validate:"gt=0"`
	Reason        string  `json:"reason" form:"reason" validate:"required"`
}

type reasonBody struct {
	Reason string `json:"reason" form:"reason" validate:"required"`
}

type reviewBody struct {
	Decision string `json:"decision" form:"decision" validate:"required,oneof=approve reject"`
	Reason   string `json:"reason,omitempty" form:"reason" validate:"required_if=Decision reject"`
}

type completeBody struct {
	CompletionNotes   string `json:"completionNotes" form:"completion_notes" validate:"required"`
	ResolutionSummary string `json:"resolutionSummary" form:"resolution_summary" validate:"required"`
}

type reassignBody struct {
	AssigneeID string `json:"assigneeId" form:"assignee_id" validate:"required"`
	Reason     string `json:"reason" form:"reason" validate:"required"`
}

type route struct {
	method string
	path   string
	body   func(Form) any
}

// routes is the action endpoint contract of the ticket API.
var routes = map[domain.ActionID]route{
	domain.ActionAssign: {http.MethodPut, "/api/tickets/%s/assign", func(f Form) any {
		return assignBody{AssigneeID: f.AssigneeID, Notes: f.Notes, DueAt: f.DueAt}
	}},
	domain.ActionStartWork: {http.MethodPut, "/api/tickets/%s/start", func(f Form) any {
		return startWorkBody{Notes: f.Notes}
	}},
	domain.ActionUpdateProgress: {http.MethodPost, "/api/tickets/%s/progress", func(f Form) any {
		return progressBody{Notes: f.Notes}
	}},
	domain.ActionRequestParts: {http.MethodPost, "/api/tickets/%s/order-part-approval", func(f Form) any {
		return partsBody{PartName: f.PartName, Vendor: f.Vendor, Quantity: f.Quantity, EstimatedCost: f.EstimatedCost, Reason: f.Reason}
	}},
	domain.ActionRequestClose: {http.MethodPost, "/api/tickets/%s/close-approval", func(f Form) any {
		return reasonBody{Reason: f.Reason}
	}},
	domain.ActionReviewParts: {http.MethodPut, "/api/tickets/%s/order-part-approval/review", func(f Form) any {
		return reviewBody{Decision: f.Decision, Reason: f.Reason}
	}},
	domain.ActionReviewClose: {http.MethodPut, "/api/tickets/%s/close-approval/review", func(f Form) any {
		return reviewBody{Decision: f.Decision, Reason: f.Reason}
	}},
	domain.ActionComplete: {http.MethodPut, "/api/tickets/%s/complete", func(f Form) any {
		return completeBody{CompletionNotes: f.CompletionNotes, ResolutionSummary: f.ResolutionSummary}
	}},
	domain.ActionUnassign: {http.MethodPut, "/api/tickets/%s/unassign", func(f Form) any {
		return reasonBody{Reason: f.Reason}
	}},
	domain.ActionReassign: {http.MethodPut, "/api/tickets/%s/reassign", func(f Form) any {
		return reassignBody{AssigneeID: f.AssigneeID, Reason: f.Reason}
	}},
	domain.ActionReopen: {http.MethodPut, "/api/tickets/%s/reopen", func(f Form) any {
		return reasonBody{Reason: f.Reason}
	}},
	domain.ActionCancel: {http.MethodPut, "/api/tickets/%s/cancel", func(f Form) any {
		return reasonBody{Reason: f.Reason}
	}},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("form"); name != "" {
			return name
		}
		return field.Name
	})
	return v
}

// BuildRequest validates the form for action and builds the outbound request.
// It performs no I/O.
func BuildRequest(ticketID string, action domain.ActionID, form Form) (Request, error) {
	rt, ok := routes[action]
	if !ok {
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return Request{}, &ValidationError{Action: action, Fields: []FieldError{{Field: "ticket_id", Rule: "required"}}}
	}

	body := rt.body(form.trimmed())
	if err := validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Request{}, err
		}
		out := &ValidationError{Action: action}
		for _, fe := range verrs {
			out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
		return Request{}, out
	}

	return Request{
		TicketID: ticketID,
		Action:   action,
		Method:   rt.method,
		Path:     fmt.Sprintf(rt.path, url.PathEscape(ticketID)),
		Body:     body,
	}, nil
}
