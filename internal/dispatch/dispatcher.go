// Package dispatch turns a chosen ticket action into exactly one request to
// the ticket API and reports the outcome.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/facilityops/helpdesk-gateway/internal/backend"
	"github.com/facilityops/helpdesk-gateway/internal/domain"
	"github.com/facilityops/helpdesk-gateway/internal/events"
	"github.com/facilityops/helpdesk-gateway/internal/observability"
)

// FallbackMessage is shown when the ticket API gives no usable message.
const FallbackMessage = "The action could not be completed. Please try again."

const (
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
	outcomeSucceeded = "succeeded"
)

// Sender issues one call to the ticket API.
type Sender interface {
	Send(ctx context.Context, token, method, path string, body any) error
}

// Journal persists dispatch outcomes.
type Journal interface {
	Record(ctx context.Context, record *domain.DispatchRecord) error
}

// Outcome tells the caller what to do after a successful dispatch.
type Outcome struct {
	Refetch bool `json:"refetch"`
}

// Failure is a transport or ticket API failure. Message is safe to show users.
type Failure struct {
	Action     domain.ActionID
	StatusCode int
	Message    string
	Err        error
}

func (f *Failure) Error() string {
	return string(f.Action) + ": " + f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Dependencies bundles collaborators for the dispatcher.
type Dependencies struct {
	Sender  Sender
	Journal Journal
	Events  events.Dispatcher
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// Dispatcher sends actions without retries and without touching ticket state.
type Dispatcher struct {
	sender  Sender
	journal Journal
	events  events.Dispatcher
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewDispatcher constructs a dispatcher.
func NewDispatcher(deps Dependencies) *Dispatcher {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sender:  deps.Sender,
		journal: deps.Journal,
		events:  deps.Events,
		metrics: deps.Metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Submit validates the form and, only when it is complete, dispatches it.
func (d *Dispatcher) Submit(ctx context.Context, session *domain.Session, ticketID string, action domain.ActionID, form Form) (Outcome, error) {
	req, err := d.Prepare(ticketID, action, form)
	if err != nil {
		return Outcome{}, err
	}
	return d.Dispatch(ctx, session, req)
}

// Prepare builds the request for action without any I/O and counts rejected
// forms.
func (d *Dispatcher) Prepare(ticketID string, action domain.ActionID, form Form) (Request, error) {
	req, err := BuildRequest(ticketID, action, form)
	if err != nil {
		d.metrics.RecordAction(string(action), outcomeRejected)
		return Request{}, err
	}
	return req, nil
}

// Dispatch issues exactly one call for req.
func (d *Dispatcher) Dispatch(ctx context.Context, session *domain.Session, req Request) (Outcome, error) {
	err := d.sender.Send(ctx, session.BackendToken, req.Method, req.Path, req.Body)
	if err != nil {
		failure := toFailure(req.Action, err)
		d.metrics.RecordAction(string(req.Action), outcomeFailed)
		d.logger.Warn("ticket action failed",
			zap.String("ticket_id", req.TicketID),
			zap.String("action", string(req.Action)),
			zap.String("actor_id", session.Actor.ID),
			zap.Int("status_code", failure.StatusCode),
			zap.Error(err))
		d.record(ctx, session, req, false, failure.Message)
		d.publish(ctx, session, req, events.EventActionFailed, events.ActionFailedPayload{
			Action:     req.Action,
			Message:    failure.Message,
			StatusCode: failure.StatusCode,
		})
		return Outcome{}, failure
	}

	d.metrics.RecordAction(string(req.Action), outcomeSucceeded)
	d.logger.Info("ticket action dispatched",
		zap.String("ticket_id", req.TicketID),
		zap.String("action", string(req.Action)),
		zap.String("actor_id", session.Actor.ID))
	d.record(ctx, session, req, true, "")
	d.publish(ctx, session, req, events.EventActionDispatched, events.ActionDispatchedPayload{
		Action: req.Action,
		Method: req.Method,
		Path:   req.Path,
	})
	return Outcome{Refetch: true}, nil
}

func toFailure(action domain.ActionID, err error) *Failure {
	failure := &Failure{Action: action, Message: FallbackMessage, Err: err}
	var apiErr *backend.Error
	if errors.As(err, &apiErr) {
		failure.StatusCode = apiErr.StatusCode
		if apiErr.Message != "" {
			failure.Message = apiErr.Message
		}
	}
	return failure
}

func (d *Dispatcher) record(ctx context.Context, session *domain.Session, req Request, ok bool, message string) {
	if d.journal == nil {
		return
	}
	record := &domain.DispatchRecord{
		ID:        uuid.NewString(),
		TicketID:  req.TicketID,
		Action:    req.Action,
		ActorID:   session.Actor.ID,
		Succeeded: ok,
		Message:   message,
		CreatedAt: d.now().UTC(),
	}
	if err := d.journal.Record(ctx, record); err != nil {
		d.logger.Error("record dispatch journal", zap.String("ticket_id", req.TicketID), zap.Error(err))
	}
}

func (d *Dispatcher) publish(ctx context.Context, session *domain.Session, req Request, eventType events.EventType, payload any) {
	if d.events == nil {
		return
	}
	err := d.events.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  req.TicketID,
		Actor:     events.ActorFrom(session.Actor),
		Timestamp: d.now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		d.logger.Warn("publish event", zap.String("type", string(eventType)), zap.Error(err))
	}
}
