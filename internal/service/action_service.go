package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/facilityops/helpdesk-gateway/internal/dispatch"
	"github.com/facilityops/helpdesk-gateway/internal/domain"
	"github.com/facilityops/helpdesk-gateway/internal/workflow"
	apperrors "github.com/facilityops/helpdesk-gateway/pkg/util/errorutil"
)

// ActionService runs a user-chosen action against a ticket.
type ActionService struct {
	tickets    TicketAPI
	dispatcher *dispatch.Dispatcher
	logger     *zap.Logger
}

// ActionDependencies bundles collaborators for the action service.
type ActionDependencies struct {
	Tickets    TicketAPI
	Dispatcher *dispatch.Dispatcher
	Logger     *zap.Logger
}

// NewActionService constructs the service.
func NewActionService(deps ActionDependencies) *ActionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActionService{tickets: deps.Tickets, dispatcher: deps.Dispatcher, logger: logger}
}

// Perform validates the form, refetches the ticket, refuses actions the
// workflow does not offer the actor, then dispatches. An incomplete form never
// reaches the ticket API. The ticket API still decides the outcome.
func (s *ActionService) Perform(ctx context.Context, session *domain.Session, ticketID, rawAction string, form dispatch.Form) (dispatch.Outcome, error) {
	action, ok := domain.ParseAction(rawAction)
	if !ok {
		return dispatch.Outcome{}, apperrors.NewValidationError("unknown action", map[string]any{
			"action":  rawAction,
			"allowed": domain.Actions,
		})
	}

	req, err := s.dispatcher.Prepare(ticketID, action, form)
	if err != nil {
		return dispatch.Outcome{}, actionError(err)
	}

	ticket, err := s.tickets.GetTicket(ctx, session.BackendToken, ticketID)
	if err != nil {
		return dispatch.Outcome{}, mapBackendError("ticket", err)
	}
	if !workflow.CanPerform(*ticket, session.Actor, action) {
		s.logger.Info("action refused by workflow",
			zap.String("ticket_id", ticket.ID),
			zap.String("status", string(ticket.Status)),
			zap.String("action", string(action)),
			zap.String("actor_id", session.Actor.ID))
		return dispatch.Outcome{}, apperrors.NewForbidden("action not available for this ticket")
	}

	outcome, err := s.dispatcher.Dispatch(ctx, session, req)
	if err != nil {
		return dispatch.Outcome{}, actionError(err)
	}
	return outcome, nil
}

func actionError(err error) error {
	var verr *dispatch.ValidationError
	if errors.As(err, &verr) {
		return apperrors.NewValidationError("missing or invalid fields", map[string]any{"fields": verr.Fields})
	}
	var failure *dispatch.Failure
	if errors.As(err, &failure) {
		return apperrors.NewBackendFailure(failure.Message, err)
	}
	return apperrors.NewInternalError(err)
}
