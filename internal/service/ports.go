package service

import (
	"context"
	"errors"

	"github.com/facilityops/helpdesk-gateway/internal/backend"
	"github.com/facilityops/helpdesk-gateway/internal/domain"
	apperrors "github.com/facilityops/helpdesk-gateway/pkg/util/errorutil"
)

// IdentityAPI is the login and identity surface of the ticket API.
type IdentityAPI interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResult, error)
	Me(ctx context.Context, token string) (*backend.Identity, error)
}

// TicketAPI is the ticket read and create surface of the ticket API.
type TicketAPI interface {
	GetTicket(ctx context.Context, token, ticketID string) (*domain.Ticket, error)
	ListTickets(ctx context.Context, token string, query backend.TicketQuery) (*backend.TicketPage, error)
	CreateTicket(ctx context.Context, token string, input backend.NewTicket) (*domain.Ticket, error)
}

// mapBackendError converts ticket API failures into client facing errors.
func mapBackendError(resource string, err error) error {
	if err == nil {
		return nil
	}
	if backend.IsNotFound(err) {
		return apperrors.NewNotFound(resource, nil)
	}
	if backend.IsUnauthorized(err) {
		return apperrors.NewUnauthorized("ticket service rejected the session, sign in again")
	}
	message := "The ticket service is unavailable. Please try again."
	var apiErr *backend.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}
	return apperrors.NewBackendFailure(message, err)
}
