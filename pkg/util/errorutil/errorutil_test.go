package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	wrapped := fmt.Errorf("load ticket: %w", NewNotFound("ticket", map[string]any{"ticket_id": "T1"}))
	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	assert.Equal(t, "T1", de.Details["ticket_id"])

	plain := ToDomainError(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.HTTPStatus)
}

func TestNewBackendFailure(t *testing.T) {
	cause := errors.New("status 409")
	err := NewBackendFailure("Ticket already closed", cause)

	de := ToDomainError(err)
	assert.Equal(t, http.StatusBadGateway, de.HTTPStatus)
	assert.Equal(t, "Ticket already closed", de.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Ticket already closed: status 409", err.Error())
}
