package dispatch

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facilityops/helpdesk-gateway/internal/backend"
	"github.com/facilityops/helpdesk-gateway/internal/domain"
	"github.com/facilityops/helpdesk-gateway/internal/events"
	"github.com/facilityops/helpdesk-gateway/internal/observability"
)

type sentCall struct {
	token  string
	method string
	path   string
	body   any
}

type fakeSender struct {
	calls []sentCall
	err   error
}

func (f *fakeSender) Send(ctx context.Context, token, method, path string, body any) error {
	f.calls = append(f.calls, sentCall{token: token, method: method, path: path, body: body})
	return f.err
}

type fakeJournal struct {
	entries []domain.DispatchRecord
	err     error
}

func (f *fakeJournal) Record(ctx context.Context, record *domain.DispatchRecord) error {
	f.entries = append(f.entries, *record)
	return f.err
}

func testSession() *domain.Session {
	return &domain.Session{
		ID:           "S1",
		BackendToken: "api-token",
		Actor:        domain.Actor{ID: "U1", Roles: domain.NewRoles(domain.RoleStaff)},
	}
}

func fieldNames(err error) []string {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	var out []string
	for _, f := range verr.Fields {
		out = append(out, f.Field)
	}
	return out
}

func TestBuildRequest_RequiredFields(t *testing.T) {
	cases := []struct {
		name    string
		action  domain.ActionID
		form    Form
		missing []string
	}{
		{"request-close blank reason", domain.ActionRequestClose, Form{Reason: "   "}, []string{"reason"}},
		{"complete needs both", domain.ActionComplete, Form{CompletionNotes: "replaced valve"}, []string{"resolution_summary"}},
		{"complete empty", domain.ActionComplete, Form{}, []string{"completion_notes", "resolution_summary"}},
		{"reassign", domain.ActionReassign, Form{AssigneeID: "U9"}, []string{"reason"}},
		{"assign", domain.ActionAssign, Form{Notes: "urgent"}, []string{"assignee_id"}},
		{"update-progress", domain.ActionUpdateProgress, Form{}, []string{"notes"}},
		{"request-parts", domain.ActionRequestParts, Form{PartName: "valve", Quantity: 0, EstimatedCost: 12.5, Reason: "leak"}, []string{"vendor", "quantity"}},
		{"review decision", domain.ActionReviewClose, Form{Decision: "maybe"}, []string{"decision"}},
		{"review reject needs reason", domain.ActionReviewParts, Form{Decision: "Reject"}, []string{"reason"}},
		{"unassign", domain.ActionUnassign, Form{}, []string{"reason"}},
		{"reopen", domain.ActionReopen, Form{}, []string{"reason"}},
		{"cancel", domain.ActionCancel, Form{Reason: "\t"}, []string{"reason"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildRequest("T1", tc.action, tc.form)
			require.Error(t, err)
			assert.Equal(t, tc.missing, fieldNames(err))
		})
	}
}

func TestBuildRequest_Valid(t *testing.T) {
	req, err := BuildRequest("T 1", domain.ActionRequestClose, Form{Reason: "  work finished  "})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/tickets/T%201/close-approval", req.Path)
	assert.Equal(t, reasonBody{Reason: "work finished"}, req.Body)

	req, err = BuildRequest("T1", domain.ActionReviewClose, Form{Decision: "approve"})
	require.NoError(t, err)
	assert.Equal(t, reviewBody{Decision: "approve"}, req.Body)

	req, err = BuildRequest("T1", domain.ActionStartWork, Form{})
	require.NoError(t, err)
	assert.Equal(t, "/api/tickets/T1/start", req.Path)

	req, err = BuildRequest("T1", domain.ActionComplete, Form{CompletionNotes: "done", ResolutionSummary: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, req.Method)
}

func TestBuildRequest_EveryActionHasRoute(t *testing.T) {
	for _, action := range domain.Actions {
		_, ok := routes[action]
		assert.True(t, ok, action)
	}
}

func TestBuildRequest_UnknownActionAndTicket(t *testing.T) {
	_, err := BuildRequest("T1", "bulk-update", Form{})
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = BuildRequest(" ", domain.ActionStartWork, Form{})
	assert.Equal(t, []string{"ticket_id"}, fieldNames(err))
}

func TestDispatcher_SubmitBlockedLocally(t *testing.T) {
	sender := &fakeSender{}
	journal := &fakeJournal{}
	d := NewDispatcher(Dependencies{Sender: sender, Journal: journal, Metrics: observability.NewMetrics("test")})

	_, err := d.Submit(context.Background(), testSession(), "T1", domain.ActionRequestClose, Form{Reason: ""})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, sender.calls)
	assert.Empty(t, journal.entries)
}

func TestDispatcher_SuccessSignalsRefetch(t *testing.T) {
	sender := &fakeSender{}
	journal := &fakeJournal{}
	bus := events.NewInMemoryDispatcher()
	var published []events.Event
	bus.Subscribe(events.EventActionDispatched, func(ctx context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})
	d := NewDispatcher(Dependencies{Sender: sender, Journal: journal, Events: bus})

	outcome, err := d.Submit(context.Background(), testSession(), "T1", domain.ActionRequestClose, Form{Reason: "finished"})
	require.NoError(t, err)
	assert.True(t, outcome.Refetch)

	require.Len(t, sender.calls, 1)
	assert.Equal(t, "api-token", sender.calls[0].token)
	assert.Equal(t, "/api/tickets/T1/close-approval", sender.calls[0].path)

	require.Len(t, journal.entries, 1)
	assert.True(t, journal.entries[0].Succeeded)
	assert.Equal(t, "U1", journal.entries[0].ActorID)

	require.Len(t, published, 1)
	assert.Equal(t, "T1", published[0].TicketID)
}

func TestDispatcher_FailureUsesBackendMessage(t *testing.T) {
	sender := &fakeSender{err: &backend.Error{StatusCode: http.StatusConflict, Message: "Ticket already closed"}}
	journal := &fakeJournal{err: errors.New("db down")}
	d := NewDispatcher(Dependencies{Sender: sender, Journal: journal})

	outcome, err := d.Submit(context.Background(), testSession(), "T1", domain.ActionStartWork, Form{})
	assert.False(t, outcome.Refetch)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "Ticket already closed", failure.Message)
	assert.Equal(t, http.StatusConflict, failure.StatusCode)
	assert.Len(t, sender.calls, 1)
	require.Len(t, journal.entries, 1)
	assert.False(t, journal.entries[0].Succeeded)
}

func TestDispatcher_FailureFallbackMessage(t *testing.T) {
	transport := errors.New("connection refused")
	sender := &fakeSender{err: &backend.Error{Err: transport}}
	d := NewDispatcher(Dependencies{Sender: sender})

	_, err := d.Submit(context.Background(), testSession(), "T1", domain.ActionStartWork, Form{})

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, FallbackMessage, failure.Message)
	assert.ErrorIs(t, err, transport)
	assert.Len(t, sender.calls, 1)
}

func TestDispatcher_PrepareDoesNotSend(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(Dependencies{Sender: sender})

	_, err := d.Prepare("T1", domain.ActionCancel, Form{})
	assert.Equal(t, []string{"reason"}, fieldNames(err))

	req, err := d.Prepare("T1", domain.ActionCancel, Form{Reason: "duplicate"})
	require.NoError(t, err)
	assert.Equal(t, "/api/tickets/T1/cancel", req.Path)
	assert.Empty(t, sender.calls)
}
