// Package backend talks to the external facility ticket-management API.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/facilityops/helpdesk-gateway/internal/config"
	"github.com/facilityops/helpdesk-gateway/internal/domain"
)

// Error describes a failed call. Message carries the API-provided text, if any.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("ticket api: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("ticket api: status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("ticket api: status %d", e.StatusCode)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the ticket API.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether the API rejected the caller's token or credentials.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Identity is the session/identity endpoint payload.
type Identity struct {
	ID       string   `json:"id"`
	FullName string   `json:"fullName"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// LoginResult is returned by the login endpoint.
type LoginResult struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// TicketQuery filters the ticket list endpoint.
type TicketQuery struct {
	Statuses         []domain.TicketStatus
	AssignedToUserID string
	CreatedByUserID  string
	Page             int
	PageSize         int
}

// TicketPage is one page of tickets.
type TicketPage struct {
	Items      []domain.Ticket `json:"items"`
	TotalCount int             `json:"totalCount"`
}

// NewTicket is the payload for reporting an issue.
type NewTicket struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Severity    domain.Severity `json:"severity"`
	IssueIDs    []string        `json:"issueIds,omitempty"`
}

// Client wraps a resty client configured for the ticket API.
type Client struct {
	http *resty.Client
}

// NewClient builds a client. Retries stay disabled: every call is issued once.
func NewClient(cfg config.BackendConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout()).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &Client{http: client}
}

// Login exchanges credentials for an API access token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&result).
		Post("/api/auth/login")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me resolves the identity behind token.
func (c *Client) Me(ctx context.Context, token string) (*Identity, error) {
	var identity Identity
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&identity).
		Get("/api/auth/me")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &identity, nil
}

// GetTicket reads the current ticket projection.
func (c *Client) GetTicket(ctx context.Context, token, ticketID string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetPathParam("id", ticketID).
		SetResult(&ticket).
		Get("/api/tickets/{id}")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListTickets reads one page of tickets.
func (c *Client) ListTickets(ctx context.Context, token string, query TicketQuery) (*TicketPage, error) {
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token)
	for _, status := range query.Statuses {
		req.QueryParam.Add("status", string(status))
	}
	if query.AssignedToUserID != "" {
		req.SetQueryParam("assignedToUserId", query.AssignedToUserID)
	}
	if query.CreatedByUserID != "" {
		req.SetQueryParam("createdByUserId", query.CreatedByUserID)
	}
	if query.Page > 0 {
		req.SetQueryParam("page", strconv.Itoa(query.Page))
	}
	if query.PageSize > 0 {
		req.SetQueryParam("pageSize", strconv.Itoa(query.PageSize))
	}

	var page TicketPage
	resp, err := req.SetResult(&page).Get("/api/tickets")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []domain.Ticket{}
	}
	return &page, nil
}

// CreateTicket reports a new issue on behalf of the token holder.
func (c *Client) CreateTicket(ctx context.Context, token string, input NewTicket) (*domain.Ticket, error) {
	var ticket domain.Ticket
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(input).
		SetResult(&ticket).
		Post("/api/tickets")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Send issues one action request. The response body is ignored beyond success.
func (c *Client) Send(ctx context.Context, token, method, path string, body any) error {
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	return check(resp, err)
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return &Error{Err: err}
	}
	if resp.IsSuccess() {
		return nil
	}
	return &Error{StatusCode: resp.StatusCode(), Message: extractMessage(resp.Body())}
}

// errorBody covers the envelopes the ticket API is known to produce.
type errorBody struct {
	Message string          `json:"message"`
	Title   string          `json:"title"`
	Detail  string          `json:"detail"`
	Error   json.RawMessage `json:"error"`
}

func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(parsed.Message); msg != "" {
		return msg
	}
	if len(parsed.Error) > 0 {
		var asString string
		if json.Unmarshal(parsed.Error, &asString) == nil && strings.TrimSpace(asString) != "" {
			return strings.TrimSpace(asString)
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(parsed.Error, &nested) == nil && strings.TrimSpace(nested.Message) != "" {
			return strings.TrimSpace(nested.Message)
		}
	}
	if msg := strings.TrimSpace(parsed.Detail); msg != "" {
		return msg
	}
	return strings.TrimSpace(parsed.Title)
}
