package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

const maxResponseBytes = 64 * 1024

// HTTPClient talks JSON to the integration service at BaseURL.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Syncer = (*HTTPClient)(nil)

// NewHTTPClient builds a client whose calls are bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type customerPayload struct {
	FirstName string  `json:"firstname"`
	LastName  *string `json:"lastname"`
	Email     string  `json:"email"`
	Company   string  `json:"company"`
	Phone     *string `json:"phone"`
}

type ticketPayload struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	Priority      string `json:"priority"`
	Category      string `json:"category"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type customerResponse struct {
	HubspotContactID json.RawMessage `json:"hubspot_contact_id"`
}

type ticketResponse struct {
	HubspotTicketID json.RawMessage `json:"hubspot_ticket_id"`
	LinkedToContact bool            `json:"linked_to_contact"`
}

type errorResponse struct {
	Detail  any    `json:"detail"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *HTTPClient) SyncCustomer(ctx context.Context, customer domain.Customer) Result {
	payload := customerPayload{
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Email:     customer.Email,
		Company:   customer.Company,
		Phone:     customer.Phone,
	}
	var out customerResponse
	if res, ok := c.do(ctx, http.MethodPost, "/customer", payload, &out); !ok {
		return res
	}
	return Result{Outcome: OutcomeSucceeded, ExternalID: rawID(out.HubspotContactID)}
}

func (c *HTTPClient) SyncTicket(ctx context.Context, ticket domain.Ticket, customer domain.Customer) Result {
	payload := newTicketPayload(ticket)
	payload.CustomerEmail = customer.Email
	var out ticketResponse
	if res, ok := c.do(ctx, http.MethodPost, "/ticket", payload, &out); !ok {
		return res
	}
	return Result{
		Outcome:         OutcomeSucceeded,
		ExternalID:      rawID(out.HubspotTicketID),
		LinkedToContact: out.LinkedToContact,
	}
}

func (c *HTTPClient) UpdateTicket(ctx context.Context, externalID string, ticket domain.Ticket) Result {
	path := "/ticket/" + url.PathEscape(externalID)
	if res, ok := c.do(ctx, http.MethodPatch, path, newTicketPayload(ticket), nil); !ok {
		return res
	}
	return Result{Outcome: OutcomeSucceeded, ExternalID: externalID}
}

func newTicketPayload(t domain.Ticket) ticketPayload {
	return ticketPayload{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Category:    string(t.Category),
	}
}

// do performs one request. On failure it returns the classified Result and
// false; on success it decodes the body into out (when non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, payload, out any) (Result, bool) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Outcome: OutcomeTransportFailed, Reason: fmt.Sprintf("encode request: %v", err)}, false
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Result{Outcome: OutcomeTransportFailed, Reason: fmt.Sprintf("build request: %v", err)}, false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(err), false
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classify(err), false
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{Outcome: OutcomeRemoteRejected, Reason: remoteReason(resp.StatusCode, raw)}, false
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return Result{Outcome: OutcomeTransportFailed, Reason: fmt.Sprintf("decode response: %v", err)}, false
		}
	}
	return Result{Outcome: OutcomeSucceeded}, true
}

// classify maps transport errors onto outcomes so callers never see them.
func classify(err error) Result {
	reason := err.Error()
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return Result{Outcome: OutcomeTimedOut, Reason: reason}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Result{Outcome: OutcomeTimedOut, Reason: reason}
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return Result{Outcome: OutcomeUnreachable, Reason: reason}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Result{Outcome: OutcomeUnreachable, Reason: reason}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return Result{Outcome: OutcomeUnreachable, Reason: reason}
	}
	return Result{Outcome: OutcomeTransportFailed, Reason: reason}
}

func remoteReason(status int, raw []byte) string {
	var body errorResponse
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Detail != nil:
			if s, ok := body.Detail.(string); ok {
				return s
			}
			if encoded, err := json.Marshal(body.Detail); err == nil {
				return string(encoded)
			}
		case body.Error != "":
			return body.Error
		case body.Message != "":
			return body.Message
		}
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return fmt.Sprintf("HTTP %d", status)
	}
	return fmt.Sprintf("HTTP %d: %s", status, text)
}

// rawID accepts identifiers sent either as JSON strings or numbers.
func rawID(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}
