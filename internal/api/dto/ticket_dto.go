package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// UnknownCustomer is shown when a ticket's customer row is missing.
const UnknownCustomer = "Unknown"

// AssignedToMe selects tickets assigned to the calling agent.
const AssignedToMe = "me"

// MaxTicketPageSize caps the limit query parameter.
const MaxTicketPageSize = 500

// TicketListQuery captures query filters for the listing endpoint.
type TicketListQuery struct {
	Status     string `query:"status"`
	Priority   string `query:"priority"`
	CustomerID string `query:"customer_id"`
	AssignedTo string `query:"assigned_to"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

// Filter turns the query into a repository filter. Status and priority take
// comma-separated values; assigned_to takes an agent id or "me", which
// resolves to agentID.
func (q TicketListQuery) Filter(agentID int64) (repository.TicketFilter, error) {
	var filter repository.TicketFilter
	for _, s := range splitList(q.Status) {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(s))
	}
	for _, p := range splitList(q.Priority) {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(p))
	}

	if raw := strings.TrimSpace(q.CustomerID); raw != "" {
		id, err := positiveID("customer_id", raw)
		if err != nil {
			return filter, err
		}
		filter.CustomerID = &id
	}

	switch raw := strings.TrimSpace(q.AssignedTo); {
	case raw == "":
	case strings.EqualFold(raw, AssignedToMe):
		if agentID <= 0 {
			return filter, apperrors.NewUnauthorized("authentication required")
		}
		id := agentID
		filter.AssignedToID = &id
	default:
		id, err := positiveID("assigned_to", raw)
		if err != nil {
			return filter, err
		}
		filter.AssignedToID = &id
	}

	if q.Limit < 0 || q.Limit > MaxTicketPageSize {
		return filter, apperrors.NewValidationError(
			fmt.Sprintf("limit must be between 0 and %d", MaxTicketPageSize),
			map[string]any{"field": "limit"})
	}
	if q.Offset < 0 {
		return filter, apperrors.NewValidationError("offset cannot be negative", map[string]any{"field": "offset"})
	}
	filter.Limit = q.Limit
	filter.Offset = q.Offset
	return filter, nil
}

func positiveID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(field+" must be a positive integer", map[string]any{"field": field})
	}
	return id, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TicketResponse is one row of the ticket listing.
type TicketResponse struct {
	ID              int64                 `json:"id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	Category        domain.TicketCategory `json:"category"`
	CustomerID      int64                 `json:"customer_id"`
	CustomerName    string                `json:"customer_name"`
	CustomerEmail   string                `json:"customer_email"`
	AssignedToID    *int64                `json:"assigned_to_id"`
	HubspotTicketID *string               `json:"hubspot_ticket_id"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// NewTicketResponse maps a ticket. A nil customer renders as "Unknown".
func NewTicketResponse(t *domain.Ticket, customer *domain.CustomerRef) TicketResponse {
	out := TicketResponse{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Status:          t.Status,
		Priority:        t.Priority,
		Category:        t.Category,
		CustomerID:      t.CustomerID,
		CustomerName:    UnknownCustomer,
		AssignedToID:    t.AssignedToID,
		HubspotTicketID: t.HubspotTicketID,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if customer != nil {
		out.CustomerName = customer.FullName()
		out.CustomerEmail = customer.Email
	}
	return out
}

// NewTicketList maps a joined listing; the result is never nil.
func NewTicketList(tickets []domain.TicketWithCustomer) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i].Ticket, tickets[i].Customer))
	}
	return out
}

// TicketCreateResponse reports the local save and the CRM outcome.
type TicketCreateResponse struct {
	Message         string `json:"message"`
	ID              int64  `json:"id"`
	SavedToDatabase bool   `json:"saved_to_database"`
	SavedToHubspot  bool   `json:"saved_to_hubspot"`
	HubspotTicketID string `json:"hubspot_ticket_id,omitempty"`
	LinkedToContact *bool  `json:"linked_to_contact,omitempty"`
	Warning         string `json:"warning,omitempty"`
}

// NewTicketCreateResponse maps a create result.
func NewTicketCreateResponse(res *service.TicketCreateResult) TicketCreateResponse {
	out := TicketCreateResponse{
		Message:         "Ticket created",
		ID:              res.Ticket.ID,
		SavedToDatabase: true,
		SavedToHubspot:  res.Sync.OK(),
		Warning:         res.Sync.Warning("Ticket"),
	}
	if res.Sync.OK() {
		linked := res.Sync.LinkedToContact
		out.HubspotTicketID = res.Sync.ExternalID
		out.LinkedToContact = &linked
	}
	return out
}

// TicketUpdateResponse reports the local update and the CRM patch outcome.
type TicketUpdateResponse struct {
	Message         string `json:"message"`
	SyncedToHubspot bool   `json:"synced_to_hubspot"`
	Warning         string `json:"warning,omitempty"`
}

// NewTicketUpdateResponse maps an update result.
func NewTicketUpdateResponse(res *service.TicketUpdateResult) TicketUpdateResponse {
	return TicketUpdateResponse{
		Message:         "Ticket updated successfully",
		SyncedToHubspot: res.Sync.OK(),
		Warning:         res.Sync.Warning("Ticket"),
	}
}
