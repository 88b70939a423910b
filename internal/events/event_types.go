package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/crm"
	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCustomerCreated EventType = "customer_created"
	EventCustomerUpdated EventType = "customer_updated"
	EventCustomerDeleted EventType = "customer_deleted"
	EventTicketCreated   EventType = "ticket_created"
	EventTicketUpdated   EventType = "ticket_updated"
	EventTicketDeleted   EventType = "ticket_deleted"
	EventTicketAssigned  EventType = "ticket_assigned"
	EventCRMSyncFailed   EventType = "crm_sync_failed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	EntityID  int64     `json:"entity_id"`
	ActorID   *int64    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, entityID int64, actorID *int64, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// CustomerPayload payload.
type CustomerPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerID int64                 `json:"customer_id"`
	Priority   domain.TicketPriority `json:"priority"`
	Title      string                `json:"title"`
}

// TicketUpdatedPayload payload.
type TicketUpdatedPayload struct {
	OldStatus   domain.TicketStatus   `json:"old_status"`
	NewStatus   domain.TicketStatus   `json:"new_status"`
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID *int64 `json:"assignee_id,omitempty"`
}

// CRMSyncFailedPayload payload.
type CRMSyncFailedPayload struct {
	Entity  string      `json:"entity"`
	Outcome crm.Outcome `json:"outcome"`
	Reason  string      `json:"reason"`
}
