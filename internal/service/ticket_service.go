package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/crm"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/validation"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	store  repository.Store
	crm    crm.Syncer
	events publisher
	logger *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store      repository.Store
	Syncer     crm.Syncer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TicketCreateResult carries the stored ticket and the CRM outcome.
type TicketCreateResult struct {
	Ticket *domain.Ticket
	Sync   crm.Result
}

// TicketUpdateResult carries the updated ticket and the CRM outcome.
type TicketUpdateResult struct {
	Ticket *domain.Ticket
	Sync   crm.Result
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	syncer := deps.Syncer
	if syncer == nil {
		syncer = crm.Disabled{}
	}
	return &TicketService{
		store:  deps.Store,
		crm:    syncer,
		events: publisher{dispatcher: deps.Dispatcher, logger: logger},
		logger: logger,
	}
}

// List returns tickets joined with their customers, ordered by id.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.TicketWithCustomer, error) {
	tickets, err := s.store.Repos().Tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

// Create stores a ticket for an existing customer and mirrors it to the CRM.
// On CRM success the remote id is written back onto the ticket.
func (s *TicketService) Create(ctx context.Context, actorID int64, payload validation.Payload) (*TicketCreateResult, error) {
	draft, err := validation.TicketCreate(payload)
	if err != nil {
		return nil, err
	}

	ticket := draft.NewTicket()
	var customer *domain.Customer
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		customer, err = r.Customers.GetByID(ctx, ticket.CustomerID)
		if err != nil {
			return referenceError(err, "Customer", ticket.CustomerID)
		}
		if err := checkAgent(ctx, r, ticket.AssignedToID); err != nil {
			return err
		}
		if err := r.Tickets.Create(ctx, ticket); err != nil {
			return invalidReferenceError(err, ticket)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	actor := actorOf(actorID)
	s.events.publish(ctx, events.New(events.EventTicketCreated, ticket.ID, actor, events.TicketCreatedPayload{
		CustomerID: ticket.CustomerID,
		Priority:   ticket.Priority,
		Title:      ticket.Title,
	}))

	res := s.crm.SyncTicket(ctx, *ticket, *customer)
	if res.OK() && res.ExternalID != "" {
		err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
			return r.Tickets.SetHubspotID(ctx, ticket.ID, res.ExternalID)
		})
		if err != nil {
			s.logger.Warn("store crm ticket id failed",
				zap.Int64("ticket_id", ticket.ID),
				zap.String("external_id", res.ExternalID),
				zap.Error(err))
		} else {
			externalID := res.ExternalID
			ticket.HubspotTicketID = &externalID
		}
	}
	s.events.syncFailed(ctx, "ticket", ticket.ID, actor, res)

	return &TicketCreateResult{Ticket: ticket, Sync: res}, nil
}

// Update applies a partial update and, when the ticket has a CRM id,
// patches the remote copy once. A failed patch is reported, not retried.
func (s *TicketService) Update(ctx context.Context, actorID, ticketID int64, payload validation.Payload) (*TicketUpdateResult, error) {
	patch, err := validation.TicketUpdate(payload)
	if err != nil {
		return nil, err
	}

	var before domain.Ticket
	var ticket *domain.Ticket
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		ticket, err = r.Tickets.GetByID(ctx, ticketID)
		if err != nil {
			return referenceError(err, "Ticket", ticketID)
		}
		before = *ticket

		if patch.CustomerID.Set {
			if _, err := r.Customers.GetByID(ctx, patch.CustomerID.Value); err != nil {
				return referenceError(err, "Customer", patch.CustomerID.Value)
			}
		}
		if patch.AssignedToID.Set {
			if err := checkAgent(ctx, r, patch.AssignedToID.Value); err != nil {
				return err
			}
		}

		patch.Apply(ticket)
		if err := r.Tickets.Update(ctx, ticket); err != nil {
			return referenceError(invalidReferenceError(err, ticket), "Ticket", ticketID)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	actor := actorOf(actorID)
	s.events.publish(ctx, events.New(events.EventTicketUpdated, ticket.ID, actor, events.TicketUpdatedPayload{
		OldStatus:   before.Status,
		NewStatus:   ticket.Status,
		OldPriority: before.Priority,
		NewPriority: ticket.Priority,
	}))
	if !sameAssignee(before.AssignedToID, ticket.AssignedToID) {
		s.events.publish(ctx, events.New(events.EventTicketAssigned, ticket.ID, actor, events.TicketAssignedPayload{
			AssigneeID: ticket.AssignedToID,
		}))
	}

	res := crm.Result{Outcome: crm.OutcomeSkipped, Reason: "ticket has no crm id"}
	if ticket.HubspotTicketID != nil && *ticket.HubspotTicketID != "" {
		res = s.crm.UpdateTicket(ctx, *ticket.HubspotTicketID, *ticket)
	}
	s.events.syncFailed(ctx, "ticket", ticket.ID, actor, res)

	return &TicketUpdateResult{Ticket: ticket, Sync: res}, nil
}

// Delete removes a ticket.
func (s *TicketService) Delete(ctx context.Context, actorID, ticketID int64) error {
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		return referenceError(r.Tickets.Delete(ctx, ticketID), "Ticket", ticketID)
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	s.events.publish(ctx, events.New(events.EventTicketDeleted, ticketID, actorOf(actorID), nil))
	return nil
}

// AssignToAgent makes agent the ticket's assignee.
func (s *TicketService) AssignToAgent(ctx context.Context, agent *domain.User, ticketID int64) (*domain.Ticket, error) {
	if agent == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	var ticket *domain.Ticket
	changed := false
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		var err error
		ticket, err = r.Tickets.GetByID(ctx, ticketID)
		if err != nil {
			return referenceError(err, "Ticket", ticketID)
		}
		if ticket.AssignedToID != nil && *ticket.AssignedToID == agent.ID {
			return nil
		}
		agentID := agent.ID
		ticket.AssignedToID = &agentID
		changed = true
		if err := r.Tickets.Update(ctx, ticket); err != nil {
			return referenceError(invalidReferenceError(err, ticket), "Ticket", ticketID)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if changed {
		s.events.publish(ctx, events.New(events.EventTicketAssigned, ticket.ID, actorOf(agent.ID), events.TicketAssignedPayload{
			AssigneeID: ticket.AssignedToID,
		}))
	}
	return ticket, nil
}

func checkAgent(ctx context.Context, r repository.Repositories, agentID *int64) error {
	if agentID == nil {
		return nil
	}
	if _, err := r.Users.GetByID(ctx, *agentID); err != nil {
		return referenceError(err, "Agent", *agentID)
	}
	return nil
}

// invalidReferenceError turns a foreign key violation on a ticket write into
// a 404 naming the missing customer or agent.
func invalidReferenceError(err error, ticket *domain.Ticket) error {
	if !errors.Is(err, domain.ErrInvalidReference) {
		return err
	}
	if domain.ReferencedColumn(err) == domain.ColumnAssignedToID && ticket.AssignedToID != nil {
		return apperrors.NewNotFound("Agent", map[string]any{"id": *ticket.AssignedToID})
	}
	return apperrors.NewNotFound("Customer", map[string]any{"customer_id": ticket.CustomerID})
}

// referenceError turns a missing row into a 404 naming the resource.
func referenceError(err error, resource string, id int64) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

func sameAssignee(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
