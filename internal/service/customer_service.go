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

// Messages returned for customer conflicts.
const (
	MsgEmailExists        = "Email already exists"
	MsgCustomerHasTickets = "Cannot delete. Customer might have linked tickets."
)

// CustomerService coordinates customer workflows.
type CustomerService struct {
	store  repository.Store
	crm    crm.Syncer
	events publisher
	logger *zap.Logger
}

// CustomerDependencies bundles collaborators for the customer service.
type CustomerDependencies struct {
	Store      repository.Store
	Syncer     crm.Syncer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// CustomerCreateResult carries the stored customer and the CRM outcome.
type CustomerCreateResult struct {
	Customer *domain.Customer
	Sync     crm.Result
}

// NewCustomerService constructs the service.
func NewCustomerService(deps CustomerDependencies) *CustomerService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	syncer := deps.Syncer
	if syncer == nil {
		syncer = crm.Disabled{}
	}
	return &CustomerService{
		store:  deps.Store,
		crm:    syncer,
		events: publisher{dispatcher: deps.Dispatcher, logger: logger},
		logger: logger,
	}
}

// List returns every customer ordered by id.
func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.store.Repos().Customers.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return customers, nil
}

// Create validates and stores a customer, then mirrors it to the CRM. The
// CRM outcome never turns a stored customer into an error.
func (s *CustomerService) Create(ctx context.Context, actorID int64, payload validation.Payload) (*CustomerCreateResult, error) {
	draft, err := validation.CustomerCreate(payload)
	if err != nil {
		return nil, err
	}

	customer := draft.NewCustomer()
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		return r.Customers.Create(ctx, customer)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperrors.NewConflict(MsgEmailExists, map[string]any{"field": "email"})
		}
		return nil, apperrors.MapError(err)
	}

	actor := actorOf(actorID)
	s.events.publish(ctx, events.New(events.EventCustomerCreated, customer.ID, actor, events.CustomerPayload{
		Email: customer.Email,
		Name:  customer.FullName(),
	}))

	res := s.crm.SyncCustomer(ctx, *customer)
	s.events.syncFailed(ctx, "customer", customer.ID, actor, res)

	return &CustomerCreateResult{Customer: customer, Sync: res}, nil
}

// GetByName looks a customer up by "firstname[ lastname]".
func (s *CustomerService) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	customer, err := s.store.Repos().Customers.GetByName(ctx, domain.CollapseSpaces(name))
	if err != nil {
		return nil, customerLookupError(err, name)
	}
	return customer, nil
}

// UpdateByName applies a partial update; absent keys keep their stored values.
func (s *CustomerService) UpdateByName(ctx context.Context, actorID int64, name string, payload validation.Payload) (*domain.Customer, error) {
	patch, err := validation.CustomerUpdate(payload)
	if err != nil {
		return nil, err
	}

	var updated *domain.Customer
	err = s.store.WithinTx(ctx, func(r repository.Repositories) error {
		customer, err := r.Customers.GetByName(ctx, domain.CollapseSpaces(name))
		if err != nil {
			return customerLookupError(err, name)
		}
		patch.Apply(customer)
		if err := r.Customers.Update(ctx, customer); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return apperrors.NewConflict(MsgEmailExists, map[string]any{"field": "email"})
			}
			return err
		}
		updated = customer
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.events.publish(ctx, events.New(events.EventCustomerUpdated, updated.ID, actorOf(actorID), events.CustomerPayload{
		Email: updated.Email,
		Name:  updated.FullName(),
	}))
	return updated, nil
}

// DeleteByName removes a customer that no ticket references.
func (s *CustomerService) DeleteByName(ctx context.Context, actorID int64, name string) error {
	var deleted *domain.Customer
	err := s.store.WithinTx(ctx, func(r repository.Repositories) error {
		customer, err := r.Customers.GetByName(ctx, domain.CollapseSpaces(name))
		if err != nil {
			return customerLookupError(err, name)
		}
		linked, err := r.Tickets.CountByCustomer(ctx, customer.ID)
		if err != nil {
			return err
		}
		if linked > 0 {
			return apperrors.NewConflict(MsgCustomerHasTickets, map[string]any{"tickets": linked})
		}
		if err := r.Customers.Delete(ctx, customer.ID); err != nil {
			if errors.Is(err, domain.ErrReferenced) {
				return apperrors.NewConflict(MsgCustomerHasTickets, nil)
			}
			return err
		}
		deleted = customer
		return nil
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.events.publish(ctx, events.New(events.EventCustomerDeleted, deleted.ID, actorOf(actorID), events.CustomerPayload{
		Email: deleted.Email,
		Name:  deleted.FullName(),
	}))
	return nil
}

func customerLookupError(err error, name string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperrors.NewNotFound("Customer", map[string]any{"name": name})
	}
	return err
}
