package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

type ticketRepository struct {
	v *view
}

func storedTicket(t domain.Ticket) domain.Ticket {
	t.AssignedToID = ptrCopy(t.AssignedToID)
	t.HubspotTicketID = ptrCopy(t.HubspotTicketID)
	return t
}

func checkTicketRefs(st *state, t *domain.Ticket) error {
	if _, ok := st.customers[t.CustomerID]; !ok {
		return &domain.ReferenceError{Column: domain.ColumnCustomerID, Err: domain.ErrInvalidReference}
	}
	if t.AssignedToID != nil {
		if _, ok := st.users[*t.AssignedToID]; !ok {
			return &domain.ReferenceError{Column: domain.ColumnAssignedToID, Err: domain.ErrInvalidReference}
		}
	}
	return nil
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	return r.v.write(func(st *state) error {
		if err := checkTicketRefs(st, ticket); err != nil {
			return err
		}
		st.nextTicket++
		now := r.v.now()
		ticket.ID = st.nextTicket
		ticket.CreatedAt = now
		ticket.UpdatedAt = now
		ticket.HubspotTicketID = nil
		st.tickets[ticket.ID] = storedTicket(*ticket)
		return nil
	})
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	return r.v.write(func(st *state) error {
		existing, ok := st.tickets[ticket.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if err := checkTicketRefs(st, ticket); err != nil {
			return err
		}
		ticket.CreatedAt = existing.CreatedAt
		ticket.HubspotTicketID = ptrCopy(existing.HubspotTicketID)
		ticket.UpdatedAt = r.v.now()
		st.tickets[ticket.ID] = storedTicket(*ticket)
		return nil
	})
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.tickets[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.tickets, id)
		return nil
	})
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	var out *domain.Ticket
	err := r.v.read(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok {
			return domain.ErrNotFound
		}
		t = storedTicket(t)
		out = &t
		return nil
	})
	return out, err
}

func (r *ticketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]domain.TicketWithCustomer, error) {
	out := []domain.TicketWithCustomer{}
	err := r.v.read(func(st *state) error {
		list := make([]domain.Ticket, 0, len(st.tickets))
		for _, t := range st.tickets {
			if matches(t, filter) {
				list = append(list, t)
			}
		}
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

		if filter.Offset > 0 {
			if filter.Offset >= len(list) {
				list = nil
			} else {
				list = list[filter.Offset:]
			}
		}
		if filter.Limit > 0 && len(list) > filter.Limit {
			list = list[:filter.Limit]
		}

		for _, t := range list {
			item := domain.TicketWithCustomer{Ticket: storedTicket(t)}
			if c, ok := st.customers[t.CustomerID]; ok {
				item.Customer = &domain.CustomerRef{
					ID:        c.ID,
					FirstName: c.FirstName,
					LastName:  ptrCopy(c.LastName),
					Email:     c.Email,
				}
			}
			out = append(out, item)
		}
		return nil
	})
	return out, err
}

func matches(t domain.Ticket, f repository.TicketFilter) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !slices.Contains(f.Priorities, t.Priority) {
		return false
	}
	if f.CustomerID != nil && t.CustomerID != *f.CustomerID {
		return false
	}
	if f.AssignedToID != nil && (t.AssignedToID == nil || *t.AssignedToID != *f.AssignedToID) {
		return false
	}
	return true
}

func (r *ticketRepository) CountByCustomer(ctx context.Context, customerID int64) (int64, error) {
	var count int64
	err := r.v.read(func(st *state) error {
		for _, t := range st.tickets {
			if t.CustomerID == customerID {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *ticketRepository) SetHubspotID(ctx context.Context, id int64, externalID string) error {
	return r.v.write(func(st *state) error {
		t, ok := st.tickets[id]
		if !ok {
			return domain.ErrNotFound
		}
		t.HubspotTicketID = &externalID
		st.tickets[id] = t
		return nil
	})
}
