package validation

import (
	"fmt"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketCreate validates a new ticket payload, filling defaults for status,
// priority and category.
func TicketCreate(p Payload) (domain.TicketDraft, error) {
	draft := domain.TicketDraft{
		Status:   domain.TicketStatusOpen,
		Priority: domain.TicketPriorityMedium,
		Category: domain.TicketCategoryGeneral,
	}

	title := lookup(p, "title")
	customer := lookup(p, "customer_id")
	if title.blank() || !customer.present || customer.raw == nil {
		return draft, fieldError("", MsgTicketRequired)
	}

	var err error
	if draft.Title, err = title.str(); err != nil {
		return draft, err
	}

	if f := lookup(p, "description"); !f.blank() {
		if draft.Description, err = f.str(); err != nil {
			return draft, err
		}
	}

	if f := lookup(p, "status"); !f.blank() {
		if draft.Status, err = status(f); err != nil {
			return draft, err
		}
	}
	if f := lookup(p, "priority"); !f.blank() {
		if draft.Priority, err = priority(f); err != nil {
			return draft, err
		}
	}
	if f := lookup(p, "category"); !f.blank() {
		if draft.Category, err = category(f); err != nil {
			return draft, err
		}
	}

	if draft.CustomerID, err = customer.id(); err != nil {
		return draft, err
	}
	if draft.AssignedToID, err = lookup(p, "assigned_to_id").optionalID(); err != nil {
		return draft, err
	}
	return draft, nil
}

// TicketUpdate validates a partial ticket payload.
func TicketUpdate(p Payload) (domain.TicketPatch, error) {
	var patch domain.TicketPatch

	if f := lookup(p, "title"); f.present {
		v, err := f.str()
		if err != nil {
			return patch, err
		}
		if v == "" {
			return patch, fieldError(f.name, MsgEmptyTitle)
		}
		patch.Title = domain.Some(v)
	}

	if f := lookup(p, "description"); f.present {
		v, err := f.str()
		if err != nil {
			return patch, err
		}
		patch.Description = domain.Some(v)
	}

	if f := lookup(p, "status"); f.present {
		v, err := status(f)
		if err != nil {
			return patch, err
		}
		patch.Status = domain.Some(v)
	}

	if f := lookup(p, "priority"); f.present {
		v, err := priority(f)
		if err != nil {
			return patch, err
		}
		patch.Priority = domain.Some(v)
	}

	if f := lookup(p, "category"); f.present {
		v, err := category(f)
		if err != nil {
			return patch, err
		}
		patch.Category = domain.Some(v)
	}

	if f := lookup(p, "customer_id"); f.present {
		v, err := f.id()
		if err != nil {
			return patch, err
		}
		patch.CustomerID = domain.Some(v)
	}

	if f := lookup(p, "assigned_to_id"); f.present {
		v, err := f.optionalID()
		if err != nil {
			return patch, err
		}
		patch.AssignedToID = domain.Some(v)
	}

	if patch.Empty() {
		return patch, fieldError("", MsgNoChanges)
	}
	return patch, nil
}

func status(f field) (domain.TicketStatus, error) {
	v, err := f.str()
	if err != nil {
		return "", err
	}
	s := domain.TicketStatus(v)
	if !s.Valid() {
		return "", fieldError(f.name, fmt.Sprintf("status must be one of: %s, %s, %s",
			domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusClosed))
	}
	return s, nil
}

func priority(f field) (domain.TicketPriority, error) {
	v, err := f.str()
	if err != nil {
		return "", err
	}
	pr := domain.TicketPriority(v)
	if !pr.Valid() {
		return "", fieldError(f.name, fmt.Sprintf("priority must be one of: %s, %s, %s",
			domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh))
	}
	return pr, nil
}

func category(f field) (domain.TicketCategory, error) {
	v, err := f.str()
	if err != nil {
		return "", err
	}
	c := domain.TicketCategory(v)
	if !c.Valid() {
		return "", fieldError(f.name, fmt.Sprintf("category must be %s", domain.TicketCategoryGeneral))
	}
	return c, nil
}
