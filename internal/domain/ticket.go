package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusClosed     TicketStatus = "Closed"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketCategory groups tickets; only General exists today.
type TicketCategory string

const TicketCategoryGeneral TicketCategory = "General"

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// Valid reports whether c is a known category.
func (c TicketCategory) Valid() bool {
	return c == TicketCategoryGeneral
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID              int64
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	Category        TicketCategory
	CustomerID      int64
	AssignedToID    *int64
	HubspotTicketID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TicketDraft is a validated create payload.
type TicketDraft struct {
	Title        string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	Category     TicketCategory
	CustomerID   int64
	AssignedToID *int64
}

// NewTicket builds an unsaved ticket from a draft.
func (d TicketDraft) NewTicket() *Ticket {
	return &Ticket{
		Title:        d.Title,
		Description:  d.Description,
		Status:       d.Status,
		Priority:     d.Priority,
		Category:     d.Category,
		CustomerID:   d.CustomerID,
		AssignedToID: d.AssignedToID,
	}
}

// TicketPatch carries a partial ticket update; unset fields are left alone.
type TicketPatch struct {
	Title        Patch[string]
	Description  Patch[string]
	Status       Patch[TicketStatus]
	Priority     Patch[TicketPriority]
	Category     Patch[TicketCategory]
	CustomerID   Patch[int64]
	AssignedToID Patch[*int64]
}

// Empty reports whether the patch changes nothing.
func (p TicketPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set && !p.Priority.Set &&
		!p.Category.Set && !p.CustomerID.Set && !p.AssignedToID.Set
}

// Apply merges the set fields into t.
func (p TicketPatch) Apply(t *Ticket) {
	p.Title.ApplyTo(&t.Title)
	p.Description.ApplyTo(&t.Description)
	p.Status.ApplyTo(&t.Status)
	p.Priority.ApplyTo(&t.Priority)
	p.Category.ApplyTo(&t.Category)
	p.CustomerID.ApplyTo(&t.CustomerID)
	p.AssignedToID.ApplyTo(&t.AssignedToID)
}

// TicketWithCustomer is a ticket joined with its (possibly missing) customer.
type TicketWithCustomer struct {
	Ticket
	Customer *CustomerRef
}

// CustomerRef is the subset of customer data shown next to a ticket.
type CustomerRef struct {
	ID        int64
	FirstName string
	LastName  *string
	Email     string
}

// FullName joins first and last name.
func (r CustomerRef) FullName() string {
	return fullName(r.FirstName, r.LastName)
}
