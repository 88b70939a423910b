package domain

import (
	"strings"
	"time"
)

// Customer is the external party a ticket is opened for.
type Customer struct {
	ID        int64
	FirstName string
	LastName  *string
	Email     string
	Company   string
	Phone     *string
	CreatedAt time.Time
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	return fullName(c.FirstName, c.LastName)
}

// CustomerDraft is a validated create payload.
type CustomerDraft struct {
	FirstName string
	LastName  *string
	Email     string
	Company   string
	Phone     *string
}

// NewCustomer builds an unsaved customer from a draft.
func (d CustomerDraft) NewCustomer() *Customer {
	return &Customer{
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Company:   d.Company,
		Phone:     d.Phone,
	}
}

// CustomerPatch carries a partial customer update.
type CustomerPatch struct {
	FirstName Patch[string]
	LastName  Patch[*string]
	Email     Patch[string]
	Company   Patch[string]
	Phone     Patch[*string]
}

// Empty reports whether the patch changes nothing.
func (p CustomerPatch) Empty() bool {
	return !p.FirstName.Set && !p.LastName.Set && !p.Email.Set && !p.Company.Set && !p.Phone.Set
}

// Apply merges the set fields into c.
func (p CustomerPatch) Apply(c *Customer) {
	p.FirstName.ApplyTo(&c.FirstName)
	p.LastName.ApplyTo(&c.LastName)
	p.Email.ApplyTo(&c.Email)
	p.Company.ApplyTo(&c.Company)
	p.Phone.ApplyTo(&c.Phone)
}

// fullName joins the parts with single spaces, whatever spacing was stored.
func fullName(first string, last *string) string {
	if last == nil {
		return CollapseSpaces(first)
	}
	return CollapseSpaces(first + " " + *last)
}

// CollapseSpaces trims s and folds every internal whitespace run into one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
