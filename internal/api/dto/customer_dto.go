package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

// CustomerResponse is the public view of a customer.
type CustomerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	FirstName string    `json:"firstname"`
	LastName  *string   `json:"lastname"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCustomerResponse maps a domain customer.
func NewCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.FullName(),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Company:   c.Company,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}

// NewCustomerList maps a slice; the result is never nil.
func NewCustomerList(customers []domain.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, NewCustomerResponse(&customers[i]))
	}
	return out
}

// CustomerCreateResponse reports the local save and the CRM outcome.
type CustomerCreateResponse struct {
	Message          string `json:"message"`
	ID               int64  `json:"id"`
	SavedToDatabase  bool   `json:"saved_to_database"`
	SavedToHubspot   bool   `json:"saved_to_hubspot"`
	HubspotContactID string `json:"hubspot_contact_id,omitempty"`
	Warning          string `json:"warning,omitempty"`
}

// NewCustomerCreateResponse maps a create result.
func NewCustomerCreateResponse(res *service.CustomerCreateResult) CustomerCreateResponse {
	out := CustomerCreateResponse{
		Message:         "Customer created",
		ID:              res.Customer.ID,
		SavedToDatabase: true,
		SavedToHubspot:  res.Sync.OK(),
		Warning:         res.Sync.Warning("Customer"),
	}
	if res.Sync.OK() {
		out.HubspotContactID = res.Sync.ExternalID
	}
	return out
}
