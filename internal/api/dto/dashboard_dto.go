package dto

import "github.com/spec-kit/support-desk/internal/domain"

// DashboardResponse is the body of GET /api/dashboard/stats.
type DashboardResponse struct {
	Total        int64                 `json:"total"`
	Open         int64                 `json:"open"`
	Closed       int64                 `json:"closed"`
	HighPriority int64                 `json:"high_priority"`
	TopCustomers []TopCustomerResponse `json:"top_customers"`
}

// TopCustomerResponse ranks one customer.
type TopCustomerResponse struct {
	CustomerID int64  `json:"customer_id"`
	Name       string `json:"name"`
	Tickets    int64  `json:"tickets"`
}

// NewDashboardResponse maps the aggregate.
func NewDashboardResponse(stats *domain.DashboardStats) DashboardResponse {
	out := DashboardResponse{
		Total:        stats.Total,
		Open:         stats.Open,
		Closed:       stats.Closed,
		HighPriority: stats.HighPriority,
		TopCustomers: make([]TopCustomerResponse, 0, len(stats.TopCustomers)),
	}
	for _, c := range stats.TopCustomers {
		out.TopCustomers = append(out.TopCustomers, TopCustomerResponse{
			CustomerID: c.CustomerID,
			Name:       c.Name,
			Tickets:    c.Tickets,
		})
	}
	return out
}
