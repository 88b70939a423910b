package domain

// DashboardStats is the aggregate view over all tickets.
type DashboardStats struct {
	Total        int64
	Open         int64
	Closed       int64
	HighPriority int64
	TopCustomers []CustomerTicketCount
}

// CustomerTicketCount ranks a customer by ticket volume.
type CustomerTicketCount struct {
	CustomerID int64
	Name       string
	Tickets    int64
}
