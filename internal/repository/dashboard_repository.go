package repository

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
)

// DashboardRepository runs read-only aggregate queries.
type DashboardRepository interface {
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

type dashboardRepository struct {
	db DBTX
}

// NewDashboardRepository returns a Postgres-backed implementation.
func NewDashboardRepository(db DBTX) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	const countsQuery = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status <> 'Closed'),
               COUNT(*) FILTER (WHERE status = 'Closed'),
               COUNT(*) FILTER (WHERE priority = 'High' AND status <> 'Closed')
        FROM tickets`

	stats := &domain.DashboardStats{TopCustomers: []domain.CustomerTicketCount{}}
	if err := r.db.QueryRow(ctx, countsQuery).Scan(
		&stats.Total,
		&stats.Open,
		&stats.Closed,
		&stats.HighPriority,
	); err != nil {
		return nil, err
	}

	const topQuery = `
        SELECT c.id, c.firstname, c.lastname, COUNT(t.id) AS total
        FROM customers c
        JOIN tickets t ON t.customer_id = c.id
        GROUP BY c.id, c.firstname, c.lastname
        ORDER BY total DESC, c.id ASC`

	rows, err := r.db.Query(ctx, topQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry    domain.CustomerTicketCount
			first    string
			lastName *string
		)
		if err := rows.Scan(&entry.CustomerID, &first, &lastName, &entry.Tickets); err != nil {
			return nil, err
		}
		entry.Name = domain.Customer{FirstName: first, LastName: lastName}.FullName()
		stats.TopCustomers = append(stats.TopCustomers, entry)
	}
	return stats, rows.Err()
}
