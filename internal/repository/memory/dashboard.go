package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/support-desk/internal/domain"
)

type dashboardRepository struct {
	v *view
}

func (r *dashboardRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{TopCustomers: []domain.CustomerTicketCount{}}
	err := r.v.read(func(st *state) error {
		perCustomer := map[int64]int64{}
		for _, t := range st.tickets {
			stats.Total++
			if t.Status == domain.TicketStatusClosed {
				stats.Closed++
			} else {
				stats.Open++
				if t.Priority == domain.TicketPriorityHigh {
					stats.HighPriority++
				}
			}
			perCustomer[t.CustomerID]++
		}
		for id, n := range perCustomer {
			c, ok := st.customers[id]
			if !ok {
				continue
			}
			stats.TopCustomers = append(stats.TopCustomers, domain.CustomerTicketCount{
				CustomerID: id,
				Name:       c.FullName(),
				Tickets:    n,
			})
		}
		sort.Slice(stats.TopCustomers, func(i, j int) bool {
			a, b := stats.TopCustomers[i], stats.TopCustomers[j]
			if a.Tickets != b.Tickets {
				return a.Tickets > b.Tickets
			}
			return a.CustomerID < b.CustomerID
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
