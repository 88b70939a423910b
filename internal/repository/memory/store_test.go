package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

func strPtr(s string) *string { return &s }

func seedCustomer(t *testing.T, s *Store, first, last, email string) *domain.Customer {
	t.Helper()
	c := &domain.Customer{FirstName: first, Email: email, Company: "Acme"}
	if last != "" {
		c.LastName = strPtr(last)
	}
	require.NoError(t, s.Repos().Customers.Create(context.Background(), c))
	return c
}

func seedTicket(t *testing.T, s *Store, customerID int64, status domain.TicketStatus, priority domain.TicketPriority) *domain.Ticket {
	t.Helper()
	tk := &domain.Ticket{
		Title:      "printer on fire",
		Status:     status,
		Priority:   priority,
		Category:   domain.TicketCategoryGeneral,
		CustomerID: customerID,
	}
	require.NoError(t, s.Repos().Tickets.Create(context.Background(), tk))
	return tk
}

func TestCustomerEmailUnique(t *testing.T) {
	s := NewStore()
	seedCustomer(t, s, "Ada", "Lovelace", "ada@example.com")

	err := s.Repos().Customers.Create(context.Background(), &domain.Customer{FirstName: "Other", Email: "ada@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := s.Repos().Customers.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCustomerGetByName(t *testing.T) {
	s := NewStore()
	first := seedCustomer(t, s, "Ada", "Lovelace", "ada@example.com")
	seedCustomer(t, s, "ada", "lovelace", "ada2@example.com")
	solo := seedCustomer(t, s, "Grace", "", "grace@example.com")

	got, err := s.Repos().Customers.GetByName(context.Background(), "ADA LOVELACE")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	got, err = s.Repos().Customers.GetByName(context.Background(), "grace")
	require.NoError(t, err)
	assert.Equal(t, solo.ID, got.ID)

	_, err = s.Repos().Customers.GetByName(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCustomerDeleteRestricted(t *testing.T) {
	s := NewStore()
	c := seedCustomer(t, s, "Ada", "", "ada@example.com")
	seedTicket(t, s, c.ID, domain.TicketStatusOpen, domain.TicketPriorityLow)

	err := s.Repos().Customers.Delete(context.Background(), c.ID)
	assert.ErrorIs(t, err, domain.ErrReferenced)

	_, err = s.Repos().Customers.GetByID(context.Background(), c.ID)
	assert.NoError(t, err)
}

func TestTicketForeignKeys(t *testing.T) {
	s := NewStore()
	err := s.Repos().Tickets.Create(context.Background(), &domain.Ticket{Title: "x", CustomerID: 99})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	c := seedCustomer(t, s, "Ada", "", "ada@example.com")
	agent := int64(42)
	err = s.Repos().Tickets.Create(context.Background(), &domain.Ticket{Title: "x", CustomerID: c.ID, AssignedToID: &agent})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	n, err := s.Repos().Tickets.CountByCustomer(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTicketUpdateRefreshesTimestamp(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return now }))
	c := seedCustomer(t, s, "Ada", "", "ada@example.com")
	tk := seedTicket(t, s, c.ID, domain.TicketStatusOpen, domain.TicketPriorityLow)

	now = now.Add(time.Hour)
	require.NoError(t, s.Repos().Tickets.SetHubspotID(context.Background(), tk.ID, "hs-1"))
	stored, err := s.Repos().Tickets.GetByID(context.Background(), tk.ID)
	require.NoError(t, err)
	assert.Equal(t, tk.UpdatedAt, stored.UpdatedAt)
	require.NotNil(t, stored.HubspotTicketID)
	assert.Equal(t, "hs-1", *stored.HubspotTicketID)

	now = now.Add(time.Hour)
	stored.Status = domain.TicketStatusClosed
	require.NoError(t, s.Repos().Tickets.Update(context.Background(), stored))

	again, err := s.Repos().Tickets.GetByID(context.Background(), tk.ID)
	require.NoError(t, err)
	assert.Equal(t, now, again.UpdatedAt)
	assert.Equal(t, tk.CreatedAt, again.CreatedAt)
	assert.Equal(t, "hs-1", *again.HubspotTicketID)
}

func TestWithinTxRollsBack(t *testing.T) {
	s := NewStore()
	boom := errors.New("boom")

	err := s.WithinTx(context.Background(), func(r repository.Repositories) error {
		c := &domain.Customer{FirstName: "Ada", Email: "ada@example.com"}
		if err := r.Customers.Create(context.Background(), c); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := s.Repos().Customers.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	err = s.WithinTx(context.Background(), func(r repository.Repositories) error {
		return r.Customers.Create(context.Background(), &domain.Customer{FirstName: "Ada", Email: "ada@example.com"})
	})
	require.NoError(t, err)
	list, err = s.Repos().Customers.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTicketListFilterAndJoin(t *testing.T) {
	s := NewStore()
	c := seedCustomer(t, s, "Ada", "Lovelace", "ada@example.com")
	seedTicket(t, s, c.ID, domain.TicketStatusOpen, domain.TicketPriorityHigh)
	seedTicket(t, s, c.ID, domain.TicketStatusClosed, domain.TicketPriorityHigh)
	seedTicket(t, s, c.ID, domain.TicketStatusOpen, domain.TicketPriorityLow)

	list, err := s.Repos().Tickets.List(context.Background(), repository.TicketFilter{
		Statuses:   []domain.TicketStatus{domain.TicketStatusOpen},
		Priorities: []domain.TicketPriority{domain.TicketPriorityHigh},
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Customer)
	assert.Equal(t, "Ada Lovelace", list[0].Customer.FullName())

	all, err := s.Repos().Tickets.List(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Less(t, all[0].ID, all[1].ID)
	assert.Less(t, all[1].ID, all[2].ID)
}

func TestDashboardStats(t *testing.T) {
	s := NewStore()
	a := seedCustomer(t, s, "Ada", "", "ada@example.com")
	b := seedCustomer(t, s, "Bob", "", "bob@example.com")
	seedTicket(t, s, b.ID, domain.TicketStatusOpen, domain.TicketPriorityLow)
	seedTicket(t, s, a.ID, domain.TicketStatusOpen, domain.TicketPriorityLow)
	seedTicket(t, s, a.ID, domain.TicketStatusClosed, domain.TicketPriorityHigh)
	seedTicket(t, s, b.ID, domain.TicketStatusOpen, domain.TicketPriorityHigh)

	stats, err := s.Repos().Dashboard.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(3), stats.Open)
	assert.Equal(t, int64(1), stats.Closed)
	assert.Equal(t, int64(1), stats.HighPriority)
	require.Len(t, stats.TopCustomers, 2)
	assert.Equal(t, a.ID, stats.TopCustomers[0].CustomerID)
	assert.Equal(t, b.ID, stats.TopCustomers[1].CustomerID)
}

func TestUserUniqueness(t *testing.T) {
	s := NewStore()
	repo := s.Repos().Users
	require.NoError(t, repo.Create(context.Background(), &domain.User{Username: "ada", Email: "ada@company.com"}))

	err := repo.Create(context.Background(), &domain.User{Username: "ada", Email: "other@company.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	exists, err := repo.ExistsByUsernameOrEmail(context.Background(), "someone", "ada@company.com")
	require.NoError(t, err)
	assert.True(t, exists)

	u, err := repo.GetByUsername(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
}

func TestCustomerGetByNameFoldsWhitespace(t *testing.T) {
	s := NewStore()
	spaced := seedCustomer(t, s, "Mary  Ann", "van   Dyke", "mary@example.com")

	for _, name := range []string{"Mary Ann van Dyke", "mary  ann\tvan dyke", " MARY ANN  VAN DYKE "} {
		got, err := s.Repos().Customers.GetByName(context.Background(), name)
		require.NoError(t, err, name)
		assert.Equal(t, spaced.ID, got.ID)
	}
}

func TestTicketListByCustomerAssigneeAndPage(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	ada := seedCustomer(t, s, "Ada", "", "ada@example.com")
	bob := seedCustomer(t, s, "Bob", "", "bob@example.com")
	agent := &domain.User{Name: "Al", Username: "al", Email: "al@company.com", PasswordHash: "x"}
	require.NoError(t, s.Repos().Users.Create(ctx, agent))

	t1 := seedTicket(t, s, ada.ID, domain.TicketStatusOpen, domain.TicketPriorityLow)
	t2 := seedTicket(t, s, ada.ID, domain.TicketStatusOpen, domain.TicketPriorityLow)
	t3 := seedTicket(t, s, bob.ID, domain.TicketStatusOpen, domain.TicketPriorityLow)
	t3.AssignedToID = &agent.ID
	require.NoError(t, s.Repos().Tickets.Update(ctx, t3))

	idsOf := func(filter repository.TicketFilter) []int64 {
		t.Helper()
		list, err := s.Repos().Tickets.List(ctx, filter)
		require.NoError(t, err)
		out := []int64{}
		for _, item := range list {
			out = append(out, item.ID)
		}
		return out
	}

	assert.Equal(t, []int64{t1.ID, t2.ID}, idsOf(repository.TicketFilter{CustomerID: &ada.ID}))
	assert.Equal(t, []int64{t3.ID}, idsOf(repository.TicketFilter{AssignedToID: &agent.ID}))
	assert.Equal(t, []int64{t2.ID}, idsOf(repository.TicketFilter{Limit: 1, Offset: 1}))
	assert.Equal(t, []int64{}, idsOf(repository.TicketFilter{Offset: 5}))
}
