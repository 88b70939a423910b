package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/persistence"
)

// Runs against a scratch database when TEST_POSTGRES_DSN is set.
func newPostgresStore(t *testing.T) Store {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = persistence.RunMigrations(ctx, pool, "../../migrations", zap.NewNop())
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `TRUNCATE tickets, customers, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return NewStore(pool)
}

func TestPostgresConstraints(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()
	repos := store.Repos()

	last := "Lovelace"
	ada := &domain.Customer{FirstName: "Ada  Mary", LastName: &last, Email: "ada@example.com", Company: "Acme"}
	require.NoError(t, repos.Customers.Create(ctx, ada))

	err := repos.Customers.Create(ctx, &domain.Customer{FirstName: "Other", Email: "ada@example.com", Company: "X"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err := repos.Customers.GetByName(ctx, "ada mary   LOVELACE")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, got.ID)

	missingAgent := int64(999)
	err = repos.Tickets.Create(ctx, &domain.Ticket{
		Title: "x", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow,
		Category: domain.TicketCategoryGeneral, CustomerID: ada.ID, AssignedToID: &missingAgent,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
	assert.Equal(t, domain.ColumnAssignedToID, domain.ReferencedColumn(err))

	ticket := &domain.Ticket{
		Title: "x", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh,
		Category: domain.TicketCategoryGeneral, CustomerID: ada.ID,
	}
	require.NoError(t, repos.Tickets.Create(ctx, ticket))

	err = repos.Customers.Delete(ctx, ada.ID)
	assert.ErrorIs(t, err, domain.ErrReferenced)

	list, err := repos.Tickets.List(ctx, TicketFilter{
		Priorities: []domain.TicketPriority{domain.TicketPriorityHigh},
		CustomerID: &ada.ID,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Customer)
	assert.Equal(t, "ada@example.com", list[0].Customer.Email)

	stats, err := repos.Dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.HighPriority)
}

func TestPostgresWithinTxRollsBack(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(r Repositories) error {
		require.NoError(t, r.Customers.Create(ctx, &domain.Customer{FirstName: "Ada", Email: "a@b.co", Company: "X"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := store.Repos().Customers.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
