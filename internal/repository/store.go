package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles the repositories bound to one connection or transaction.
type Repositories struct {
	Customers CustomerRepository
	Tickets   TicketRepository
	Users     UserRepository
	Dashboard DashboardRepository
}

// Store hands out repositories and runs transactional units of work.
type Store interface {
	Repos() Repositories
	// WithinTx runs fn in a transaction that commits only if fn returns nil.
	WithinTx(ctx context.Context, fn func(Repositories) error) error
	Ping(ctx context.Context) error
}

type pgStore struct {
	pool  *pgxpool.Pool
	repos Repositories
}

// NewStore returns a Postgres-backed store.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, repos: bind(pool)}
}

func bind(db DBTX) Repositories {
	return Repositories{
		Customers: NewCustomerRepository(db),
		Tickets:   NewTicketRepository(db),
		Users:     NewUserRepository(db),
		Dashboard: NewDashboardRepository(db),
	}
}

func (s *pgStore) Repos() Repositories {
	return s.repos
}

func (s *pgStore) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(bind(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *pgStore) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return s.pool.Ping(ctx)
}

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
)

// mapWriteError translates constraint violations into domain errors. fkErr is
// what a foreign key violation means for the calling statement.
func mapWriteError(err error, fkErr error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case sqlStateUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, pgErr.ConstraintName)
	case sqlStateForeignKeyViolation:
		return &domain.ReferenceError{Column: foreignKeyColumn(pgErr), Err: fkErr}
	}
	return err
}

// foreignKeyColumn recovers the column from a default "<table>_<column>_fkey"
// constraint name.
func foreignKeyColumn(pgErr *pgconn.PgError) string {
	name := strings.TrimSuffix(pgErr.ConstraintName, "_fkey")
	if name == pgErr.ConstraintName {
		return ""
	}
	if pgErr.TableName != "" {
		return strings.TrimPrefix(name, pgErr.TableName+"_")
	}
	return name
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
