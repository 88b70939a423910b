// Package memory is an in-process repository.Store. It enforces the same
// constraints as the Postgres schema and is used when no DSN is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

type state struct {
	customers    map[int64]domain.Customer
	tickets      map[int64]domain.Ticket
	users        map[int64]domain.User
	nextCustomer int64
	nextTicket   int64
	nextUser     int64
}

func newState() *state {
	return &state{
		customers: map[int64]domain.Customer{},
		tickets:   map[int64]domain.Ticket{},
		users:     map[int64]domain.User{},
	}
}

func (s *state) clone() *state {
	c := &state{
		customers:    make(map[int64]domain.Customer, len(s.customers)),
		tickets:      make(map[int64]domain.Ticket, len(s.tickets)),
		users:        make(map[int64]domain.User, len(s.users)),
		nextCustomer: s.nextCustomer,
		nextTicket:   s.nextTicket,
		nextUser:     s.nextUser,
	}
	for id, v := range s.customers {
		c.customers[id] = v
	}
	for id, v := range s.tickets {
		c.tickets[id] = v
	}
	for id, v := range s.users {
		c.users[id] = v
	}
	return c
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store keeps every table in maps guarded by a single mutex. Transactions
// hold the mutex for their whole duration and work on a copy that replaces
// the live state only on commit.
type Store struct {
	mu   sync.Mutex
	data *state
	now  func() time.Time
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{data: newState(), now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repos returns repositories that lock the store per call.
func (s *Store) Repos() repository.Repositories {
	return bind(&view{store: s})
}

// WithinTx runs fn against a private copy of the data. The copy becomes the
// live state only when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(bind(&view{store: s, tx: work})); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// view is the handle shared by the repositories of one binding. Outside a
// transaction tx is nil and each call takes the store lock.
type view struct {
	store *Store
	tx    *state
}

func (v *view) read(fn func(*state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.data)
}

// write applies fn to a scratch copy so a failing statement leaves no trace,
// matching single-statement atomicity in Postgres.
func (v *view) write(fn func(*state) error) error {
	if v.tx != nil {
		scratch := v.tx.clone()
		if err := fn(scratch); err != nil {
			return err
		}
		*v.tx = *scratch
		return nil
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	scratch := v.store.data.clone()
	if err := fn(scratch); err != nil {
		return err
	}
	v.store.data = scratch
	return nil
}

func (v *view) now() time.Time {
	return v.store.now()
}

func bind(v *view) repository.Repositories {
	return repository.Repositories{
		Customers: &customerRepository{v: v},
		Tickets:   &ticketRepository{v: v},
		Users:     &userRepository{v: v},
		Dashboard: &dashboardRepository{v: v},
	}
}

func ptrCopy[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
