package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
)

type customerRepository struct {
	v *view
}

func storedCustomer(c domain.Customer) domain.Customer {
	c.LastName = ptrCopy(c.LastName)
	c.Phone = ptrCopy(c.Phone)
	return c
}

func emailTaken(st *state, email string, except int64) bool {
	for id, c := range st.customers {
		if id != except && c.Email == email {
			return true
		}
	}
	return false
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.v.write(func(st *state) error {
		if emailTaken(st, customer.Email, 0) {
			return domain.ErrDuplicate
		}
		st.nextCustomer++
		customer.ID = st.nextCustomer
		customer.CreatedAt = r.v.now()
		st.customers[customer.ID] = storedCustomer(*customer)
		return nil
	})
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	return r.v.write(func(st *state) error {
		existing, ok := st.customers[customer.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if emailTaken(st, customer.Email, customer.ID) {
			return domain.ErrDuplicate
		}
		updated := storedCustomer(*customer)
		updated.CreatedAt = existing.CreatedAt
		st.customers[customer.ID] = updated
		return nil
	})
}

func (r *customerRepository) Delete(ctx context.Context, id int64) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.customers[id]; !ok {
			return domain.ErrNotFound
		}
		for _, t := range st.tickets {
			if t.CustomerID == id {
				return &domain.ReferenceError{Column: domain.ColumnCustomerID, Err: domain.ErrReferenced}
			}
		}
		delete(st.customers, id)
		return nil
	})
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.v.read(func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return domain.ErrNotFound
		}
		c = storedCustomer(c)
		out = &c
		return nil
	})
	return out, err
}

func (r *customerRepository) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	want := strings.ToLower(domain.CollapseSpaces(name))
	var out *domain.Customer
	err := r.v.read(func(st *state) error {
		for _, c := range sortedCustomers(st) {
			if strings.ToLower(c.FullName()) == want {
				c = storedCustomer(c)
				out = &c
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	out := []domain.Customer{}
	err := r.v.read(func(st *state) error {
		for _, c := range sortedCustomers(st) {
			out = append(out, storedCustomer(c))
		}
		return nil
	})
	return out, err
}

func sortedCustomers(st *state) []domain.Customer {
	list := make([]domain.Customer, 0, len(st.customers))
	for _, c := range st.customers {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
