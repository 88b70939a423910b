package repository

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CustomerRepository defines persistence access for customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	// GetByName matches "firstname[ lastname]" case-insensitively; lowest id wins.
	GetByName(ctx context.Context, name string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
}

type customerRepository struct {
	db DBTX
}

// NewCustomerRepository returns a Postgres-backed implementation.
func NewCustomerRepository(db DBTX) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, firstname, lastname, email, company, phone, created_at`

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (firstname, lastname, email, company, phone)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Company,
		customer.Phone,
	).Scan(&customer.ID, &customer.CreatedAt)
	return mapWriteError(err, domain.ErrInvalidReference)
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	const query = `
        UPDATE customers SET firstname=$1, lastname=$2, email=$3, company=$4, phone=$5
        WHERE id=$6`

	cmd, err := r.db.Exec(ctx, query,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Company,
		customer.Phone,
		customer.ID,
	)
	if err != nil {
		return mapWriteError(err, domain.ErrInvalidReference)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return mapWriteError(err, domain.ErrReferenced)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

// fullNameExpr folds whitespace runs like domain.Customer.FullName. It matches
// the idx_customers_full_name expression index.
const fullNameExpr = `LOWER(TRIM(regexp_replace(firstname || ' ' || COALESCE(lastname, ''), '\s+', ' ', 'g')))`

func (r *customerRepository) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
        WHERE ` + fullNameExpr + ` = LOWER($1)
        ORDER BY id LIMIT 1`
	return r.fetchSingle(ctx, query, domain.CollapseSpaces(name))
}

func (r *customerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Customer{}
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Company, &c.Phone, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *customerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Company,
		&c.Phone,
		&c.CreatedAt,
	); err != nil {
		return nil, mapNoRows(err)
	}
	return &c, nil
}
