package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketFilter captures listing parameters. Empty slices and nil pointers
// do not constrain the result.
type TicketFilter struct {
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	CustomerID   *int64
	AssignedToID *int64
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update writes every mutable column and refreshes updated_at.
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.TicketWithCustomer, error)
	CountByCustomer(ctx context.Context, customerID int64) (int64, error)
	// SetHubspotID records the CRM identifier without touching updated_at.
	SetHubspotID(ctx context.Context, id int64, externalID string) error
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, title, description, status, priority, category, customer_id,
               assigned_to_id, hubspot_ticket_id, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, category, customer_id, assigned_to_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.CustomerID,
		ticket.AssignedToID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return mapWriteError(err, domain.ErrInvalidReference)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, category=$5,
            customer_id=$6, assigned_to_id=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.CustomerID,
		ticket.AssignedToID,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	if err != nil {
		return mapNoRows(mapWriteError(err, domain.ErrInvalidReference))
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.CustomerID,
		&ticket.AssignedToID,
		&ticket.HubspotTicketID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, mapNoRows(err)
	}
	return &ticket, nil
}

const ticketListSelect = `SELECT t.id, t.title, t.description, t.status, t.priority, t.category, t.customer_id,
                    t.assigned_to_id, t.hubspot_ticket_id, t.created_at, t.updated_at,
                    c.id, c.firstname, c.lastname, c.email
             FROM tickets t
             LEFT JOIN customers c ON c.id = t.customer_id`

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.TicketWithCustomer, error) {
	where, args := filter.whereClause()
	query := ticketListSelect + ` WHERE ` + where + ` ORDER BY t.id` + filter.pageClause()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTicketsWithCustomer(rows)
}

// whereClause renders the filter as a WHERE body with $n placeholders
// numbered in argument order.
func (f TicketFilter) whereClause() (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	in := func(column string, values []any) {
		placeholders := make([]string, len(values))
		for i, v := range values {
			args = append(args, v)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")))
	}
	eq := func(column string, value int64) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if len(f.Statuses) > 0 {
		values := make([]any, len(f.Statuses))
		for i, status := range f.Statuses {
			values[i] = status
		}
		in("t.status", values)
	}
	if len(f.Priorities) > 0 {
		values := make([]any, len(f.Priorities))
		for i, pr := range f.Priorities {
			values[i] = pr
		}
		in("t.priority", values)
	}
	if f.CustomerID != nil {
		eq("t.customer_id", *f.CustomerID)
	}
	if f.AssignedToID != nil {
		eq("t.assigned_to_id", *f.AssignedToID)
	}
	return strings.Join(clauses, " AND "), args
}

func (f TicketFilter) pageClause() string {
	var page string
	if f.Limit > 0 {
		page += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	if f.Offset > 0 {
		page += fmt.Sprintf(" OFFSET %d", f.Offset)
	}
	return page
}

func (r *ticketRepository) CountByCustomer(ctx context.Context, customerID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE customer_id=$1`, customerID).Scan(&count)
	return count, err
}

func (r *ticketRepository) SetHubspotID(ctx context.Context, id int64, externalID string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE tickets SET hubspot_ticket_id=$1 WHERE id=$2`, externalID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTicketsWithCustomer(rows pgx.Rows) ([]domain.TicketWithCustomer, error) {
	result := []domain.TicketWithCustomer{}
	for rows.Next() {
		var (
			item      domain.TicketWithCustomer
			custID    *int64
			firstName *string
			lastName  *string
			email     *string
		)
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.Status,
			&item.Priority,
			&item.Category,
			&item.CustomerID,
			&item.AssignedToID,
			&item.HubspotTicketID,
			&item.CreatedAt,
			&item.UpdatedAt,
			&custID,
			&firstName,
			&lastName,
			&email,
		); err != nil {
			return nil, err
		}
		if custID != nil {
			item.Customer = &domain.CustomerRef{
				ID:        *custID,
				FirstName: deref(firstName),
				LastName:  lastName,
				Email:     deref(email),
			}
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
