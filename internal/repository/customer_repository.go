package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crm-backend/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrCustomerEmailTaken = errors.New("a customer with this email already exists")
)

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Customer, int, error)
	Count(ctx context.Context) (int, error)
}

type customerRepository struct {
	db DBTX
}

// NewCustomerRepository creates a new instance of CustomerRepository
func NewCustomerRepository(db DBTX) CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, first_name, last_name, email, phone, address, created_at`

// Create inserts a new customer using parameterized queries
func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, first_name, last_name, email, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		customer.ID,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "customers_email_key") {
			return ErrCustomerEmailTaken
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// FindByID retrieves a customer by ID
func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}

	return customer, nil
}

// FindByEmail retrieves a customer by exact email
func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by email: %w", err)
	}

	return customer, nil
}

// List retrieves customers newest first with pagination
func (r *customerRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Customer, int, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	limit, offset := pageOffset(page, pageSize)

	query := `
		SELECT ` + customerColumns + `
		FROM customers
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*domain.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, total, nil
}

// Count returns the number of customers
func (r *customerRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	customer := &domain.Customer{}
	err := row.Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.Phone,
		&customer.Address,
		&customer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return customer, nil
}
