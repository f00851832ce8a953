package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"crm-backend/internal/domain"
	"crm-backend/internal/repository"

	"github.com/google/uuid"
)

// CreateCustomerInput holds the fields accepted when creating a customer
type CreateCustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
}

// CustomerService defines the interface for customer business logic
type CustomerService interface {
	CreateCustomer(ctx context.Context, in CreateCustomerInput) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	ListCustomers(ctx context.Context, page, pageSize int) ([]*domain.Customer, int, error)
}

type customerService struct {
	store repository.Store
}

// NewCustomerService creates a new instance of CustomerService
func NewCustomerService(store repository.Store) CustomerService {
	return &customerService{store: store}
}

// CreateCustomer validates and persists a new customer. Email is unique.
func (s *customerService) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{
		ID:        uuid.New(),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		CreatedAt: time.Now().UTC(),
	}

	if err := validateStruct(customer); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Customers().FindByEmail(ctx, customer.Email)
		if err != nil && !errors.Is(err, repository.ErrCustomerNotFound) {
			return storeFailure("failed to check existing customer", err)
		}
		if existing != nil {
			return invalid("a customer with email %s already exists", customer.Email)
		}

		if err := tx.Customers().Create(ctx, customer); err != nil {
			// Lost a race with a concurrent insert; the unique index decides.
			if errors.Is(err, repository.ErrCustomerEmailTaken) {
				return invalid("a customer with email %s already exists", customer.Email)
			}
			return storeFailure("failed to create customer", err)
		}
		return nil
	})
	if err != nil {
		return nil, passOrWrap("failed to create customer", err)
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer, err := s.store.Customers().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, notFound("customer %s not found", id)
		}
		return nil, storeFailure("failed to get customer", err)
	}
	return customer, nil
}

// ListCustomers returns one page of customers and the total count
func (s *customerService) ListCustomers(ctx context.Context, page, pageSize int) ([]*domain.Customer, int, error) {
	customers, total, err := s.store.Customers().List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, storeFailure("failed to list customers", err)
	}
	return customers, total, nil
}
