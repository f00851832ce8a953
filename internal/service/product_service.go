package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"crm-backend/internal/domain"
	"crm-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductInput holds the fields accepted when creating a product.
// IsAvailable defaults to true when nil.
type CreateProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	IsAvailable   *bool
}

// ProductService defines the interface for product business logic
type ProductService interface {
	CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error)
}

type productService struct {
	store repository.Store
}

// NewProductService creates a new instance of ProductService
func NewProductService(store repository.Store) ProductService {
	return &productService{store: store}
}

func (s *productService) CreateProduct(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.IsAvailable != nil {
		product.IsAvailable = *in.IsAvailable
	}

	if err := validateStruct(product); err != nil {
		return nil, err
	}
	if !domain.ValidPrice(product.Price) {
		return nil, invalid("price must be non-negative, below %s and have at most %d decimal places",
			domain.MaxPrice.String(), domain.PriceScale)
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.Products().Create(ctx, product)
	})
	if err != nil {
		return nil, passOrWrap("failed to create product", err)
	}

	return product, nil
}

// GetProduct retrieves a product by ID
func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, notFound("product %s not found", id)
		}
		return nil, storeFailure("failed to get product", err)
	}
	return product, nil
}

// ListProducts returns one page of products and the total count
func (s *productService) ListProducts(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error) {
	products, total, err := s.store.Products().List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, storeFailure("failed to list products", err)
	}
	return products, total, nil
}
