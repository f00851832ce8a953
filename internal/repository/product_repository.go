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
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error)
	// LockBelowStock selects and row-locks every product whose stock is
	// strictly below minStock. It must run inside a transaction.
	LockBelowStock(ctx context.Context, minStock int) ([]*domain.Product, error)
	IncrementStock(ctx context.Context, ids []uuid.UUID, by int) (int64, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, price, stock_quantity, is_available, created_at, updated_at`

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, stock_quantity, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.StockQuantity,
		product.IsAvailable,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindByIDs retrieves the products matching ids. Missing ids are simply
// absent from the result; duplicates in ids yield one row.
func (r *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::text[]::uuid[])`

	return r.queryProducts(ctx, query, idArray(ids))
}

// List retrieves products newest first with pagination
func (r *productRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	limit, offset := pageOffset(page, pageSize)

	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`

	products, err := r.queryProducts(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// LockBelowStock selects low-stock products with FOR UPDATE. Under READ
// COMMITTED a caller blocked on a locked row re-checks the predicate once the
// lock is released, so rows raised above the threshold meanwhile are skipped.
func (r *productRepository) LockBelowStock(ctx context.Context, minStock int) ([]*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE stock_quantity < $1
		ORDER BY id
		FOR UPDATE
	`

	return r.queryProducts(ctx, query, minStock)
}

// IncrementStock adds by to the stock of every product in ids in one statement
func (r *productRepository) IncrementStock(ctx context.Context, ids []uuid.UUID, by int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `UPDATE products SET stock_quantity = stock_quantity + $1 WHERE id = ANY($2::text[]::uuid[])`

	result, err := r.db.ExecContext(ctx, query, by, idArray(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to increment stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// DecrementStock removes quantity from a product's stock, refusing to go below zero
func (r *productRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND stock_quantity >= $2
	`

	result, err := r.db.ExecContext(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}

	return nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.StockQuantity,
		&product.IsAvailable,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}
