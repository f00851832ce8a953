package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crm-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order and order item data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	AddItem(ctx context.Context, item *domain.OrderItem) error
	UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error)
	ListSince(ctx context.Context, since time.Time) ([]*domain.Order, error)
	Count(ctx context.Context) (int, error)
	// Revenue sums total_amount over orders that are not cancelled.
	Revenue(ctx context.Context) (decimal.Decimal, error)
}

type orderRepository struct {
	db DBTX
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db DBTX) OrderRepository {
	return &orderRepository{db: db}
}

// Orders are always read together with their customer.
const orderSelect = `
	SELECT o.id, o.customer_id, o.order_date, o.status, o.total_amount,
	       c.id, c.first_name, c.last_name, c.email, c.phone, c.address, c.created_at
	FROM orders o
	JOIN customers c ON c.id = o.customer_id
`

// Create inserts the order row; items are added separately with AddItem
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, customer_id, order_date, status, total_amount)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.CustomerID,
		order.OrderDate,
		string(order.Status),
		order.TotalAmount,
	)

	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// AddItem inserts one order line
func (r *orderRepository) AddItem(ctx context.Context, item *domain.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, line_number, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.OrderID,
		item.ProductID,
		item.LineNumber,
		item.Quantity,
		item.UnitPrice,
	)

	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}

	return nil
}

// UpdateTotal sets the order total
func (r *orderRepository) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx, `UPDATE orders SET total_amount = $2 WHERE id = $1`, id, total)
	if err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// FindByID retrieves an order with its customer and items
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// List retrieves orders newest first with pagination
func (r *orderRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	limit, offset := pageOffset(page, pageSize)

	orders, err := r.queryOrders(ctx, orderSelect+` ORDER BY o.order_date DESC, o.id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// ListSince retrieves orders placed at or after since, newest first
func (r *orderRepository) ListSince(ctx context.Context, since time.Time) ([]*domain.Order, error) {
	return r.queryOrders(ctx, orderSelect+` WHERE o.order_date >= $1 ORDER BY o.order_date DESC, o.id`, since)
}

// Count returns the number of orders
func (r *orderRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return total, nil
}

func (r *orderRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status <> $1`

	var revenue decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, string(domain.OrderStatusCancelled)).Scan(&revenue); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return revenue, nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// loadItems fills Items for every order with a single query
func (r *orderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		o.Items = []domain.OrderItem{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	query := `
		SELECT i.id, i.order_id, i.product_id, p.name, i.line_number, i.quantity, i.unit_price
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1::text[]::uuid[])
		ORDER BY i.order_id, i.line_number
	`

	rows, err := r.db.QueryContext(ctx, query, idArray(ids))
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.LineNumber,
			&item.Quantity,
			&item.UnitPrice,
		); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		o := byID[item.OrderID]
		o.Items = append(o.Items, item)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{Customer: &domain.Customer{}}
	var status string
	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.OrderDate,
		&status,
		&order.TotalAmount,
		&order.Customer.ID,
		&order.Customer.FirstName,
		&order.Customer.LastName,
		&order.Customer.Email,
		&order.Customer.Phone,
		&order.Customer.Address,
		&order.Customer.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatus(status)
	return order, nil
}
