package service

import (
	"context"
	"errors"
	"math"
	"time"

	"crm-backend/internal/domain"
	"crm-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderService defines the interface for order business logic
type OrderService interface {
	// CreateOrder assembles an order for customerID with one line item per
	// entry of productIDs. quantities[i] applies to productIDs[i]; missing
	// positions default to domain.DefaultQuantity. The order and all of its
	// items are written atomically.
	CreateOrder(ctx context.Context, customerID uuid.UUID, productIDs []uuid.UUID, quantities []int) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error)
}

// MaxQuantity is the largest quantity a line item column holds.
const MaxQuantity = math.MaxInt32

type orderService struct {
	store          repository.Store
	decrementStock bool
	now            func() time.Time
}

// NewOrderService creates a new instance of OrderService. When decrementStock
// is set, each line item also takes its quantity out of product stock.
func NewOrderService(store repository.Store, decrementStock bool) OrderService {
	return &orderService{
		store:          store,
		decrementStock: decrementStock,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *orderService) CreateOrder(ctx context.Context, customerID uuid.UUID, productIDs []uuid.UUID, quantities []int) (*domain.Order, error) {
	if len(productIDs) == 0 {
		return nil, invalid("an order needs at least one product")
	}
	for i, q := range quantities {
		if i >= len(productIDs) {
			break
		}
		if q <= 0 {
			return nil, invalid("quantity at position %d must be positive", i)
		}
		if q > MaxQuantity {
			return nil, invalid("quantity at position %d must not exceed %d", i, MaxQuantity)
		}
	}

	var order *domain.Order
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		customer, err := tx.Customers().FindByID(ctx, customerID)
		if err != nil {
			if errors.Is(err, repository.ErrCustomerNotFound) {
				return notFound("customer %s not found", customerID)
			}
			return storeFailure("failed to load customer", err)
		}

		products, err := s.resolveProducts(ctx, tx, productIDs)
		if err != nil {
			return err
		}

		order = &domain.Order{
			ID:          uuid.New(),
			CustomerID:  customer.ID,
			Customer:    customer,
			OrderDate:   s.now(),
			Status:      domain.OrderStatusPending,
			TotalAmount: decimal.Zero,
			Items:       make([]domain.OrderItem, 0, len(productIDs)),
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return storeFailure("failed to create order", err)
		}

		for i, pid := range productIDs {
			product := products[pid]
			item := domain.OrderItem{
				ID:          uuid.New(),
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				LineNumber:  i + 1,
				Quantity:    quantityAt(quantities, i),
				UnitPrice:   product.Price,
			}

			if s.decrementStock {
				if err := tx.Products().DecrementStock(ctx, product.ID, item.Quantity); err != nil {
					if errors.Is(err, repository.ErrInsufficientStock) {
						return invalid("insufficient stock for product %s", product.Name)
					}
					return storeFailure("failed to reserve stock", err)
				}
			}

			if err := tx.Orders().AddItem(ctx, &item); err != nil {
				return storeFailure("failed to create order item", err)
			}
			order.Items = append(order.Items, item)
		}

		order.TotalAmount = order.ComputeTotal()
		if order.TotalAmount.GreaterThanOrEqual(domain.MaxPrice) {
			return invalid("order total %s exceeds the maximum of %s", order.TotalAmount.StringFixed(domain.PriceScale), domain.MaxPrice)
		}
		if err := tx.Orders().UpdateTotal(ctx, order.ID, order.TotalAmount); err != nil {
			return storeFailure("failed to update order total", err)
		}
		return nil
	})
	if err != nil {
		return nil, passOrWrap("failed to create order", err)
	}

	return order, nil
}

// resolveProducts loads every distinct product in ids, failing when any is
// missing.
func (s *orderService) resolveProducts(ctx context.Context, tx repository.Store, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	distinct := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	found, err := tx.Products().FindByIDs(ctx, distinct)
	if err != nil {
		return nil, storeFailure("failed to load products", err)
	}
	if len(found) != len(distinct) {
		return nil, invalid("one or more products do not exist")
	}

	byID := make(map[uuid.UUID]*domain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	return byID, nil
}

func quantityAt(quantities []int, i int) int {
	if i < len(quantities) {
		return quantities[i]
	}
	return domain.DefaultQuantity
}

// GetOrder retrieves an order with its customer and items
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, notFound("order %s not found", id)
		}
		return nil, storeFailure("failed to get order", err)
	}
	return order, nil
}

// ListOrders returns one page of orders and the total count
func (s *orderService) ListOrders(ctx context.Context, page, pageSize int) ([]*domain.Order, int, error) {
	orders, total, err := s.store.Orders().List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, storeFailure("failed to list orders", err)
	}
	return orders, total, nil
}
