package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// DefaultQuantity applies to line items without an explicit quantity.
const DefaultQuantity = 1

// Order represents a customer order. Customer is only populated by reads that
// join the customer row.
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CustomerID  uuid.UUID       `json:"customer_id" db:"customer_id"`
	Customer    *Customer       `json:"customer,omitempty"`
	OrderDate   time.Time       `json:"order_date" db:"order_date"`
	Status      OrderStatus     `json:"status" db:"status"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Items       []OrderItem     `json:"items"`
}

// ComputeTotal sums quantity * unit price over the order's items.
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// OrderItem is one product line of an order. UnitPrice is the product price
// captured when the order was created.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	LineNumber  int             `json:"line_number" db:"line_number"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// LineTotal returns quantity * unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
