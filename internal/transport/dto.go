package transport

import (
	"time"

	"crm-backend/internal/domain"
	"crm-backend/internal/service"

	"github.com/shopspring/decimal"
)

// Request payloads

// CreateCustomerRequest represents the customer creation payload
type CreateCustomerRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone" validate:"max=20"`
	Address   string `json:"address"`
}

// CreateProductRequest represents the product creation payload. Price accepts
// a JSON number or string.
type CreateProductRequest struct {
	Name          string           `json:"name" validate:"required,max=200"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price" validate:"required"`
	StockQuantity int              `json:"stock_quantity" validate:"gte=0"`
	IsAvailable   *bool            `json:"is_available"`
}

// CreateOrderRequest represents the order creation payload
type CreateOrderRequest struct {
	CustomerID string   `json:"customer_id" validate:"required,uuid"`
	ProductIDs []string `json:"product_ids" validate:"required,min=1,dive,uuid"`
	Quantities []int    `json:"quantities"`
}

// ReplenishRequest is optional; absent fields take the service defaults
type ReplenishRequest struct {
	MinStock    *int `json:"min_stock"`
	IncrementBy *int `json:"increment_by"`
}

// Response payloads. Money is rendered as a fixed two-decimal string.

// CustomerResponse represents customer data
type CustomerResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductResponse represents product data
type ProductResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         string    `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	IsAvailable   bool      `json:"is_available"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OrderItemResponse represents one order line
type OrderItemResponse struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

// OrderResponse represents order data
type OrderResponse struct {
	ID          string              `json:"id"`
	CustomerID  string              `json:"customer_id"`
	Customer    *CustomerResponse   `json:"customer,omitempty"`
	OrderDate   time.Time           `json:"order_date"`
	Status      string              `json:"status"`
	TotalAmount string              `json:"total_amount"`
	Items       []OrderItemResponse `json:"items"`
}

// CustomerPayload is the createCustomer result. Customer is null on failure.
type CustomerPayload struct {
	Customer *CustomerResponse `json:"customer"`
	Success  bool              `json:"success"`
	Errors   *string           `json:"errors"`
}

// ProductPayload is the createProduct result. Product is null on failure.
type ProductPayload struct {
	Product *ProductResponse `json:"product"`
	Success bool             `json:"success"`
	Errors  *string          `json:"errors"`
}

// OrderPayload is the createOrder result. Order is null on failure.
type OrderPayload struct {
	Order   *OrderResponse `json:"order"`
	Success bool           `json:"success"`
	Errors  *string        `json:"errors"`
}

// ReplenishPayload is the low-stock replenishment result
type ReplenishPayload struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	UpdatedCount int    `json:"updated_count"`
}

// ReportResponse is the CRM summary
type ReportResponse struct {
	TotalCustomers int    `json:"total_customers"`
	TotalOrders    int    `json:"total_orders"`
	TotalRevenue   string `json:"total_revenue"`
}

// ListResponse wraps one page of results
type ListResponse[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(domain.PriceScale)
}

func toCustomerResponse(c *domain.Customer) *CustomerResponse {
	if c == nil {
		return nil
	}
	return &CustomerResponse{
		ID:        c.ID.String(),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}

func toProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		Price:         money(p.Price),
		StockQuantity: p.StockQuantity,
		IsAvailable:   p.IsAvailable,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toOrderResponse(o *domain.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   money(item.UnitPrice),
			LineTotal:   money(item.LineTotal()),
		}
	}

	return &OrderResponse{
		ID:          o.ID.String(),
		CustomerID:  o.CustomerID.String(),
		Customer:    toCustomerResponse(o.Customer),
		OrderDate:   o.OrderDate,
		Status:      string(o.Status),
		TotalAmount: money(o.TotalAmount),
		Items:       items,
	}
}

func toReportResponse(r service.CRMReport) ReportResponse {
	return ReportResponse{
		TotalCustomers: r.TotalCustomers,
		TotalOrders:    r.TotalOrders,
		TotalRevenue:   money(r.TotalRevenue),
	}
}

func mapSlice[In any, Out any](in []In, fn func(In) Out) []Out {
	out := make([]Out, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}
