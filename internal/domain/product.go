package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceScale is the number of fraction digits stored for money values.
const PriceScale = 2

// MaxPrice is the exclusive upper bound of a NUMERIC(10,2) column.
var MaxPrice = decimal.New(1, 8)

// Product represents a product in the catalog
type Product struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Name          string          `json:"name" db:"name" validate:"required,max=200"`
	Description   string          `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity" validate:"gte=0"`
	IsAvailable   bool            `json:"is_available" db:"is_available"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// ValidPrice reports whether p fits the stored money column: non-negative,
// below MaxPrice and with at most PriceScale fraction digits.
func ValidPrice(p decimal.Decimal) bool {
	if p.IsNegative() || p.GreaterThanOrEqual(MaxPrice) {
		return false
	}
	return p.Round(PriceScale).Equal(p)
}
