package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlaceOrderInput carries the checkout payload. All five fields are required.
type PlaceOrderInput struct {
	UserID     string
	Items      []map[string]any
	Address    string
	Phone      string
	TotalPrice decimal.Decimal
}

// PlaceOrderResult is returned once the order snapshot is stored.
// DiscountedPrice is nil when no discount applied.
type PlaceOrderResult struct {
	OrderID         uuid.UUID
	DiscountedPrice *float64
}
