package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderPlacedEvent is emitted once an order snapshot is stored.
type OrderPlacedEvent struct {
	OrderID      uuid.UUID       `json:"order_id"`
	UserID       string          `json:"user_id"`
	ItemCount    int             `json:"item_count"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
}

// PaymentInitiatedEvent is emitted when a gateway session was opened and the
// pending payment row persisted.
type PaymentInitiatedEvent struct {
	PaymentID   uuid.UUID       `json:"payment_id"`
	TranID      string          `json:"tran_id"`
	CustomerID  string          `json:"customer_id"`
	Email       string          `json:"email"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ProductName string          `json:"product_name"`
}

// Confirmation channels carried on PaymentConfirmedEvent.
const (
	ConfirmedViaCallback  = "callback"
	ConfirmedViaIPN       = "ipn"
	ConfirmedViaReconcile = "reconcile"
)

// PaymentConfirmedEvent is emitted on the Pending to Success transition.
type PaymentConfirmedEvent struct {
	PaymentID   uuid.UUID       `json:"payment_id"`
	TranID      string          `json:"tran_id"`
	ValID       string          `json:"val_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Via         string          `json:"via"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
}
