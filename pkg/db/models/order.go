package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is an immutable snapshot. TotalPrice is stored after discount.
type Order struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID       string           `gorm:"column:user_id;type:text;not null;index:idx_orders_user_id"`
	Items        []map[string]any `gorm:"column:items;type:jsonb;serializer:json;not null"`
	Address      string           `gorm:"column:address;type:text;not null"`
	Phone        string           `gorm:"column:phone;type:text;not null"`
	TotalPrice   decimal.Decimal  `gorm:"column:total_price;type:numeric(12,2);not null"`
	DiscountRate decimal.Decimal  `gorm:"column:discount_rate;type:numeric(5,4);not null"`
	CreatedAt    time.Time        `gorm:"column:created_at;not null"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	return nil
}
