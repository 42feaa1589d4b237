package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem holds one product snapshot in a user's cart. ItemID is the
// snapshot's identity; (UserID, ItemID) is unique.
type CartItem struct {
	ID       uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	UserID   string         `gorm:"column:user_id;type:text;not null;uniqueIndex:ux_cart_items_user_item,priority:1"`
	ItemID   string         `gorm:"column:item_id;type:text;not null;uniqueIndex:ux_cart_items_user_item,priority:2"`
	Item     map[string]any `gorm:"column:item;type:jsonb;serializer:json;not null"`
	Quantity int            `gorm:"column:quantity;not null;default:1"`
	AddedAt  time.Time      `gorm:"column:added_at;not null"`
}

func (CartItem) TableName() string { return "cart_items" }

func (c *CartItem) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.AddedAt.IsZero() {
		c.AddedAt = time.Now().UTC()
	}
	return nil
}
