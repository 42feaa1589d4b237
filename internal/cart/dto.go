package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
)

// CartItemDTO is the cart document. Item is the product snapshot with the
// running quantity merged in.
type CartItemDTO struct {
	ID      uuid.UUID      `json:"_id"`
	UserID  string         `json:"userId"`
	Item    map[string]any `json:"item"`
	AddedAt time.Time      `json:"addedAt"`
}

// AddResult reports which branch AddItem took.
type AddResult struct {
	Created    bool
	CartItemID uuid.UUID
}

func FromModel(c *models.CartItem) *CartItemDTO {
	if c == nil {
		return nil
	}
	item := make(map[string]any, len(c.Item)+1)
	for k, v := range c.Item {
		item[k] = v
	}
	item[quantityKey] = c.Quantity
	return &CartItemDTO{
		ID:      c.ID,
		UserID:  c.UserID,
		Item:    item,
		AddedAt: c.AddedAt,
	}
}
