package cart

import (
	"context"

	"gorm.io/gorm"

	"github.com/Mahbub-Sajon/srs-publications-server/internal/repo"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
)

// Repository manages persistent cart items.
type Repository struct {
	repo.Base
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// IncrementQuantity bumps the quantity of the (userID, itemID) row by one and
// reports how many rows were touched.
func (r *Repository) IncrementQuantity(ctx context.Context, userID, itemID string) (int64, error) {
	res := r.DB(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", 1))
	return res.RowsAffected, res.Error
}

// Insert adds a new cart row.
func (r *Repository) Insert(ctx context.Context, item *models.CartItem) error {
	return r.DB(ctx).Create(item).Error
}

// ListByUser returns the user's cart rows in the order they were added.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Find(&rows).Error
	return rows, err
}

// DeleteByUser removes every cart row of the user.
func (r *Repository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.DB(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
