package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/Mahbub-Sajon/srs-publications-server/internal/repo"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
)

// Repository persists order snapshots.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts the order, on tx when one is given.
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return r.Conn(ctx, tx).Create(order).Error
}
