package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mahbub-Sajon/srs-publications-server/internal/repo"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
)

// Repository persists catalog entries.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.DB(ctx).Create(product).Error
}

// List returns the whole catalog, oldest first.
func (r *Repository) List(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.DB(ctx).Order("added_at ASC").Find(&rows).Error
	return rows, err
}

// FindByID loads a single product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
