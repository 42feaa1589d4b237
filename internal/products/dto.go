package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
)

// ProductDTO represents the catalog document returned to the storefront.
type ProductDTO struct {
	ID          uuid.UUID `json:"_id"`
	Image       string    `json:"image"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	AddedAt     time.Time `json:"addedAt"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Image       string
	Title       string
	Category    string
	Quantity    int
	Price       decimal.Decimal
	Description string
	Author      string
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:          p.ID,
		Image:       p.Image,
		Title:       p.Title,
		Category:    p.Category,
		Quantity:    p.Quantity,
		Price:       p.Price.InexactFloat64(),
		Description: p.Description,
		Author:      p.Author,
		AddedAt:     p.AddedAt,
	}
}

func (in CreateProductInput) ToModel() *models.Product {
	return &models.Product{
		Image:       in.Image,
		Title:       in.Title,
		Category:    in.Category,
		Quantity:    in.Quantity,
		Price:       in.Price,
		Description: in.Description,
		Author:      in.Author,
	}
}
