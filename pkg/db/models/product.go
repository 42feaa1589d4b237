package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry. Every descriptive field is required on create.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Image       string          `gorm:"column:image;type:text;not null"`
	Title       string          `gorm:"column:title;type:text;not null"`
	Category    string          `gorm:"column:category;type:text;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Description string          `gorm:"column:description;type:text;not null"`
	Author      string          `gorm:"column:author;type:text;not null"`
	AddedAt     time.Time       `gorm:"column:added_at;not null;index:idx_products_added_at"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.AddedAt.IsZero() {
		p.AddedAt = time.Now().UTC()
	}
	return nil
}
