package statistics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Mahbub-Sajon/srs-publications-server/internal/repo"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
)

// Grouping columns accepted by TopBy.
const (
	GroupProduct = "product_name"
	GroupAuthor  = "author"
)

// Sale is the slice of a payment the half-year aggregation reads.
type Sale struct {
	InitiatedAt time.Time
	TotalAmount decimal.Decimal
}

// Repository runs the aggregations over the payments table.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// TopBy groups payments by column and returns the limit largest totals.
func (r *Repository) TopBy(ctx context.Context, column string, limit int) ([]Leader, error) {
	if column != GroupProduct && column != GroupAuthor {
		return nil, fmt.Errorf("unsupported grouping column %q", column)
	}
	var rows []Leader
	err := r.DB(ctx).
		Model(&models.Payment{}).
		Select(column + " AS name, COALESCE(SUM(total_amount), 0) AS total_sales, COALESCE(SUM(quantity_total), 0) AS quantity_sold").
		Group(column).
		Order("total_sales DESC").
		Order(column + " ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// SalesSince returns the amount and time of every payment initiated at or after since.
func (r *Repository) SalesSince(ctx context.Context, since time.Time) ([]Sale, error) {
	var rows []Sale
	err := r.DB(ctx).
		Model(&models.Payment{}).
		Select("initiated_at, total_amount").
		Where("initiated_at >= ?", since).
		Scan(&rows).Error
	return rows, err
}
