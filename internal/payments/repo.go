package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Mahbub-Sajon/srs-publications-server/internal/repo"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/enums"
)

// Repository persists gateway payment attempts.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a payment, on tx when one is given.
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	return r.Conn(ctx, tx).Create(payment).Error
}

// FindByTranID loads the payment for a gateway transaction id.
func (r *Repository) FindByTranID(ctx context.Context, tranID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.DB(ctx).Where("tran_id = ?", tranID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByTranIDForUpdate loads the payment inside tx, row-locked on Postgres.
func (r *Repository) FindByTranIDForUpdate(ctx context.Context, tx *gorm.DB, tranID string) (*models.Payment, error) {
	query := r.Conn(ctx, tx).Where("tran_id = ?", tranID)
	if query.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var payment models.Payment
	if err := query.First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListByEmail returns the customer's payments, newest first.
func (r *Repository) ListByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.DB(ctx).
		Where("cus_email = ?", email).
		Order("initiated_at DESC").
		Find(&rows).Error
	return rows, err
}

// MarkSuccess moves a Pending payment to Success and reports whether the row changed.
func (r *Repository) MarkSuccess(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error) {
	res := r.Conn(ctx, tx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, enums.PaymentStatusPending).
		Updates(map[string]any{
			"status":     enums.PaymentStatusSuccess,
			"updated_at": at,
		})
	return res.RowsAffected > 0, res.Error
}

// ListPendingBefore returns up to limit Pending payments initiated before
// cutoff. Never-checked rows come first, then the least recently checked,
// each group oldest first.
func (r *Repository) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Payment, error) {
	query := r.DB(ctx).
		Where("status = ? AND initiated_at < ?", enums.PaymentStatusPending, cutoff).
		Order("reconcile_checked_at IS NOT NULL, reconcile_checked_at ASC, initiated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.Payment
	err := query.Find(&rows).Error
	return rows, err
}

// MarkReconcileChecked stamps ids as checked at at. Rows that left Pending
// in the meantime are left alone.
func (r *Repository) MarkReconcileChecked(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB(ctx).
		Model(&models.Payment{}).
		Where("id IN ? AND status = ?", ids, enums.PaymentStatusPending).
		UpdateColumn("reconcile_checked_at", at.UTC()).Error
}
