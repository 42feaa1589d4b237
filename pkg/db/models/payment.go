package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/enums"
)

// Payment records one gateway checkout attempt. Product fields are the
// ", "-joined denormalisation of the order lines; QuantityTotal is their sum.
// ReconcileCheckedAt is the last time the reconcile job asked the gateway
// about a still-Pending payment.
type Payment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	TranID        string              `gorm:"column:tran_id;type:text;not null;uniqueIndex:payments_tran_id_key"`
	CusName       string              `gorm:"column:cus_name;type:text;not null"`
	CusID         string              `gorm:"column:cus_id;type:text;not null"`
	CusEmail      string              `gorm:"column:cus_email;type:text;not null;index:idx_payments_cus_email"`
	CusAdd        string              `gorm:"column:cus_add;type:text;not null"`
	CusPhone      string              `gorm:"column:cus_phone;type:text;not null"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	ProductID     string              `gorm:"column:product_id;type:text;not null"`
	ProductName   string              `gorm:"column:product_name;type:text;not null"`
	Author        string              `gorm:"column:author;type:text;not null"`
	Quantity      string              `gorm:"column:quantity;type:text;not null"`
	QuantityTotal int                 `gorm:"column:quantity_total;not null;default:0"`
	InitiatedAt   time.Time           `gorm:"column:initiated_at;not null;index:idx_payments_initiated_at"`
	Status        enums.PaymentStatus `gorm:"column:status;type:text;not null;index:idx_payments_status"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;not null"`

	ReconcileCheckedAt *time.Time `gorm:"column:reconcile_checked_at"`
}

func (Payment) TableName() string { return "payments" }

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	if p.InitiatedAt.IsZero() {
		p.InitiatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	if p.Status == "" {
		p.Status = enums.PaymentStatusPending
	}
	return nil
}
