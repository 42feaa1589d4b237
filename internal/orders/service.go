package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/enums"
	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/outbox"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ordersRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

// Service places orders.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error)
}

type service struct {
	repo         ordersRepository
	tx           txRunner
	outbox       outbox.Emitter
	discountRate decimal.Decimal
}

// NewService builds the order service. discountRate is the flat fraction
// taken off every total; zero disables the discount.
func NewService(repo ordersRepository, tx txRunner, emitter outbox.Emitter, discountRate float64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if discountRate < 0 || discountRate >= 1 {
		return nil, fmt.Errorf("discount rate must be in [0, 1), got %v", discountRate)
	}
	return &service{
		repo:         repo,
		tx:           tx,
		outbox:       emitter,
		discountRate: decimal.NewFromFloat(discountRate),
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if err := validatePlaceOrder(input); err != nil {
		return nil, err
	}

	total := ApplyDiscount(input.TotalPrice, s.discountRate)
	order := &models.Order{
		UserID:       strings.TrimSpace(input.UserID),
		Items:        input.Items,
		Address:      strings.TrimSpace(input.Address),
		Phone:        strings.TrimSpace(input.Phone),
		TotalPrice:   total,
		DiscountRate: s.discountRate,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, order); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: order.UserID, Source: outbox.SourceStorefront},
			Data: payloads.OrderPlacedEvent{
				OrderID:      order.ID,
				UserID:       order.UserID,
				ItemCount:    len(order.Items),
				TotalPrice:   order.TotalPrice,
				DiscountRate: order.DiscountRate,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error placing order")
	}

	result := &PlaceOrderResult{OrderID: order.ID}
	if !s.discountRate.IsZero() {
		discounted := total.InexactFloat64()
		result.DiscountedPrice = &discounted
	}
	return result, nil
}

// ApplyDiscount takes rate off total and rounds to cents.
func ApplyDiscount(total, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return total.Round(2)
	}
	return total.Mul(decimal.NewFromInt(1).Sub(rate)).Round(2)
}

// validatePlaceOrder rejects zero values as missing, including a zero total.
func validatePlaceOrder(in PlaceOrderInput) error {
	missing := map[string]string{}
	if strings.TrimSpace(in.UserID) == "" {
		missing["userId"] = "is required"
	}
	if in.Items == nil {
		missing["items"] = "is required"
	}
	if strings.TrimSpace(in.Address) == "" {
		missing["address"] = "is required"
	}
	if strings.TrimSpace(in.Phone) == "" {
		missing["phone"] = "is required"
	}
	if in.TotalPrice.IsZero() {
		missing["totalPrice"] = "is required"
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "All fields are required").WithDetails(missing)
	}
	return nil
}
