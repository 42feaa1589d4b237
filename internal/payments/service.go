package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/config"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/enums"
	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/metrics"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/outbox"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/outbox/payloads"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/redis"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/sslcommerz"
)

const (
	defaultProductName = "Product"
	defaultAuthor      = "Author"
	placeholderCity    = "Dhaka"
	placeholderPhone   = "01711111111"

	ipnDedupeScope = "ipn"
)

// Confirmation results recorded on the confirmations metric.
const (
	resultConfirmed = "confirmed"
	resultDuplicate = "duplicate"
	resultRejected  = "rejected"
	resultNotFound  = "not_found"
)

var sessionReferences = [4]string{"ref001_A", "ref002_B", "ref003_C", "ref004_D"}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type paymentsRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error
	FindByTranID(ctx context.Context, tranID string) (*models.Payment, error)
	FindByTranIDForUpdate(ctx context.Context, tx *gorm.DB, tranID string) (*models.Payment, error)
	ListByEmail(ctx context.Context, email string) ([]models.Payment, error)
	MarkSuccess(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) (bool, error)
}

// Gateway is the subset of the SSLCommerz client the orchestrator uses.
type Gateway interface {
	InitSession(ctx context.Context, req sslcommerz.SessionRequest) (*sslcommerz.Session, error)
	ValidateTransaction(ctx context.Context, valID string) (*sslcommerz.Validation, error)
	VerifySignature(form url.Values) bool
}

// Service is the payment orchestrator.
type Service interface {
	InitiatePayment(ctx context.Context, order OrderData) (*InitiateResult, error)
	ConfirmPayment(ctx context.Context, cb Callback) (*ConfirmResult, error)
	HandleIPN(ctx context.Context, cb Callback) (*ConfirmResult, error)
	ConfirmSettled(ctx context.Context, tranID, valID, via string) (*ConfirmResult, error)
	FailURL() string
	CancelURL() string
	GetByTransactionID(ctx context.Context, tranID string) (*PaymentDTO, error)
	ListByEmail(ctx context.Context, email string) ([]PaymentDTO, error)
}

// ServiceParams wires the orchestrator. IPNGuard, Metrics and Logger are optional.
type ServiceParams struct {
	Repo       paymentsRepository
	Tx         txRunner
	Outbox     outbox.Emitter
	Gateway    Gateway
	SSLCommerz config.SSLCommerzConfig
	Storefront config.StorefrontConfig
	IPNGuard   redis.DedupeStore
	IPNTTL     time.Duration
	Metrics    *metrics.PaymentMetrics
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	repo       paymentsRepository
	tx         txRunner
	outbox     outbox.Emitter
	gateway    Gateway
	gatewayCfg config.SSLCommerzConfig
	storefront config.StorefrontConfig
	ipnGuard   redis.DedupeStore
	ipnTTL     time.Duration
	metrics    *metrics.PaymentMetrics
	logg       *logger.Logger
	now        func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	if params.SSLCommerz.Currency == "" {
		params.SSLCommerz.Currency = "BDT"
	}
	return &service{
		repo:       params.Repo,
		tx:         params.Tx,
		outbox:     params.Outbox,
		gateway:    params.Gateway,
		gatewayCfg: params.SSLCommerz,
		storefront: params.Storefront,
		ipnGuard:   params.IPNGuard,
		ipnTTL:     params.IPNTTL,
		metrics:    params.Metrics,
		logg:       params.Logger,
		now:        now,
	}, nil
}

// InitiatePayment opens a gateway session and records the Pending payment.
// The payment row and its payment_initiated event are written only after the
// gateway accepted the session; a failed write is returned, not swallowed.
func (s *service) InitiatePayment(ctx context.Context, order OrderData) (*InitiateResult, error) {
	if !order.TotalPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Order data is required").
			WithDetails(map[string]string{"orderData.totalPrice": "must be greater than 0"})
	}

	now := s.now().UTC()
	tranID := NewTransactionID(now)
	ctx = s.withTran(ctx, tranID)

	titles, authors, quantities, quantityTotal := denormalize(order.Items)

	started := time.Now()
	session, err := s.gateway.InitSession(ctx, s.sessionRequest(order, tranID, titles, authors))
	s.metrics.ObserveGatewayCall("session", time.Since(started), err)
	if err != nil {
		s.logError(ctx, "payment.gateway_session_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Error initiating payment")
	}

	initiatedAt := order.CreatedAt.UTC()
	if order.CreatedAt.IsZero() {
		initiatedAt = now
	}
	payment := &models.Payment{
		TranID:        tranID,
		CusName:       order.UserName,
		CusID:         order.UserID,
		CusEmail:      order.Email,
		CusAdd:        order.Address,
		CusPhone:      order.Phone,
		TotalAmount:   order.TotalPrice.Round(2),
		ProductID:     order.ProductID,
		ProductName:   strings.Join(titles, ", "),
		Author:        strings.Join(authors, ", "),
		Quantity:      strings.Join(quantities, ", "),
		QuantityTotal: quantityTotal,
		InitiatedAt:   initiatedAt,
		Status:        enums.PaymentStatusPending,
		UpdatedAt:     now,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, payment); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentInitiated,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Actor:         &outbox.ActorRef{UserID: payment.CusID, Source: outbox.SourceStorefront},
			OccurredAt:    now,
			Data: payloads.PaymentInitiatedEvent{
				PaymentID:   payment.ID,
				TranID:      payment.TranID,
				CustomerID:  payment.CusID,
				Email:       payment.CusEmail,
				TotalAmount: payment.TotalAmount,
				ProductName: payment.ProductName,
			},
		})
	})
	if err != nil {
		s.logError(ctx, "payment.persist_pending_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error initiating payment")
	}

	s.logInfo(ctx, "payment.initiated")
	return &InitiateResult{TranID: tranID, GatewayPageURL: session.GatewayPageURL}, nil
}

// ConfirmPayment handles the browser-facing /success callback.
func (s *service) ConfirmPayment(ctx context.Context, cb Callback) (*ConfirmResult, error) {
	if err := s.checkCallback(ctx, cb); err != nil {
		return nil, err
	}
	return s.confirm(ctx, cb.TranID, cb.ValID, payloads.ConfirmedViaCallback)
}

// HandleIPN handles the server-to-server notification. Each val_id is
// processed once while the guard holds its marker.
func (s *service) HandleIPN(ctx context.Context, cb Callback) (*ConfirmResult, error) {
	if err := s.checkCallback(ctx, cb); err != nil {
		return nil, err
	}

	var guardKey string
	if s.ipnGuard != nil && cb.ValID != "" {
		guardKey = s.ipnGuard.DedupeKey(ipnDedupeScope, cb.ValID)
		fresh, err := s.ipnGuard.SetNX(ctx, guardKey, cb.TranID, s.ipnTTL)
		if err != nil {
			s.logError(ctx, "payment.ipn_guard_failed", err)
			guardKey = ""
		} else if !fresh {
			s.metrics.IncConfirmation(resultDuplicate)
			return &ConfirmResult{TranID: cb.TranID, AlreadyConfirmed: true, RedirectURL: s.successURL(cb.TranID)}, nil
		}
	}

	res, err := s.confirm(ctx, cb.TranID, cb.ValID, payloads.ConfirmedViaIPN)
	if err != nil && guardKey != "" {
		// let the gateway's retry through
		if delErr := s.ipnGuard.Del(ctx, guardKey); delErr != nil {
			s.logError(ctx, "payment.ipn_guard_release_failed", delErr)
		}
	}
	return res, err
}

// ConfirmSettled marks a payment the gateway already reported as settled.
// It skips callback checks and is used by reconciliation.
func (s *service) ConfirmSettled(ctx context.Context, tranID, valID, via string) (*ConfirmResult, error) {
	return s.confirm(ctx, tranID, valID, via)
}

func (s *service) FailURL() string {
	return s.storefront.FrontendURL("/fail")
}

func (s *service) CancelURL() string {
	return s.storefront.FrontendURL("/cancel")
}

func (s *service) GetByTransactionID(ctx context.Context, tranID string) (*PaymentDTO, error) {
	payment, err := s.repo.FindByTranID(ctx, tranID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error fetching payment data")
	}
	return FromModel(payment), nil
}

func (s *service) ListByEmail(ctx context.Context, email string) ([]PaymentDTO, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Email is required")
	}
	rows, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error fetching payments")
	}
	out := make([]PaymentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) checkCallback(ctx context.Context, cb Callback) error {
	ctx = s.withTran(ctx, cb.TranID)
	if cb.Status != sslcommerz.StatusValid {
		s.metrics.IncConfirmation(resultRejected)
		s.logWarn(s.withField(ctx, "gateway_status", cb.Status), "payment.callback_rejected")
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized Payment")
	}
	if strings.TrimSpace(cb.TranID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "tran_id is required")
	}
	if s.gatewayCfg.VerifySignature && !s.gateway.VerifySignature(cb.Form) {
		s.metrics.IncConfirmation(resultRejected)
		s.logWarn(ctx, "payment.callback_signature_invalid")
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized Payment")
	}
	if s.gatewayCfg.ValidateCallbacks {
		started := time.Now()
		validation, err := s.gateway.ValidateTransaction(ctx, cb.ValID)
		s.metrics.ObserveGatewayCall("validate", time.Since(started), err)
		if err != nil {
			s.logError(ctx, "payment.callback_validation_failed", err)
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Error validating payment")
		}
		if !validation.IsValid() || validation.TranID != cb.TranID {
			s.metrics.IncConfirmation(resultRejected)
			s.logWarn(s.withField(ctx, "gateway_status", validation.Status), "payment.callback_not_settled")
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized Payment")
		}
	}
	return nil
}

// confirm applies the Pending to Success transition. A payment that is
// already Success is left untouched and no event is emitted.
func (s *service) confirm(ctx context.Context, tranID, valID, via string) (*ConfirmResult, error) {
	ctx = s.withTran(ctx, tranID)
	result := &ConfirmResult{TranID: tranID, RedirectURL: s.successURL(tranID)}
	now := s.now().UTC()

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		payment, err := s.repo.FindByTranIDForUpdate(ctx, tx, tranID)
		if err != nil {
			return err
		}
		if payment.Status == enums.PaymentStatusSuccess {
			result.AlreadyConfirmed = true
			return nil
		}
		changed, err := s.repo.MarkSuccess(ctx, tx, payment.ID, now)
		if err != nil {
			return err
		}
		if !changed {
			result.AlreadyConfirmed = true
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentConfirmed,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Actor:         &outbox.ActorRef{UserID: payment.CusID, Source: sourceFor(via)},
			OccurredAt:    now,
			Data: payloads.PaymentConfirmedEvent{
				PaymentID:   payment.ID,
				TranID:      payment.TranID,
				ValID:       valID,
				TotalAmount: payment.TotalAmount,
				Via:         via,
				ConfirmedAt: now,
			},
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncConfirmation(resultNotFound)
			s.logWarn(ctx, "payment.confirm_unknown_transaction")
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Payment not found")
		}
		s.logError(ctx, "payment.confirm_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error confirming payment")
	}

	if result.AlreadyConfirmed {
		s.metrics.IncConfirmation(resultDuplicate)
	} else {
		s.metrics.IncConfirmation(resultConfirmed)
		s.logInfo(s.withField(ctx, "via", via), "payment.confirmed")
	}
	return result, nil
}

func (s *service) sessionRequest(order OrderData, tranID string, titles, authors []string) sslcommerz.SessionRequest {
	productName := strings.Join(titles, ", ")
	if productName == "" {
		productName = defaultProductName
	}
	author := strings.Join(authors, ", ")
	if author == "" {
		author = defaultAuthor
	}
	phone := strings.TrimSpace(order.Phone)
	if phone == "" {
		phone = placeholderPhone
	}

	return sslcommerz.SessionRequest{
		TotalAmount:     order.TotalPrice,
		Currency:        s.gatewayCfg.Currency,
		TranID:          tranID,
		SuccessURL:      s.storefront.ServerURL("/success"),
		FailURL:         s.storefront.ServerURL("/fail"),
		CancelURL:       s.storefront.ServerURL("/cancel"),
		IPNURL:          s.storefront.ServerURL("/ipn"),
		ProductName:     productName,
		ProductID:       order.ProductID,
		Author:          author,
		ProductCategory: "General",
		ProductProfile:  "general",
		ShippingMethod:  "NO",
		MultiCardName:   "mastercard,visacard,amexcard",
		Customer: sslcommerz.Customer{
			Name:     order.UserName,
			Email:    order.Email,
			Address1: order.Address,
			Address2: placeholderCity,
			City:     placeholderCity,
			State:    placeholderCity,
			Postcode: "1000",
			Country:  "Bangladesh",
			Phone:    phone,
			Fax:      placeholderPhone,
		},
		Values: sessionReferences,
	}
}

func (s *service) successURL(tranID string) string {
	return s.storefront.FrontendURL("/success/" + url.PathEscape(tranID))
}

func denormalize(items []OrderItem) (titles, authors, quantities []string, total int) {
	titles = make([]string, 0, len(items))
	authors = make([]string, 0, len(items))
	quantities = make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
		authors = append(authors, item.Author)
		quantities = append(quantities, strconv.Itoa(item.Quantity))
		total += item.Quantity
	}
	return titles, authors, quantities, total
}

func sourceFor(via string) string {
	switch via {
	case payloads.ConfirmedViaReconcile:
		return outbox.SourceCron
	default:
		return outbox.SourceGateway
	}
}

func (s *service) withTran(ctx context.Context, tranID string) context.Context {
	if s.logg == nil || tranID == "" {
		return ctx
	}
	return s.logg.WithTransactionID(ctx, tranID)
}

func (s *service) withField(ctx context.Context, key string, value any) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithField(ctx, key, value)
}

func (s *service) logInfo(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Info(ctx, msg)
	}
}

func (s *service) logWarn(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Warn(ctx, msg)
	}
}

func (s *service) logError(ctx context.Context, msg string, err error) {
	if s.logg != nil {
		s.logg.Error(ctx, msg, err)
	}
}
