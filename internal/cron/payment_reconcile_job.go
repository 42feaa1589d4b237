package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/Mahbub-Sajon/srs-publications-server/internal/payments"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/db/models"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/outbox/payloads"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/sslcommerz"
)

const (
	paymentReconcileJobName  = "payment-reconcile"
	defaultReconcileMinAge   = 30 * time.Minute
	defaultReconcileBatchCap = 50
)

type pendingPaymentReader interface {
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Payment, error)
	MarkReconcileChecked(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

type transactionQuerier interface {
	QueryTransaction(ctx context.Context, tranID string) (*sslcommerz.TransactionQuery, error)
}

type settledConfirmer interface {
	ConfirmSettled(ctx context.Context, tranID, valID, via string) (*payments.ConfirmResult, error)
}

// PaymentReconcileJobParams configure the job that settles Pending payments
// whose callback never arrived.
type PaymentReconcileJobParams struct {
	Logger        *logger.Logger
	PendingReader pendingPaymentReader
	Gateway       transactionQuerier
	Confirmer     settledConfirmer
	MinAge        time.Duration
	BatchSize     int
	Now           func() time.Time
}

type paymentReconcileJob struct {
	logg      *logger.Logger
	pending   pendingPaymentReader
	gateway   transactionQuerier
	confirmer settledConfirmer
	minAge    time.Duration
	batchSize int
	now       func() time.Time
}

func NewPaymentReconcileJob(params PaymentReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.PendingReader == nil {
		return nil, fmt.Errorf("pending payments reader required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway required")
	}
	if params.Confirmer == nil {
		return nil, fmt.Errorf("payment confirmer required")
	}
	minAge := params.MinAge
	if minAge <= 0 {
		minAge = defaultReconcileMinAge
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultReconcileBatchCap
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &paymentReconcileJob{
		logg:      params.Logger,
		pending:   params.PendingReader,
		gateway:   params.Gateway,
		confirmer: params.Confirmer,
		minAge:    minAge,
		batchSize: batch,
		now:       now,
	}, nil
}

func (j *paymentReconcileJob) Name() string { return paymentReconcileJobName }

// Run settles one batch. A failing payment does not stop the others.
// Every row left Pending is stamped as checked so the next batch moves on
// to payments the job has not asked about yet.
func (j *paymentReconcileJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	rows, err := j.pending.ListPendingBefore(ctx, now.Add(-j.minAge), j.batchSize)
	if err != nil {
		return fmt.Errorf("list pending payments: %w", err)
	}

	var errs error
	var settled int
	checked := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ok, err := j.reconcile(ctx, rows[i].TranID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reconcile %s: %w", rows[i].TranID, err))
		}
		if ok {
			settled++
			continue
		}
		checked = append(checked, rows[i].ID)
	}
	if err := j.pending.MarkReconcileChecked(ctx, checked, now); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("mark reconcile checked: %w", err))
	}

	summary := j.logg.WithFields(ctx, map[string]any{
		"scanned": len(rows),
		"settled": settled,
	})
	j.logg.Info(summary, "payment.reconcile_batch_done")
	return errs
}

func (j *paymentReconcileJob) reconcile(ctx context.Context, tranID string) (bool, error) {
	ctx = j.logg.WithTransactionID(ctx, tranID)
	query, err := j.gateway.QueryTransaction(ctx, tranID)
	if err != nil {
		return false, err
	}
	element, ok := query.Settled()
	if !ok {
		j.logg.Info(j.logg.WithField(ctx, "found", query.Found), "payment.reconcile_unsettled")
		return false, nil
	}
	if _, err := j.confirmer.ConfirmSettled(ctx, tranID, element.ValID, payloads.ConfirmedViaReconcile); err != nil {
		return false, err
	}
	return true, nil
}
