package cron

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Mahbub-Sajon/srs-publications-server/internal/statistics"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/bigquery"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
)

const salesSnapshotJobName = "sales-snapshot"

type statisticsComputer interface {
	ComputeStatistics(ctx context.Context) (*statistics.Report, error)
}

// SalesSnapshotJobParams configure the BigQuery statistics export.
type SalesSnapshotJobParams struct {
	Logger     *logger.Logger
	Statistics statisticsComputer
	Inserter   bigquery.RowInserter
	Table      string
	Now        func() time.Time
}

type salesSnapshotJob struct {
	logg     *logger.Logger
	stats    statisticsComputer
	inserter bigquery.RowInserter
	table    string
	now      func() time.Time
}

func NewSalesSnapshotJob(params SalesSnapshotJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Statistics == nil {
		return nil, fmt.Errorf("statistics service required")
	}
	if params.Inserter == nil {
		return nil, fmt.Errorf("bigquery inserter required")
	}
	table := strings.TrimSpace(params.Table)
	if table == "" {
		return nil, fmt.Errorf("snapshot table required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &salesSnapshotJob{
		logg:     params.Logger,
		stats:    params.Statistics,
		inserter: params.Inserter,
		table:    table,
		now:      now,
	}, nil
}

func (j *salesSnapshotJob) Name() string { return salesSnapshotJobName }

func (j *salesSnapshotJob) Run(ctx context.Context) error {
	report, err := j.stats.ComputeStatistics(ctx)
	if err != nil {
		return fmt.Errorf("compute statistics: %w", err)
	}
	snapshotID := uuid.NewString()
	rows := statistics.SnapshotRows(report, snapshotID, j.now().UTC())

	batch := make([]any, len(rows))
	for i := range rows {
		batch[i] = &rows[i]
	}
	if err := j.inserter.InsertRows(ctx, j.table, batch); err != nil {
		return err
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"snapshot_id": snapshotID,
		"rows":        len(rows),
	}), "statistics.snapshot_exported")
	return nil
}
