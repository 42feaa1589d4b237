package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"

	"github.com/Mahbub-Sajon/srs-publications-server/pkg/config"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/gcp"
	"github.com/Mahbub-Sajon/srs-publications-server/pkg/logger"
)

const metadataTimeout = 10 * time.Second

var (
	errProjectIDRequired    = errors.New("gcp project id is required")
	errDatasetRequired      = errors.New("bigquery dataset is required")
	errTableNameRequired    = errors.New("bigquery table name is required")
	errClientNotInitialized = errors.New("bigquery client not initialized")
)

// Client writes statistics snapshots into one dataset.
type Client struct {
	client   *bigquery.Client
	dataset  *bigquery.Dataset
	snapshot string
}

// NewClient connects to BigQuery and checks that the dataset exists.
// Tables are created on demand by EnsureTable.
func NewClient(ctx context.Context, gcpCfg config.GCPConfig, cfg config.BigQueryConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcpCfg.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	datasetID := strings.TrimSpace(cfg.Dataset)
	if datasetID == "" {
		return nil, errDatasetRequired
	}
	snapshot := strings.TrimSpace(cfg.SnapshotsTable)
	if snapshot == "" {
		return nil, errTableNameRequired
	}

	bqClient, err := bigquery.NewClient(ctx, projectID, gcp.ClientOptions(gcpCfg)...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}
	c := &Client{client: bqClient, dataset: bqClient.Dataset(datasetID), snapshot: snapshot}
	if err := c.Ping(ctx); err != nil {
		_ = bqClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"dataset": datasetID, "table": snapshot}), "bigquery client initialized")
	}
	return c, nil
}

// SnapshotsTable returns the configured sales snapshot table name.
func (c *Client) SnapshotsTable() string {
	if c == nil {
		return ""
	}
	return c.snapshot
}

// Ping checks that the dataset is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.dataset == nil {
		return errClientNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()
	if _, err := c.dataset.Metadata(ctx); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("dataset %q does not exist", c.dataset.DatasetID)
		}
		return fmt.Errorf("checking dataset %q: %w", c.dataset.DatasetID, err)
	}
	return nil
}

// EnsureTable creates table with the schema inferred from row when it does
// not exist yet. partitionField, when set, names a TIMESTAMP column used for
// daily partitioning.
func (c *Client) EnsureTable(ctx context.Context, table string, row any, partitionField string) error {
	if c == nil || c.dataset == nil {
		return errClientNotInitialized
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return errTableNameRequired
	}

	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	ref := c.dataset.Table(table)
	_, err := ref.Metadata(ctx)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("checking table %q: %w", table, err)
	}

	meta, err := tableMetadata(row, partitionField)
	if err != nil {
		return err
	}
	if err := ref.Create(ctx, meta); err != nil && !isConflict(err) {
		return fmt.Errorf("creating table %q: %w", table, err)
	}
	return nil
}

func tableMetadata(row any, partitionField string) (*bigquery.TableMetadata, error) {
	schema, err := bigquery.InferSchema(row)
	if err != nil {
		return nil, fmt.Errorf("infer schema: %w", err)
	}
	meta := &bigquery.TableMetadata{Schema: schema}
	if partitionField != "" {
		meta.TimePartitioning = &bigquery.TimePartitioning{Type: bigquery.DayPartitioningType, Field: partitionField}
	}
	return meta, nil
}

// InsertRows streams rows into table. rows are structs or struct pointers
// carrying bigquery tags.
func (c *Client) InsertRows(ctx context.Context, table string, rows []any) error {
	if c == nil || c.dataset == nil {
		return errClientNotInitialized
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return errTableNameRequired
	}
	if len(rows) == 0 {
		return nil
	}
	return c.dataset.Table(table).Inserter().Put(ctx, rows)
}

// Close releases the BigQuery client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func apiErrorCode(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.Code
	}
	return 0
}

func isNotFound(err error) bool { return apiErrorCode(err) == http.StatusNotFound }

func isConflict(err error) bool { return apiErrorCode(err) == http.StatusConflict }
