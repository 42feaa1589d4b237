package statistics

import (
	"time"
)

// Snapshot kinds written to the sales_snapshots table.
const (
	KindBestSeller = "best_seller"
	KindBestAuthor = "best_author"
	KindHalfYear   = "half_year"
)

// SnapshotRow mirrors the sales_snapshots BigQuery schema.
type SnapshotRow struct {
	SnapshotID   string    `bigquery:"snapshot_id"`
	TakenAt      time.Time `bigquery:"taken_at"`
	Kind         string    `bigquery:"kind"`
	Rank         int       `bigquery:"rank"`
	Label        string    `bigquery:"label"`
	TotalSales   float64   `bigquery:"total_sales"`
	QuantitySold int64     `bigquery:"quantity_sold"`
}

// SnapshotRows flattens a report into one row per leader and bucket.
// Ranks start at 1.
func SnapshotRows(r *Report, snapshotID string, takenAt time.Time) []SnapshotRow {
	rows := make([]SnapshotRow, 0, len(r.BestSellers)+len(r.BestAuthors)+len(r.HalfYearly))
	leaders := func(kind string, list []Leader) {
		for i, l := range list {
			rows = append(rows, SnapshotRow{
				SnapshotID:   snapshotID,
				TakenAt:      takenAt,
				Kind:         kind,
				Rank:         i + 1,
				Label:        l.Name,
				TotalSales:   l.TotalSales.InexactFloat64(),
				QuantitySold: l.QuantitySold,
			})
		}
	}
	leaders(KindBestSeller, r.BestSellers)
	leaders(KindBestAuthor, r.BestAuthors)
	for i, b := range r.HalfYearly {
		rows = append(rows, SnapshotRow{
			SnapshotID: snapshotID,
			TakenAt:    takenAt,
			Kind:       KindHalfYear,
			Rank:       i + 1,
			Label:      b.Period,
			TotalSales: b.TotalSales.InexactFloat64(),
		})
	}
	return rows
}
