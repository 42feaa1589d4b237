package statistics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
)

const (
	leaderLimit    = 10
	halfYearMonths = 6
)

type statisticsRepository interface {
	TopBy(ctx context.Context, column string, limit int) ([]Leader, error)
	SalesSince(ctx context.Context, since time.Time) ([]Sale, error)
}

// Service computes sales statistics over all recorded payments.
type Service interface {
	ComputeStatistics(ctx context.Context) (*Report, error)
}

type service struct {
	repo statisticsRepository
	now  func() time.Time
}

func NewService(repo statisticsRepository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("statistics repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

// ComputeStatistics runs the three aggregations concurrently. Payments of any
// status are counted.
func (s *service) ComputeStatistics(ctx context.Context) (*Report, error) {
	report := &Report{}
	since := s.now().UTC().AddDate(0, -halfYearMonths, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.repo.TopBy(gctx, GroupProduct, leaderLimit)
		report.BestSellers = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.TopBy(gctx, GroupAuthor, leaderLimit)
		report.BestAuthors = rows
		return err
	})
	g.Go(func() error {
		sales, err := s.repo.SalesSince(gctx, since)
		if err != nil {
			return err
		}
		report.HalfYearly = HalfYearBuckets(sales)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Error fetching statistics")
	}
	return report, nil
}

// HalfYearBuckets sums sales into the two calendar halves by UTC month.
// Both buckets are always returned.
func HalfYearBuckets(sales []Sale) []Bucket {
	first, second := decimal.Zero, decimal.Zero
	for _, sale := range sales {
		if sale.InitiatedAt.UTC().Month() <= time.June {
			first = first.Add(sale.TotalAmount)
		} else {
			second = second.Add(sale.TotalAmount)
		}
	}
	return []Bucket{
		{Period: FirstHalf, TotalSales: first},
		{Period: SecondHalf, TotalSales: second},
	}
}
