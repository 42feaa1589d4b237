package statistics

import "github.com/shopspring/decimal"

// Half-year bucket labels, in calendar order.
const (
	FirstHalf  = "January-June"
	SecondHalf = "July-December"
)

// Leader is one grouped row of the best seller aggregations.
type Leader struct {
	Name         string
	TotalSales   decimal.Decimal
	QuantitySold int64
}

// Bucket is one half-year total.
type Bucket struct {
	Period     string
	TotalSales decimal.Decimal
}

// Report is the computed statistics before rendering.
type Report struct {
	BestSellers []Leader
	BestAuthors []Leader
	HalfYearly  []Bucket
}

type BestSellerDTO struct {
	ProductName string  `json:"productName"`
	TotalSales  float64 `json:"totalSales"`
}

type BestAuthorDTO struct {
	AuthorName string  `json:"authorName"`
	TotalSales float64 `json:"totalSales"`
}

type HalfYearDTO struct {
	Month      string  `json:"month"`
	TotalSales float64 `json:"totalSales"`
}

// StatisticsDTO is the body of GET /api/payments/statistics.
type StatisticsDTO struct {
	BestSellers     []BestSellerDTO `json:"bestSellers"`
	BestAuthors     []BestAuthorDTO `json:"bestAuthors"`
	HalfYearlySales []HalfYearDTO   `json:"halfYearlySales"`
}

// DTO renders the report. Lists are never nil so they encode as [].
func (r *Report) DTO() StatisticsDTO {
	out := StatisticsDTO{
		BestSellers:     make([]BestSellerDTO, 0, len(r.BestSellers)),
		BestAuthors:     make([]BestAuthorDTO, 0, len(r.BestAuthors)),
		HalfYearlySales: make([]HalfYearDTO, 0, len(r.HalfYearly)),
	}
	for _, l := range r.BestSellers {
		out.BestSellers = append(out.BestSellers, BestSellerDTO{ProductName: l.Name, TotalSales: l.TotalSales.InexactFloat64()})
	}
	for _, l := range r.BestAuthors {
		out.BestAuthors = append(out.BestAuthors, BestAuthorDTO{AuthorName: l.Name, TotalSales: l.TotalSales.InexactFloat64()})
	}
	for _, b := range r.HalfYearly {
		out.HalfYearlySales = append(out.HalfYearlySales, HalfYearDTO{Month: b.Period, TotalSales: b.TotalSales.InexactFloat64()})
	}
	return out
}
