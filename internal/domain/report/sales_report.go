package report

import (
	"context"

	"github.com/salesdash/backend/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// Statistics is the per-period sales summary
type Statistics struct {
	TotalSaleAmount   decimal.Decimal `json:"total_sale_amount"`
	TotalSoldItems    int64           `json:"total_sold_items"`
	TotalNotSoldItems int64           `json:"total_not_sold_items"`
}

// PriceRangeCount is the number of records whose price falls into a bucket
type PriceRangeCount struct {
	Range     transaction.PriceRange `json:"-"`
	ItemCount int64                  `json:"item_count"`
}

// CategoryCount is the number of records in a category
type CategoryCount struct {
	Category  string `json:"category"`
	ItemCount int64  `json:"item_count"`
}

// SalesReportRepository defines the aggregate queries behind the dashboard.
// Every method honours the period and search of the filter; paging is ignored.
type SalesReportRepository interface {
	// GetStatistics returns the sale amount and sold/unsold counts
	GetStatistics(ctx context.Context, filter transaction.Filter) (*Statistics, error)

	// CountByPriceRange returns one entry per bucket, in bucket order,
	// including empty buckets
	CountByPriceRange(ctx context.Context, filter transaction.Filter, ranges []transaction.PriceRange) ([]PriceRangeCount, error)

	// CountByCategory returns record counts per category ordered by name
	CountByCategory(ctx context.Context, filter transaction.Filter) ([]CategoryCount, error)
}

// FillPriceRanges expands sparse per-bucket counts into a dense slice with
// one entry per range. Indexes outside the range list are dropped.
func FillPriceRanges(ranges []transaction.PriceRange, counts map[int]int64) []PriceRangeCount {
	result := make([]PriceRangeCount, len(ranges))
	for i, r := range ranges {
		result[i] = PriceRangeCount{Range: r, ItemCount: counts[i]}
	}
	return result
}
