package transaction

import (
	"context"
	"math"
)

// Pagination defaults for transaction listings
const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100

	// MaxPage keeps the row offset of any normalized filter within int
	MaxPage = math.MaxInt / MaxPerPage
)

// Filter narrows a transaction query
type Filter struct {
	Period   MonthFilter
	Search   string
	Page     int
	PageSize int
}

// Normalize replaces out-of-range paging values with defaults
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPerPage
	}
	if f.PageSize > MaxPerPage {
		f.PageSize = MaxPerPage
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	return f
}

// Offset returns the number of rows to skip for the current page.
// It saturates at math.MaxInt instead of overflowing.
func (f Filter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PageSize
}

// Repository defines the persistence operations for transactions
type Repository interface {
	// FindAll returns one page of transactions matching the filter,
	// ordered by sale date
	FindAll(ctx context.Context, filter Filter) ([]Transaction, error)

	// Count returns the number of transactions matching the filter,
	// ignoring paging
	Count(ctx context.Context, filter Filter) (int64, error)

	// ReplaceAll atomically removes every stored transaction and inserts
	// the given set
	ReplaceAll(ctx context.Context, transactions []*Transaction) error
}
