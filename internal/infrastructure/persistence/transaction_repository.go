package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/salesdash/backend/internal/domain/report"
	"github.com/salesdash/backend/internal/domain/transaction"
	"github.com/salesdash/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const insertBatchSize = 500

// GormTransactionRepository implements transaction.Repository and
// report.SalesReportRepository on top of GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

var (
	_ transaction.Repository       = (*GormTransactionRepository)(nil)
	_ report.SalesReportRepository = (*GormTransactionRepository)(nil)
)

// FindAll returns one page of transactions ordered by sale date
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter transaction.Filter) ([]transaction.Transaction, error) {
	filter = filter.Normalize()

	var rows []models.TransactionModel
	err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Scopes(applyFilter(filter)).
		Order("date_of_sale ASC, external_id ASC, id ASC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	result := make([]transaction.Transaction, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// Count returns the number of transactions matching the filter, ignoring paging
func (r *GormTransactionRepository) Count(ctx context.Context, filter transaction.Filter) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Scopes(applyFilter(filter)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// ReplaceAll deletes every stored transaction and inserts the given set in a
// single database transaction
func (r *GormTransactionRepository) ReplaceAll(ctx context.Context, transactions []*transaction.Transaction) error {
	rows := make([]*models.TransactionModel, len(transactions))
	for i, t := range transactions {
		rows[i] = models.TransactionModelFromDomain(t)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&models.TransactionModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear transactions: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert transactions: %w", err)
		}
		return nil
	})
}

// GetStatistics returns the total sale amount and sold/unsold counts in one query
func (r *GormTransactionRepository) GetStatistics(ctx context.Context, filter transaction.Filter) (*report.Statistics, error) {
	var stats report.Statistics
	err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Select(`
			COALESCE(SUM(price), 0) as total_sale_amount,
			COALESCE(SUM(CASE WHEN sold > 0 THEN 1 ELSE 0 END), 0) as total_sold_items,
			COALESCE(SUM(CASE WHEN sold = 0 THEN 1 ELSE 0 END), 0) as total_not_sold_items
		`).
		Scopes(applyFilter(filter)).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}
	return &stats, nil
}

// CountByPriceRange counts records per price bucket with a single CASE
// grouped query, then fills in empty buckets
func (r *GormTransactionRepository) CountByPriceRange(ctx context.Context, filter transaction.Filter, ranges []transaction.PriceRange) ([]report.PriceRangeCount, error) {
	type bucketRow struct {
		Bucket    int
		ItemCount int64
	}

	var rows []bucketRow
	err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Select(priceBucketExpr(ranges) + " as bucket, COUNT(*) as item_count").
		Scopes(applyFilter(filter)).
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count price ranges: %w", err)
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		if row.Bucket >= 0 {
			counts[row.Bucket] = row.ItemCount
		}
	}
	return report.FillPriceRanges(ranges, counts), nil
}

// CountByCategory counts records per category ordered by category name
func (r *GormTransactionRepository) CountByCategory(ctx context.Context, filter transaction.Filter) ([]report.CategoryCount, error) {
	var results []report.CategoryCount
	err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Select("category, COUNT(*) as item_count").
		Scopes(applyFilter(filter)).
		Group("category").
		Order("category ASC").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	if results == nil {
		results = []report.CategoryCount{}
	}
	return results, nil
}

// applyFilter restricts a query to the filter's period and search term
func applyFilter(filter transaction.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case filter.Period.HasDateRange():
			start, end := filter.Period.Range()
			db = db.Where("date_of_sale >= ? AND date_of_sale < ?", start, end)
		case filter.Period.Month != 0:
			db = db.Where("sale_month = ?", int(filter.Period.Month))
		}

		if search := strings.TrimSpace(filter.Search); search != "" {
			pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
			db = db.Where(
				`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR CAST(price AS TEXT) LIKE ? ESCAPE '\')`,
				pattern, pattern, pattern,
			)
		}
		return db
	}
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// priceBucketExpr builds a CASE expression mapping price to a bucket index.
// Negative prices map to -1. Bounds are integers generated from the range
// list, never from user input.
func priceBucketExpr(ranges []transaction.PriceRange) string {
	var b strings.Builder
	b.WriteString("CASE WHEN price < 0 THEN -1")
	closedTail := true
	for i, pr := range ranges {
		if pr.Open {
			b.WriteString(" ELSE ")
			b.WriteString(strconv.Itoa(i))
			closedTail = false
			break
		}
		b.WriteString(" WHEN price <= ")
		b.WriteString(strconv.FormatInt(pr.Max, 10))
		b.WriteString(" THEN ")
		b.WriteString(strconv.Itoa(i))
	}
	if closedTail {
		b.WriteString(" ELSE -1")
	}
	b.WriteString(" END")
	return b.String()
}
