package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/salesdash/backend/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTransactionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, (&Database{DB: db}).AutoMigrate())
	return db
}

func newTestTransaction(t *testing.T, externalID int64, title, description, price, category string, sold int64, date time.Time) *transaction.Transaction {
	t.Helper()
	tx, err := transaction.NewTransaction(transaction.Attributes{
		ExternalID:  externalID,
		Title:       title,
		Description: description,
		Price:       decimal.RequireFromString(price),
		Category:    category,
		Sold:        sold,
		DateOfSale:  date,
	})
	require.NoError(t, err)
	return tx
}

func utc(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC)
}

// seedTransactions stores a fixture spanning two years with prices chosen to
// be exact in binary floating point
func seedTransactions(t *testing.T, repo *GormTransactionRepository) {
	t.Helper()
	fixtures := []*transaction.Transaction{
		newTestTransaction(t, 1, "Fjallraven Backpack", "Your perfect pack", "109.75", "men's clothing", 0, utc(2021, 9, 27, 10, 0, 0)),
		newTestTransaction(t, 2, "Mens Casual T-Shirts", "Slim-fitting style", "22.5", "men's clothing", 1, utc(2021, 10, 27, 10, 0, 0)),
		newTestTransaction(t, 3, "John Hardy Bracelet", "Inspired by the mythical water Dragon", "695", "jewelery", 1, utc(2022, 3, 15, 10, 0, 0)),
		newTestTransaction(t, 4, "Solid Gold Petite Micropave", "Satisfaction Guaranteed", "168", "jewelery", 0, utc(2022, 3, 2, 10, 0, 0)),
		newTestTransaction(t, 5, "WD 2TB Elements Portable", "USB 3.0 and 100% compatible", "64", "electronics", 2, utc(2021, 3, 20, 10, 0, 0)),
		newTestTransaction(t, 6, "Samsung 49-Inch Monitor", "Super ultrawide", "999.75", "electronics", 1, utc(2022, 7, 1, 10, 0, 0)),
		newTestTransaction(t, 7, "Refurbished Cable", "", "100", "electronics", 0, utc(2022, 3, 31, 23, 59, 59)),
		newTestTransaction(t, 8, "Credit Note", "refund", "-5", "electronics", 0, utc(2022, 3, 10, 10, 0, 0)),
		newTestTransaction(t, 9, "Boundary Lamp", "desk lamp", "250", "home", 1, utc(2022, 4, 1, 0, 0, 0)),
	}
	require.NoError(t, repo.ReplaceAll(context.Background(), fixtures))
}

func externalIDs(txs []transaction.Transaction) []int64 {
	ids := make([]int64, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ExternalID
	}
	return ids
}

func TestGormTransactionRepository_FindAll(t *testing.T) {
	repo := NewGormTransactionRepository(setupTransactionTestDB(t))
	seedTransactions(t, repo)
	ctx := context.Background()

	t.Run("orders by sale date and paginates", func(t *testing.T) {
		page1, err := repo.FindAll(ctx, transaction.Filter{Page: 1, PageSize: 3})
		require.NoError(t, err)
		assert.Equal(t, []int64{5, 1, 2}, externalIDs(page1))

		page2, err := repo.FindAll(ctx, transaction.Filter{Page: 2, PageSize: 3})
		require.NoError(t, err)
		assert.Equal(t, []int64{4, 8, 3}, externalIDs(page2))
	})

	t.Run("page beyond the end is empty", func(t *testing.T) {
		txs, err := repo.FindAll(ctx, transaction.Filter{Page: 5, PageSize: 10})
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("invalid paging falls back to defaults", func(t *testing.T) {
		txs, err := repo.FindAll(ctx, transaction.Filter{Page: -1, PageSize: 0})
		require.NoError(t, err)
		assert.Len(t, txs, 9)
	})

	t.Run("month filter matches across years", func(t *testing.T) {
		txs, err := repo.FindAll(ctx, transaction.Filter{Period: transaction.MonthFilter{Month: time.March}})
		require.NoError(t, err)
		assert.Equal(t, []int64{5, 4, 8, 3, 7}, externalIDs(txs))
	})

	t.Run("month and year uses half-open range", func(t *testing.T) {
		txs, err := repo.FindAll(ctx, transaction.Filter{Period: transaction.MonthFilter{Month: time.March, Year: 2022}})
		require.NoError(t, err)
		assert.Equal(t, []int64{4, 8, 3, 7}, externalIDs(txs))
	})

	t.Run("maps all fields back", func(t *testing.T) {
		txs, err := repo.FindAll(ctx, transaction.Filter{Search: "backpack"})
		require.NoError(t, err)
		require.Len(t, txs, 1)

		tx := txs[0]
		assert.Equal(t, "Fjallraven Backpack", tx.Title)
		assert.Equal(t, "men's clothing", tx.Category)
		assert.True(t, decimal.RequireFromString("109.75").Equal(tx.Price))
		assert.True(t, utc(2021, 9, 27, 10, 0, 0).Equal(tx.DateOfSale))
		assert.False(t, tx.IsSold())
	})
}

func TestGormTransactionRepository_Search(t *testing.T) {
	repo := NewGormTransactionRepository(setupTransactionTestDB(t))
	seedTransactions(t, repo)
	ctx := context.Background()

	tests := []struct {
		name     string
		search   string
		expected []int64
	}{
		{"title case-insensitive", "BACKPACK", []int64{1}},
		{"description", "dragon", []int64{3}},
		{"price text", "22.5", []int64{2}},
		{"percent is literal", "100%", []int64{5}},
		{"underscore is literal", "_", []int64{}},
		{"whitespace only means no search", "   ", []int64{5, 1, 2, 4, 8, 3, 7, 9, 6}},
		{"no match", "zebra", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := transaction.Filter{Search: tt.search, PageSize: 20}
			txs, err := repo.FindAll(ctx, filter)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, externalIDs(txs))

			count, err := repo.Count(ctx, filter)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.expected)), count)
		})
	}

	t.Run("search combines with month", func(t *testing.T) {
		filter := transaction.Filter{
			Period: transaction.MonthFilter{Month: time.March},
			Search: "gold",
		}
		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestGormTransactionRepository_Count(t *testing.T) {
	repo := NewGormTransactionRepository(setupTransactionTestDB(t))
	seedTransactions(t, repo)

	count, err := repo.Count(context.Background(), transaction.Filter{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(9), count, "count ignores paging")
}

func TestGormTransactionRepository_GetStatistics(t *testing.T) {
	repo := NewGormTransactionRepository(setupTransactionTestDB(t))
	seedTransactions(t, repo)
	ctx := context.Background()

	t.Run("march across years", func(t *testing.T) {
		stats, err := repo.GetStatistics(ctx, transaction.Filter{Period: transaction.MonthFilter{Month: time.March}})
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(1022).Equal(stats.TotalSaleAmount), "got %s", stats.TotalSaleAmount)
		assert.Equal(t, int64(2), stats.TotalSoldItems)
		assert.Equal(t, int64(3), stats.TotalNotSoldItems)
	})

	t.Run("whole year", func(t *testing.T) {
		stats, err := repo.GetStatistics(ctx, transaction.Filter{Period: transaction.MonthFilter{Year: 2021}})
		require.NoError(t, err)

		assert.True(t, decimal.RequireFromString("196.25").Equal(stats.TotalSaleAmount), "got %s", stats.TotalSaleAmount)
		assert.Equal(t, int64(2), stats.TotalSoldItems)
		assert.Equal(t, int64(1), stats.TotalNotSoldItems)
	})

	t.Run("empty month yields zeros", func(t *testing.T) {
		stats, err := repo.GetStatistics(ctx, transaction.Filter{Period: transaction.MonthFilter{Month: time.January}})
		require.NoError(t, err)

		assert.True(t, stats.TotalSaleAmount.IsZero())
		assert.Zero(t, stats.TotalSoldItems)
		assert.Zero(t, stats.TotalNotSoldItems)
	})
}

func TestGormTransactionRepository_CountByPriceRange(t *testing.T) {
	repo := NewGormTransactionRepository(setupTransactionTestDB(t))
	seedTransactions(t, repo)
	ctx := context.Background()

	counts := func(t *testing.T, filter transaction.Filter) []int64 {
		t.Helper()
		result, err := repo.CountByPriceRange(ctx, filter, transaction.DefaultPriceRanges)
		require.NoError(t, err)
		require.Len(t, result, 10)
		out := make([]int64, len(result))
		for i, r := range result {
			out[i] = r.ItemCount
		}
		return out
	}

	t.Run("all records", func(t *testing.T) {
		assert.Equal(t, []int64{3, 2, 1, 0, 0, 0, 1, 0, 0, 1}, counts(t, transaction.Filter{}))
	})

	t.Run("march excludes negative price", func(t *testing.T) {
		assert.Equal(t, []int64{2, 1, 0, 0, 0, 0, 1, 0, 0, 0},
			counts(t, transaction.Filter{Period: transaction.MonthFilter{Month: time.March}}))
	})

	t.Run("empty period returns ten zero buckets", func(t *testing.T) {
		assert.Equal(t, make([]int64, 10),
			counts(t, transaction.Filter{Period: transaction.MonthFilter{Month: time.February}}))
	})

	t.Run("labels are in bucket order", func(t *testing.T) {
		result, err := repo.CountByPriceRange(ctx, transaction.Filter{}, transaction.DefaultPriceRanges)
		require.NoError(t, err)
		assert.Equal(t, "0-100", result[0].Range.Label())
		assert.Equal(t, "901-above", result[9].Range.Label())
	})
}

func TestGormTransactionRepository_CountByCategory(t *testing.T) {
	repo := NewGormTransactionRepository(setupTransactionTestDB(t))
	seedTransactions(t, repo)
	ctx := context.Background()

	t.Run("march", func(t *testing.T) {
		result, err := repo.CountByCategory(ctx, transaction.Filter{Period: transaction.MonthFilter{Month: time.March}})
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, "electronics", result[0].Category)
		assert.Equal(t, int64(3), result[0].ItemCount)
		assert.Equal(t, "jewelery", result[1].Category)
		assert.Equal(t, int64(2), result[1].ItemCount)
	})

	t.Run("no records is an empty list", func(t *testing.T) {
		result, err := repo.CountByCategory(ctx, transaction.Filter{Period: transaction.MonthFilter{Month: time.February}})
		require.NoError(t, err)
		assert.NotNil(t, result)
		assert.Empty(t, result)
	})
}

func TestGormTransactionRepository_ReplaceAll(t *testing.T) {
	repo := NewGormTransactionRepository(setupTransactionTestDB(t))
	seedTransactions(t, repo)
	ctx := context.Background()

	replacement := []*transaction.Transaction{
		newTestTransaction(t, 100, "New A", "", "10", "misc", 1, utc(2023, 1, 1, 0, 0, 0)),
		newTestTransaction(t, 101, "New B", "", "20", "misc", 0, utc(2023, 1, 2, 0, 0, 0)),
	}
	require.NoError(t, repo.ReplaceAll(ctx, replacement))

	txs, err := repo.FindAll(ctx, transaction.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 101}, externalIDs(txs))

	t.Run("empty set clears the store", func(t *testing.T) {
		require.NoError(t, repo.ReplaceAll(ctx, nil))
		count, err := repo.Count(ctx, transaction.Filter{})
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func newMockTransactionRepository(t *testing.T) (*GormTransactionRepository, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormTransactionRepository(gormDB), mock
}

func TestGormTransactionRepository_Errors(t *testing.T) {
	dbErr := errors.New("connection reset")

	t.Run("find all propagates query error", func(t *testing.T) {
		repo, mock := newMockTransactionRepository(t)
		mock.ExpectQuery(`SELECT \* FROM "transactions"`).WillReturnError(dbErr)

		_, err := repo.FindAll(context.Background(), transaction.Filter{})
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("statistics propagates query error", func(t *testing.T) {
		repo, mock := newMockTransactionRepository(t)
		mock.ExpectQuery(`(?s)SELECT (.+) FROM "transactions"`).WillReturnError(dbErr)

		_, err := repo.GetStatistics(context.Background(), transaction.Filter{})
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("replace all rolls back when delete fails", func(t *testing.T) {
		repo, mock := newMockTransactionRepository(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "transactions"`).WillReturnError(dbErr)
		mock.ExpectRollback()

		err := repo.ReplaceAll(context.Background(), nil)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("month filter uses sale_month column", func(t *testing.T) {
		repo, mock := newMockTransactionRepository(t)
		mock.ExpectQuery(`SELECT count\(\*\) FROM "transactions" WHERE sale_month = \$1`).
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		count, err := repo.Count(context.Background(), transaction.Filter{Period: transaction.MonthFilter{Month: time.March}})
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPriceBucketExpr(t *testing.T) {
	expr := priceBucketExpr(transaction.BuildPriceRanges(100, 3))
	assert.Equal(t, "CASE WHEN price < 0 THEN -1 WHEN price <= 100 THEN 0 WHEN price <= 200 THEN 1 ELSE 2 END", expr)

	closed := priceBucketExpr([]transaction.PriceRange{{Min: 0, Max: 50}})
	assert.Equal(t, "CASE WHEN price < 0 THEN -1 WHEN price <= 50 THEN 0 ELSE -1 END", closed)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\`, escapeLike(`50% off_now \`))
}
