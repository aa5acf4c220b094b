//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/salesdash/backend/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionRepository_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := NewGormTransactionRepository(newPostgresTestDB(t))
	seedTransactions(t, repo)
	ctx := context.Background()
	march := transaction.Filter{Period: transaction.MonthFilter{Month: time.March}}

	t.Run("month filter uses sale_month", func(t *testing.T) {
		txs, err := repo.FindAll(ctx, march)
		require.NoError(t, err)
		assert.Equal(t, []int64{5, 4, 8, 3, 7}, externalIDs(txs))
	})

	t.Run("month and year uses half-open range", func(t *testing.T) {
		count, err := repo.Count(ctx, transaction.Filter{Period: transaction.MonthFilter{Month: time.March, Year: 2022}})
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
	})

	t.Run("search escapes wildcards", func(t *testing.T) {
		txs, err := repo.FindAll(ctx, transaction.Filter{Search: "100%"})
		require.NoError(t, err)
		assert.Equal(t, []int64{5}, externalIDs(txs))

		count, err := repo.Count(ctx, transaction.Filter{Search: "_"})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("search matches price text", func(t *testing.T) {
		txs, err := repo.FindAll(ctx, transaction.Filter{Search: "999.75"})
		require.NoError(t, err)
		assert.Equal(t, []int64{6}, externalIDs(txs))
	})

	t.Run("statistics", func(t *testing.T) {
		stats, err := repo.GetStatistics(ctx, march)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1022).Equal(stats.TotalSaleAmount), "got %s", stats.TotalSaleAmount)
		assert.Equal(t, int64(2), stats.TotalSoldItems)
		assert.Equal(t, int64(3), stats.TotalNotSoldItems)
	})

	t.Run("price ranges keep empty buckets", func(t *testing.T) {
		ranges, err := repo.CountByPriceRange(ctx, march, transaction.DefaultPriceRanges)
		require.NoError(t, err)
		require.Len(t, ranges, len(transaction.DefaultPriceRanges))

		counts := make([]int64, len(ranges))
		for i, r := range ranges {
			counts[i] = r.ItemCount
		}
		// 64 and 100 fall in the first bucket, 168 in the second, 695 in
		// the seventh; the negative credit note is not counted
		assert.Equal(t, []int64{2, 1, 0, 0, 0, 0, 1, 0, 0, 0}, counts)
	})

	t.Run("categories ordered by name", func(t *testing.T) {
		categories, err := repo.CountByCategory(ctx, march)
		require.NoError(t, err)
		require.Len(t, categories, 2)
		assert.Equal(t, "electronics", categories[0].Category)
		assert.Equal(t, int64(3), categories[0].ItemCount)
		assert.Equal(t, "jewelery", categories[1].Category)
		assert.Equal(t, int64(2), categories[1].ItemCount)
	})

	t.Run("replace all is atomic and idempotent", func(t *testing.T) {
		seedTransactions(t, repo)
		count, err := repo.Count(ctx, transaction.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(9), count)
	})
}
