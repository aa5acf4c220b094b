package report

import (
	"time"

	"github.com/salesdash/backend/internal/domain/report"
	"github.com/salesdash/backend/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// PeriodQuery selects the reporting period. An empty month and zero year
// select every record.
type PeriodQuery struct {
	Month string
	Year  int
}

// ListTransactionsQuery selects one page of transactions
type ListTransactionsQuery struct {
	PeriodQuery
	Search  string
	Page    int
	PerPage int
}

// TransactionResponse represents a sales record in API responses
type TransactionResponse struct {
	ID          string    `json:"id"`
	ExternalID  int64     `json:"externalId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Sold        int64     `json:"sold"`
	IsSold      bool      `json:"isSold"`
	Image       string    `json:"image"`
	DateOfSale  time.Time `json:"dateOfSale"`
}

// TransactionListResponse is one page of transactions plus the unpaged total
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	TotalCount   int64                 `json:"totalCount"`
	Page         int                   `json:"page"`
	PerPage      int                   `json:"perPage"`
	TotalPages   int                   `json:"totalPages"`
}

// StatisticsResponse summarizes sales for a period
type StatisticsResponse struct {
	TotalSaleAmount   float64 `json:"totalSaleAmount"`
	TotalSoldItems    int64   `json:"totalSoldItems"`
	TotalNotSoldItems int64   `json:"totalNotSoldItems"`
}

// PriceRangeResponse is one bar of the price histogram
type PriceRangeResponse struct {
	PriceRange string `json:"priceRange"`
	Min        int64  `json:"min"`
	Max        *int64 `json:"max,omitempty"`
	ItemCount  int64  `json:"itemCount"`
}

// CategoryResponse is one slice of the category breakdown
type CategoryResponse struct {
	Category  string `json:"category"`
	ItemCount int64  `json:"itemCount"`
}

// CombinedReportResponse bundles every dashboard view for one period
type CombinedReportResponse struct {
	Transactions *TransactionListResponse `json:"transactions"`
	Statistics   *StatisticsResponse      `json:"statistics"`
	BarChart     []PriceRangeResponse     `json:"barChart"`
	PieChart     []CategoryResponse       `json:"pieChart"`
}

func toTransactionResponse(t *transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID.String(),
		ExternalID:  t.ExternalID,
		Title:       t.Title,
		Description: t.Description,
		Price:       toFloat64(t.Price),
		Category:    t.Category,
		Sold:        t.Sold,
		IsSold:      t.IsSold(),
		Image:       t.Image,
		DateOfSale:  t.DateOfSale,
	}
}

func toStatisticsResponse(s *report.Statistics) *StatisticsResponse {
	return &StatisticsResponse{
		TotalSaleAmount:   toFloat64(s.TotalSaleAmount),
		TotalSoldItems:    s.TotalSoldItems,
		TotalNotSoldItems: s.TotalNotSoldItems,
	}
}

func toPriceRangeResponses(counts []report.PriceRangeCount) []PriceRangeResponse {
	result := make([]PriceRangeResponse, len(counts))
	for i, c := range counts {
		result[i] = PriceRangeResponse{
			PriceRange: c.Range.Label(),
			Min:        c.Range.Min,
			ItemCount:  c.ItemCount,
		}
		if !c.Range.Open {
			upper := c.Range.Max
			result[i].Max = &upper
		}
	}
	return result
}

func toCategoryResponses(counts []report.CategoryCount) []CategoryResponse {
	result := make([]CategoryResponse, len(counts))
	for i, c := range counts {
		result[i] = CategoryResponse{Category: c.Category, ItemCount: c.ItemCount}
	}
	return result
}

// toFloat64 converts a decimal amount to float64 rounded to cents
func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
