package handler

import (
	"strconv"
	"strings"

	reportapp "github.com/salesdash/backend/internal/application/report"
	"github.com/salesdash/backend/internal/domain/transaction"
)

// PeriodRequest selects the reporting period
// @Description Month and optional year; both empty selects every record
type PeriodRequest struct {
	Month string `form:"month" binding:"max=16" example:"March"`
	Year  string `form:"year" binding:"max=4" example:"2022"`
}

// ListTransactionsRequest selects one page of transactions
// @Description Paging, search and period for the transaction listing
type ListTransactionsRequest struct {
	PeriodRequest
	Page    string `form:"page" example:"1"`
	PerPage string `form:"per_page" example:"10"`
	Search  string `form:"search" binding:"max=100" example:"shirt"`
}

// toQuery converts the request to a period query. A year that is not a
// number is rejected the same way as an out-of-range one.
func (r PeriodRequest) toQuery() (reportapp.PeriodQuery, error) {
	query := reportapp.PeriodQuery{Month: strings.TrimSpace(r.Month)}
	if year := strings.TrimSpace(r.Year); year != "" {
		n, err := strconv.Atoi(year)
		if err != nil {
			return query, transaction.ErrInvalidYear
		}
		query.Year = n
	}
	return query, nil
}

// toQuery converts the request to a listing query. Paging values that are
// missing or not numbers are left at zero so defaults apply.
func (r ListTransactionsRequest) toQuery() (reportapp.ListTransactionsQuery, error) {
	period, err := r.PeriodRequest.toQuery()
	if err != nil {
		return reportapp.ListTransactionsQuery{}, err
	}
	return reportapp.ListTransactionsQuery{
		PeriodQuery: period,
		Search:      strings.TrimSpace(r.Search),
		Page:        atoiOrZero(r.Page),
		PerPage:     atoiOrZero(r.PerPage),
	}, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
