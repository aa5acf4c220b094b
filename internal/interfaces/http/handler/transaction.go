package handler

import (
	"github.com/gin-gonic/gin"
	importapp "github.com/salesdash/backend/internal/application/import"
	reportapp "github.com/salesdash/backend/internal/application/report"
	"github.com/salesdash/backend/internal/interfaces/http/middleware"
)

// TransactionHandler serves the transaction listing and dataset import
type TransactionHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
	importService *importapp.TransactionImportService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(reportService *reportapp.ReportService, importService *importapp.TransactionImportService) *TransactionHandler {
	return &TransactionHandler{
		reportService: reportService,
		importService: importService,
	}
}

// List godoc
// @ID           listTransactions
// @Summary      List transactions
// @Description  Returns one page of transactions for the selected month, optionally filtered by a search term matched against title, description and price. Invalid paging values fall back to page 1 and 10 per page.
// @Tags         transactions
// @Produce      json
// @Param        page      query int    false "Page number (1-based)" default(1)
// @Param        per_page  query int    false "Page size, at most 100" default(10)
// @Param        search    query string false "Search text"
// @Param        month     query string false "Month name or number" example(March)
// @Param        year      query int    false "Year" example(2022)
// @Success      200 {object} APIResponse[reportapp.TransactionListResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var req ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	query, err := req.toQuery()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.reportService.ListTransactions(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result, result.TotalCount, result.Page, result.PerPage)
}

// Init godoc
// @ID           initTransactions
// @Summary      Import the seed dataset
// @Description  Fetches the seed dataset and replaces every stored transaction with it. Only one import runs at a time.
// @Tags         transactions
// @Produce      json
// @Success      200 {object} APIResponse[importapp.ImportResult]
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /transactions/init [post]
func (h *TransactionHandler) Init(c *gin.Context) {
	result, err := h.importService.Import(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
