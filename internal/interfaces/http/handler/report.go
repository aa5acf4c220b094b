package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	reportapp "github.com/salesdash/backend/internal/application/report"
	"github.com/salesdash/backend/internal/interfaces/http/middleware"
)

// ReportHandler serves the dashboard aggregates
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// servePeriodReport binds the period query, runs fetch and writes the result
func servePeriodReport[T any](h *ReportHandler, c *gin.Context, fetch func(context.Context, reportapp.PeriodQuery) (T, error)) {
	var req PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	query, err := req.toQuery()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := fetch(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetStatistics godoc
// @ID           getReportStatistics
// @Summary      Get sales statistics
// @Description  Returns the total sale amount and the sold and unsold item counts for the selected month
// @Tags         reports
// @Produce      json
// @Param        month query string false "Month name or number" example(March)
// @Param        year  query int    false "Year" example(2022)
// @Success      200 {object} APIResponse[reportapp.StatisticsResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /reports/statistics [get]
func (h *ReportHandler) GetStatistics(c *gin.Context) {
	servePeriodReport(h, c, h.reportService.GetStatistics)
}

// GetBarChart godoc
// @ID           getReportBarChart
// @Summary      Get price range histogram
// @Description  Returns item counts for ten price ranges, 0-100 through 901-above, for the selected month. Empty ranges are included.
// @Tags         reports
// @Produce      json
// @Param        month query string false "Month name or number" example(March)
// @Param        year  query int    false "Year" example(2022)
// @Success      200 {object} APIResponse[[]reportapp.PriceRangeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /reports/bar-chart [get]
func (h *ReportHandler) GetBarChart(c *gin.Context) {
	servePeriodReport(h, c, h.reportService.GetPriceRangeChart)
}

// GetPieChart godoc
// @ID           getReportPieChart
// @Summary      Get category breakdown
// @Description  Returns item counts per category for the selected month
// @Tags         reports
// @Produce      json
// @Param        month query string false "Month name or number" example(March)
// @Param        year  query int    false "Year" example(2022)
// @Success      200 {object} APIResponse[[]reportapp.CategoryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /reports/pie-chart [get]
func (h *ReportHandler) GetPieChart(c *gin.Context) {
	servePeriodReport(h, c, h.reportService.GetCategoryChart)
}

// GetCombined godoc
// @ID           getReportCombined
// @Summary      Get every dashboard view
// @Description  Returns the first page of transactions, statistics, bar chart and pie chart for the selected month in one response
// @Tags         reports
// @Produce      json
// @Param        month query string false "Month name or number" example(March)
// @Param        year  query int    false "Year" example(2022)
// @Success      200 {object} APIResponse[reportapp.CombinedReportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /reports/combined [get]
func (h *ReportHandler) GetCombined(c *gin.Context) {
	servePeriodReport(h, c, h.reportService.GetCombined)
}
