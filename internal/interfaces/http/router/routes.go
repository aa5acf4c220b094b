package router

import (
	"github.com/gin-gonic/gin"
	"github.com/salesdash/backend/internal/interfaces/http/handler"
)

// APIHandlers are the handlers behind the versioned API
type APIHandlers struct {
	Transactions *handler.TransactionHandler
	Reports      *handler.ReportHandler
	System       *handler.SystemHandler
}

// DashboardGroups builds the route groups of the dashboard API.
// importGuard runs in front of the dataset import only, so callers can give
// that endpoint a stricter limit than the read endpoints.
func DashboardGroups(h APIHandlers, importGuard ...gin.HandlerFunc) []*DomainGroup {
	transactions := NewDomainGroup("transactions", "/transactions")
	transactions.GET("", h.Transactions.List)
	initHandlers := make([]gin.HandlerFunc, 0, len(importGuard)+1)
	initHandlers = append(initHandlers, importGuard...)
	transactions.POST("/init", append(initHandlers, h.Transactions.Init)...)

	reports := NewDomainGroup("reports", "/reports")
	reports.GET("/statistics", h.Reports.GetStatistics)
	reports.GET("/bar-chart", h.Reports.GetBarChart)
	reports.GET("/pie-chart", h.Reports.GetPieChart)
	reports.GET("/combined", h.Reports.GetCombined)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	system.GET("/ping", h.System.Ping)

	return []*DomainGroup{transactions, reports, system}
}
