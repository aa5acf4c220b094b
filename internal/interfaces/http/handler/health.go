package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salesdash/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DatabasePinger reports whether the store is reachable
type DatabasePinger interface {
	Ping() error
}

// HealthResponse is the body of the health check endpoint
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Time     string `json:"time" example:"2026-01-23T12:00:00Z"`
	Database string `json:"database" example:"ok"`
}

// Health godoc
// @ID           health
// @Summary      Health check
// @Description  Reports whether the service can reach its database
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func Health(db DatabasePinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now().UTC().Format(time.RFC3339)
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, HealthResponse{
				Status:   "unhealthy",
				Time:     now,
				Database: "error",
			})
			return
		}
		c.JSON(http.StatusOK, HealthResponse{
			Status:   "healthy",
			Time:     now,
			Database: "ok",
		})
	}
}
