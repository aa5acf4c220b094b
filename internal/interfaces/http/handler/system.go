package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// Version is reported by /system/info. Release builds set it with
// -ldflags "-X github.com/salesdash/backend/internal/interfaces/http/handler.Version=...".
var Version = "1.0.0"

const defaultAppName = "salesdash"

// SystemHandler serves process metadata and a liveness ping.
type SystemHandler struct {
	BaseHandler
	name      string
	startTime time.Time
}

func NewSystemHandler(name string) *SystemHandler {
	if name == "" {
		name = defaultAppName
	}
	return &SystemHandler{name: name, startTime: time.Now()}
}

// SystemInfoResponse describes the running build.
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"salesdash"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"goVersion" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Service name, build version, Go runtime and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Truncate(time.Second).String(),
	})
}

// PingResponse echoes the server clock.
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Answers pong with the current UTC time
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{Message: "pong", Timestamp: time.Now().UTC().Format(time.RFC3339)})
}
