package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/salesdash/backend/internal/infrastructure/telemetry"
)

// ProfilingConfig controls the pyroscope label middleware. Health probes and
// swagger assets are skipped by default.
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/health", "/api/v1/system/ping"},
		SkipPathPrefixes: []string{"/swagger"},
	}
}

func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig runs the remaining handlers under controller, route and
// method labels so profiles can be split per endpoint.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}

	skipped := func(path string) bool {
		if slices.Contains(cfg.SkipPaths, path) {
			return true
		}
		return slices.ContainsFunc(cfg.SkipPathPrefixes, func(p string) bool {
			return strings.HasPrefix(path, p)
		})
	}

	return func(c *gin.Context) {
		if skipped(c.Request.URL.Path) {
			c.Next()
			return
		}
		route := c.FullPath()
		labels := telemetry.HTTPRequestLabels(controllerOf(route), route, c.Request.Method)
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// controllerOf picks the first literal segment after the api/vN prefix:
// "/api/v1/reports/bar-chart" is "reports".
func controllerOf(route string) string {
	for seg := range strings.SplitSeq(route, "/") {
		switch {
		case seg == "", seg == "api", isAPIVersion(seg):
		case seg[0] == ':', seg[0] == '*':
		default:
			return seg
		}
	}
	return ""
}

func isAPIVersion(seg string) bool {
	if len(seg) < 2 || (seg[0] != 'v' && seg[0] != 'V') {
		return false
	}
	return strings.Trim(seg[1:], "0123456789") == ""
}
