package handler

import (
	"net/http"
	"time"

	"mpesa-push-relay/internal/adapter/http/dto"
	"mpesa-push-relay/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthInfo holds the static values reported by the health endpoint.
// Endpoint URLs only; credentials never appear here.
type HealthInfo struct {
	GatewayURL  string
	CallbackURL string
	WalletURL   string
	StartedAt   time.Time
}

// HealthCheck reports uptime, configured endpoints, and dependency health.
// Any failing dependency degrades the overall status to 503.
func HealthCheck(info HealthInfo, checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		deps := make([]dto.DependencyStatus, 0, len(checkers))
		allHealthy := true

		for _, checker := range checkers {
			status := "healthy"
			if err := checker.Ping(c.Request.Context()); err != nil {
				status = "unhealthy"
				allHealthy = false
			}
			deps = append(deps, dto.DependencyStatus{Name: checker.Name(), Status: status})
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, dto.HealthResponse{
			Status:        status,
			UptimeSeconds: int64(time.Since(info.StartedAt).Seconds()),
			GatewayURL:    info.GatewayURL,
			CallbackURL:   info.CallbackURL,
			WalletURL:     info.WalletURL,
			Dependencies:  deps,
		})
	}
}
