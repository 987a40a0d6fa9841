package handler

import (
	"net/http"

	"mpesa-push-relay/internal/core/ports"
	"mpesa-push-relay/pkg/response"

	"github.com/gin-gonic/gin"
)

// StatusHandler handles push status queries.
type StatusHandler struct {
	statusSvc ports.StatusService
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(statusSvc ports.StatusService) *StatusHandler {
	return &StatusHandler{statusSvc: statusSvc}
}

// QueryStatus handles GET /status/:checkoutId. The gateway body is returned
// verbatim so callers see exactly what the gateway reported.
func (h *StatusHandler) QueryStatus(c *gin.Context) {
	body, err := h.statusSvc.QueryStatus(c.Request.Context(), c.Param("checkoutId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}
