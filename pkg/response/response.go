package response

import (
	"errors"
	"net/http"

	"mpesa-push-relay/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorBody is the structured error envelope every synchronous endpoint
// returns. The success discriminator is stable across all failure modes.
type ErrorBody struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// OK sends a 200 response with the given body as-is.
func OK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// Error sends an error envelope. *apperror.AppError values map to their HTTP
// status; anything else becomes a 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorBody{
			Success:   false,
			Error:     appErr.Message,
			Details:   appErr.Details,
			RequestID: getRequestID(c),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorBody{
		Success:   false,
		Error:     "Internal server error",
		RequestID: getRequestID(c),
	})
}

// getRequestID retrieves request ID from context, or generates one.
func getRequestID(c *gin.Context) string {
	if id, exists := c.Get("request_id"); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
