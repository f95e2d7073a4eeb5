package respond

import (
	"github.com/gin-gonic/gin"

	"sentiment-scoop/internal/shared/telemetry"
)

// ErrorResponse is the flat error body every endpoint returns. The browser
// extension keys off the "error" field, so the shape stays minimal.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries a human-readable success message.
type MessageResponse struct {
	Message string `json:"message"`
}

// Error sends the standardized error response and aborts the request.
func Error(c *gin.Context, status int, message string) {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// Message sends a flat {"message": ...} body.
func Message(c *gin.Context, status int, message string) {
	JSON(c, status, MessageResponse{Message: message})
}
