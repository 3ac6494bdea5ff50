package httpkit

import (
	"errors"
	"net/http"

	"leadconnect_backend/platform/apperr"
	"leadconnect_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "internal error"

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func JSON(c *gin.Context, status int, payload any) { c.JSON(status, payload) }

func OK(c *gin.Context, payload any) { c.JSON(http.StatusOK, payload) }

// Error writes a client-facing error that did not come from apperr.
func Error(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{Error: message, Details: details, RequestID: requestID(c)})
}

// HandleError writes err and reports whether there was one. The first
// *apperr.Error in the chain picks the status. StoreFailure and untyped
// errors answer 500 without their cause.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	_ = c.Error(err)

	resp := ErrorResponse{Error: internalErrorMessage, RequestID: requestID(c)}
	status := http.StatusInternalServerError

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatus()
		resp.Kind = appErr.Kind.String()
		if appErr.Kind != apperr.KindInternal {
			resp.Error = appErr.Message
			resp.Details = appErr.Details
		}
	}

	c.JSON(status, resp)
	return true
}

func requestID(c *gin.Context) string {
	id, _ := c.Request.Context().Value(logger.RequestIDKey).(string)
	return id
}
