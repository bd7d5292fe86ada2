package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"raffle-tool-backend/internal/common/errors"
	"raffle-tool-backend/internal/common/logger"
)

// ErrorHandler recovers panics into a structured internal error.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := getRequestID(c)

		logger.Error().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("stack", string(debug.Stack())).
			Msgf("Panic recovered: %v", recovered)

		appErr := errors.New(errors.ErrCodeInternal, "Internal server error").
			WithRequestID(requestID).
			WithDetail("panic", fmt.Sprintf("%v", recovered))

		c.JSON(http.StatusInternalServerError, newErrorResponse(c, appErr))
	})
}

// RequestID tags every request, honoring an inbound X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
	Path      string           `json:"path,omitempty"`
}

// SendError maps an application error to an HTTP response. Handlers
// call this for every non-success outcome so status mapping lives in
// one place.
func SendError(c *gin.Context, err error) {
	requestID := getRequestID(c)

	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrCodeInternal, "Unexpected error")
	}
	appErr.WithRequestID(requestID)

	logError(c, appErr)
	c.JSON(HTTPStatusFor(appErr.Code), newErrorResponse(c, appErr))
}

func newErrorResponse(c *gin.Context, appErr *errors.AppError) ErrorResponse {
	return ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: getRequestID(c),
		Path:      c.Request.URL.Path,
	}
}

// HTTPStatusFor is the single code-to-status mapping; handlers that
// build their own response bodies use it too.
func HTTPStatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeValidation, errors.ErrCodeBadRequest:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeResolution:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeAvailabilityConflict, errors.ErrCodeQuotaExceeded:
		return http.StatusConflict
	case errors.ErrCodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func logError(c *gin.Context, appErr *errors.AppError) {
	event := logger.Error()
	if appErr.IsRecoverable() {
		event = logger.Info()
	}

	event.
		Str("request_id", getRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code)).
		Err(appErr.Cause).
		Msg(appErr.Message)
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}
