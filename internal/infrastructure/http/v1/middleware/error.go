package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retailpos/internal/core/apperror"
	appctx "retailpos/internal/core/context"
	"retailpos/pkg/logger"
)

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler renders the last error a handler registered with c.Error.
// Server errors are logged with their cause and reach the client only as
// a request id.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, c.Errors.Last().Err)
	}
}

func writeError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	appErr, ok := apperror.AsAppError(err)
	if !ok {
		appErr = apperror.NewInternal(err)
	}

	status := appErr.HTTPStatus
	body := errorBody{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details}

	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", "code", appErr.Code, "error", appErr.Err)
		body = errorBody{
			Code:    apperror.CodeInternal,
			Message: "Internal server error",
			Details: map[string]any{"request_id": appctx.RequestID(ctx)},
		}
	} else if appErr.Err != nil {
		logger.Warn(ctx, "request rejected", "code", appErr.Code, "error", appErr.Err)
	}

	failIdempotency(c, status, body)
	c.AbortWithStatusJSON(status, body)
}
