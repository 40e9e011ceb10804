package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "danaku/internal/errors"
)

var (
	errInternalAPIDisabled = &apperrors.AppError{Code: "INTERNAL_API_DISABLED", Message: "Internal endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
	errInvalidAPIKey       = &apperrors.AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
)

// InternalAPIKey guards operator endpoints, such as triggering the daily
// digest, with a shared X-API-Key. An empty configured key disables them.
func InternalAPIKey(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithAppError(c, errInternalAPIDisabled)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithAppError(c, errInvalidAPIKey)
			return
		}
		c.Next()
	}
}
