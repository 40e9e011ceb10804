package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "danaku/internal/errors"
	"danaku/internal/middleware"
	"danaku/internal/models"
	"danaku/internal/uuid"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// parsePathID reads a UUID path parameter. A malformed id is reported with
// the entity's not-found error, since no document can have it.
func parsePathID(c *gin.Context, param string, notFound *apperrors.AppError) (string, error) {
	id := c.Param(param)
	if !uuid.IsValid(id) {
		return "", notFound
	}
	return id, nil
}

// parseDate accepts a calendar date (YYYY-MM-DD) or an RFC3339 timestamp and
// returns the calendar date it names.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(models.DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD or RFC3339", value)
	}
	return models.TruncateToDate(t), nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

// bindError reports a request binding failure as INVALID_INPUT.
func bindError(c *gin.Context, err error) {
	respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
