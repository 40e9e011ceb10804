package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "danaku/internal/errors"
	"danaku/internal/digest"
)

// DigestRunner runs one round of daily summary emails.
type DigestRunner interface {
	RunOnce(ctx context.Context) (*digest.Result, error)
}

// DigestHandler lets operators trigger the daily digest outside its schedule.
type DigestHandler struct {
	runner DigestRunner
}

// NewDigestHandler creates a new DigestHandler.
func NewDigestHandler(runner DigestRunner) *DigestHandler {
	return &DigestHandler{runner: runner}
}

// DigestFailure describes one user the digest could not be sent to
type DigestFailure struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

// DigestRunResponse summarizes a digest run
type DigestRunResponse struct {
	Users      int             `json:"users"`
	Sent       int             `json:"sent"`
	Skipped    int             `json:"skipped"`
	Failed     []DigestFailure `json:"failed"`
	DurationMS int64           `json:"duration_ms"`
}

// Run sends the digest to every active user now
// @Summary     Run the daily digest
// @Description Send the daily summary email to every active user immediately. Requires the X-API-Key header.
// @Tags        internal
// @Produce     json
// @Param       X-API-Key header string true "Internal API key"
// @Success     200 {object} DigestRunResponse "Run summary"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     503 {object} ErrorResponse "Internal endpoints disabled"
// @Router      /internal/digest/run [post]
func (h *DigestHandler) Run(c *gin.Context) {
	result, err := h.runner.RunOnce(c.Request.Context())
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrTransient, err))
		return
	}

	resp := DigestRunResponse{
		Users:      result.Users,
		Sent:       result.Sent,
		Skipped:    result.Skipped,
		Failed:     make([]DigestFailure, 0, len(result.Errors)),
		DurationMS: result.Duration.Milliseconds(),
	}
	for _, e := range result.Errors {
		resp.Failed = append(resp.Failed, DigestFailure{UserID: e.UserID, Error: e.Err.Error()})
	}

	c.JSON(http.StatusOK, resp)
}
