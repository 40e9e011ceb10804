package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"danaku/internal/services"
)

// ReportHandler serves dashboard aggregates.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Summary returns the dashboard summary
// @Summary     Dashboard summary
// @Description Total balance of active wallets, balances per currency, largest expense category, expense distribution, savings progress and the most recent transactions
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} report.Summary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     503 {object} ErrorResponse "Storage unavailable"
// @Router      /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.reportService.Summary(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
