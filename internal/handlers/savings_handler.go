package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "danaku/internal/errors"
	"danaku/internal/models"
	"danaku/internal/pagination"
	"danaku/internal/report"
	"danaku/internal/services"
)

// SavingsHandler handles savings pocket requests.
type SavingsHandler struct {
	savingsService services.SavingsServicer
	auditService   services.AuditServicer
}

// NewSavingsHandler creates a new SavingsHandler.
func NewSavingsHandler(savingsService services.SavingsServicer, auditService services.AuditServicer) *SavingsHandler {
	return &SavingsHandler{savingsService: savingsService, auditService: auditService}
}

// CreatePocketRequest represents the request payload for creating a savings pocket
type CreatePocketRequest struct {
	Name   string          `json:"name" binding:"required,max=100"`
	Target decimal.Decimal `json:"target" binding:"decimal_gt0"`
}

// AdjustPocketRequest represents a deposit (positive delta) or withdrawal (negative delta)
type AdjustPocketRequest struct {
	Delta decimal.Decimal `json:"delta" binding:"decimal_nonzero"`
}

// PocketResponse is a savings pocket together with its progress towards the target
type PocketResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Target        decimal.Decimal `json:"target"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Progress      int64           `json:"progress"`
	Version       int64           `json:"version"`
}

func toPocketResponse(status report.PocketStatus, version int64) PocketResponse {
	return PocketResponse{
		ID:            status.ID,
		Name:          status.Name,
		Target:        status.Target,
		CurrentAmount: status.CurrentAmount,
		Progress:      status.Percent,
		Version:       version,
	}
}

// CreatePocket handles the creation of a savings pocket
// @Summary     Create a savings pocket
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePocketRequest true "Pocket details"
// @Success     201 {object} PocketResponse "Pocket created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /savings [post]
func (h *SavingsHandler) CreatePocket(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePocketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	pocket, err := h.savingsService.CreatePocket(c.Request.Context(), userID, req.Name, req.Target)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_POCKET", models.AuditResourcePocket, pocket.ID, c.ClientIP(),
		map[string]interface{}{"name": pocket.Name, "target": pocket.Target.String()})

	c.JSON(http.StatusCreated, gin.H{"pocket": toPocketResponse(report.PocketStatusOf(*pocket), pocket.Version)})
}

// ListPockets handles the retrieval of the user's savings pockets
// @Summary     List savings pockets
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[PocketResponse] "Paginated pockets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /savings [get]
func (h *SavingsHandler) ListPockets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.savingsService.ListPockets(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Map(*result, func(p models.SavingsPocket) PocketResponse {
		return toPocketResponse(report.PocketStatusOf(p), p.Version)
	}))
}

// GetPocket handles the retrieval of a single savings pocket
// @Summary     Get a savings pocket
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Pocket ID"
// @Success     200 {object} PocketResponse "Pocket"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pocket not found"
// @Router      /savings/{id} [get]
func (h *SavingsHandler) GetPocket(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	pocketID, err := parsePathID(c, "id", apperrors.ErrPocketNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	pocket, err := h.savingsService.GetPocket(c.Request.Context(), userID, pocketID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pocket": toPocketResponse(report.PocketStatusOf(*pocket), pocket.Version)})
}

// AdjustPocket handles a deposit into or withdrawal from a savings pocket
// @Summary     Adjust a savings pocket
// @Description Add a positive delta or withdraw with a negative one. The amount can never drop below zero.
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Pocket ID"
// @Param       request body AdjustPocketRequest true "Delta"
// @Success     200 {object} PocketResponse "Adjusted pocket"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Pocket not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Failure     422 {object} ErrorResponse "Amount would go below zero"
// @Router      /savings/{id}/adjust [post]
func (h *SavingsHandler) AdjustPocket(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	pocketID, err := parsePathID(c, "id", apperrors.ErrPocketNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AdjustPocketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	pocket, err := h.savingsService.AdjustSavingsPocket(c.Request.Context(), userID, pocketID, req.Delta)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ADJUST_POCKET", models.AuditResourcePocket, pocketID, c.ClientIP(),
		map[string]interface{}{"delta": req.Delta.String(), "current_amount": pocket.CurrentAmount.String()})

	c.JSON(http.StatusOK, gin.H{"pocket": toPocketResponse(report.PocketStatusOf(*pocket), pocket.Version)})
}

// DeletePocket handles deleting a savings pocket
// @Summary     Delete a savings pocket
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Pocket ID"
// @Success     204 "Deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Pocket not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Router      /savings/{id} [delete]
func (h *SavingsHandler) DeletePocket(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	pocketID, err := parsePathID(c, "id", apperrors.ErrPocketNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.savingsService.DeletePocket(c.Request.Context(), userID, pocketID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_POCKET", models.AuditResourcePocket, pocketID, c.ClientIP(), nil)

	c.Status(http.StatusNoContent)
}
