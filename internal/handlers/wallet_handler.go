package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "danaku/internal/errors"
	"danaku/internal/models"
	"danaku/internal/pagination"
	"danaku/internal/services"
)

// WalletHandler handles wallet lifecycle requests.
type WalletHandler struct {
	walletService services.WalletServicer
	auditService  services.AuditServicer
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService services.WalletServicer, auditService services.AuditServicer) *WalletHandler {
	return &WalletHandler{walletService: walletService, auditService: auditService}
}

// CreateWalletRequest represents the request payload for creating a wallet
type CreateWalletRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Currency string `json:"currency" binding:"omitempty,iso4217"`
}

// RenameWalletRequest represents the request payload for renaming a wallet
type RenameWalletRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// ArchiveWalletRequest represents the request payload for archiving or restoring a wallet
type ArchiveWalletRequest struct {
	Archived *bool `json:"archived" binding:"required"`
}

// ListWalletsQuery holds the query parameters of the wallet list
type ListWalletsQuery struct {
	pagination.PageRequest
	IncludeArchived bool `form:"include_archived"`
}

// CreateWallet handles the creation of a new wallet
// @Summary     Create a wallet
// @Description Create a wallet with a zero balance. Currency defaults to the profile currency.
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateWalletRequest true "Wallet details"
// @Success     201 {object} models.Wallet "Wallet created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /wallets [post]
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	wallet, err := h.walletService.CreateWallet(c.Request.Context(), userID, req.Name, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_WALLET", models.AuditResourceWallet, wallet.ID, c.ClientIP(),
		map[string]interface{}{"name": wallet.Name, "currency": wallet.Currency})

	c.JSON(http.StatusCreated, gin.H{"wallet": wallet})
}

// ListWallets handles the retrieval of the user's wallets
// @Summary     List wallets
// @Description Get a paginated list of wallets, oldest first. Archived wallets are hidden unless include_archived is set.
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Param       page             query int  false "Page number (default 1)"
// @Param       page_size        query int  false "Items per page (default 20, max 100)"
// @Param       include_archived query bool false "Include archived wallets"
// @Success     200 {object} pagination.PageResponse[models.Wallet] "Paginated wallets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /wallets [get]
func (h *WalletHandler) ListWallets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListWalletsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.walletService.ListWallets(c.Request.Context(), userID, query.PageRequest, query.IncludeArchived)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetWallet handles the retrieval of a single wallet
// @Summary     Get a wallet
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Wallet ID"
// @Success     200 {object} models.Wallet "Wallet"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Router      /wallets/{id} [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	walletID, err := parsePathID(c, "id", apperrors.ErrWalletNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	wallet, err := h.walletService.GetWallet(c.Request.Context(), userID, walletID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

// RenameWallet handles renaming a wallet
// @Summary     Rename a wallet
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Wallet ID"
// @Param       request body RenameWalletRequest true "New name"
// @Success     200 {object} models.Wallet "Renamed wallet"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Router      /wallets/{id} [put]
func (h *WalletHandler) RenameWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	walletID, err := parsePathID(c, "id", apperrors.ErrWalletNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RenameWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	wallet, err := h.walletService.RenameWallet(c.Request.Context(), userID, walletID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "RENAME_WALLET", models.AuditResourceWallet, walletID, c.ClientIP(),
		map[string]interface{}{"name": wallet.Name})

	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

// ArchiveWallet handles archiving or restoring a wallet
// @Summary     Archive or restore a wallet
// @Description Archiving hides a wallet from default lists without touching its balance or transactions. Idempotent.
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Wallet ID"
// @Param       request body ArchiveWalletRequest true "Archive flag"
// @Success     200 {object} models.Wallet "Wallet"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Router      /wallets/{id}/archive [put]
func (h *WalletHandler) ArchiveWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	walletID, err := parsePathID(c, "id", apperrors.ErrWalletNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ArchiveWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	wallet, err := h.walletService.ArchiveWallet(c.Request.Context(), userID, walletID, *req.Archived)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ARCHIVE_WALLET", models.AuditResourceWallet, walletID, c.ClientIP(),
		map[string]interface{}{"archived": *req.Archived})

	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

// DeleteWallet handles deleting a wallet and all of its transactions
// @Summary     Delete a wallet
// @Description Delete a wallet together with every transaction recorded against it. Irreversible.
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Wallet ID"
// @Success     200 {object} map[string]int "Number of deleted transactions"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Router      /wallets/{id} [delete]
func (h *WalletHandler) DeleteWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	walletID, err := parsePathID(c, "id", apperrors.ErrWalletNotFound)
	if err != nil {
		respondWithError(c, err)
		return
	}

	deleted, err := h.walletService.DeleteWallet(c.Request.Context(), userID, walletID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_WALLET", models.AuditResourceWallet, walletID, c.ClientIP(),
		map[string]interface{}{"deleted_transactions": deleted})

	c.JSON(http.StatusOK, gin.H{"deleted_transactions": deleted})
}
