package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/dwojc6/mybudget/internal/errors"
	"github.com/dwojc6/mybudget/internal/services"
)

// SyncHandler handles the connect flow and on-demand sync cycles.
type SyncHandler struct {
	budgetService *services.BudgetService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(budgetService *services.BudgetService) *SyncHandler {
	return &SyncHandler{budgetService: budgetService}
}

// SetupRequest represents the request payload for the first-connect flow.
type SetupRequest struct {
	Token           string `json:"token" binding:"required"`
	StartingBalance string `json:"starting_balance" binding:"required,money_amount"`
	ImportStart     string `json:"import_start" binding:"required,date_ymd"`
	PeriodStart     string `json:"period_start" binding:"required,date_ymd"`
	PeriodEnd       string `json:"period_end" binding:"required,date_ymd"`
}

// Setup validates the chosen budgeting window against the remote ledger,
// stores the credential, and runs the initial import.
func (h *SyncHandler) Setup(c *gin.Context) {
	var req SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	balance, _ := decimal.NewFromString(req.StartingBalance)
	importStart, _ := time.Parse(dateLayout, req.ImportStart)
	periodStart, _ := time.Parse(dateLayout, req.PeriodStart)
	periodEnd, _ := time.Parse(dateLayout, req.PeriodEnd)

	result, err := h.budgetService.Setup(c.Request.Context(), services.SetupParams{
		Token:           req.Token,
		StartingBalance: balance,
		ImportStart:     importStart,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// SyncRequest represents the optional request payload for a sync cycle.
type SyncRequest struct {
	Since       *string `json:"since" binding:"omitempty,date_ymd"`
	PeriodStart *string `json:"period_start" binding:"omitempty,date_ymd"`
	PeriodEnd   *string `json:"period_end" binding:"omitempty,date_ymd"`
}

// Sync runs one reconciliation cycle against the remote ledger.
func (h *SyncHandler) Sync(c *gin.Context) {
	var req SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	var opts services.SyncOptions
	if req.Since != nil {
		since, _ := time.Parse(dateLayout, *req.Since)
		opts.Since = &since
	}
	if req.PeriodStart != nil && req.PeriodEnd != nil {
		start, _ := time.Parse(dateLayout, *req.PeriodStart)
		end, _ := time.Parse(dateLayout, *req.PeriodEnd)
		opts.PeriodStart, opts.PeriodEnd = &start, &end
	}

	result, err := h.budgetService.Sync(c.Request.Context(), opts)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}
