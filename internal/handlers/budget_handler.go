package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/dwojc6/mybudget/internal/errors"
	"github.com/dwojc6/mybudget/internal/services"
)

// BudgetHandler handles budget-table requests.
type BudgetHandler struct {
	budgetService *services.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService *services.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// GetBudgets returns the effective budget per category for the period
// containing the date parameter.
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	date, err := parseDateQuery(c, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"budgets": h.budgetService.Budgets(date)})
}

// UpdateBudgetRequest represents the request payload for a budget update.
type UpdateBudgetRequest struct {
	Category string  `json:"category" binding:"required"`
	Amount   string  `json:"amount" binding:"required,money_amount"`
	Date     *string `json:"date" binding:"omitempty,date_ymd"`
}

// UpdateBudget sets a category's budget for the selected period and the
// default layer, returning any alerts the change fired.
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, _ := decimal.NewFromString(req.Amount)
	date := time.Now().UTC()
	if req.Date != nil {
		date, _ = time.Parse(dateLayout, *req.Date)
	}

	alerts, err := h.budgetService.UpdateBudget(req.Category, amount, date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Budget updated", "alerts": alerts})
}

// SetBalanceRequest represents the request payload for the starting balance.
type SetBalanceRequest struct {
	Amount string `json:"amount" binding:"required,money_amount"`
}

// SetStartingBalance replaces the balance all aggregates build on.
func (h *BudgetHandler) SetStartingBalance(c *gin.Context) {
	var req SetBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	amount, _ := decimal.NewFromString(req.Amount)
	if err := h.budgetService.SetStartingBalance(amount); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Starting balance updated"})
}
