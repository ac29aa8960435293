package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/dwojc6/mybudget/internal/errors"
	"github.com/dwojc6/mybudget/internal/pagination"
	"github.com/dwojc6/mybudget/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	budgetService *services.BudgetService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(budgetService *services.BudgetService) *TransactionHandler {
	return &TransactionHandler{budgetService: budgetService}
}

// GetTransactions lists the period's visible transactions, newest first,
// optionally filtered by resolved category.
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	date, err := parseDateQuery(c, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	response := h.budgetService.Transactions(date, c.Query("category"), page)
	c.JSON(http.StatusOK, response)
}

// CreateTransactionRequest represents the request payload for a manual
// transaction.
type CreateTransactionRequest struct {
	Payee    string  `json:"payee" binding:"required"`
	Amount   string  `json:"amount" binding:"required,money_amount"`
	Category string  `json:"category"`
	Date     *string `json:"date" binding:"omitempty,date_ymd"`
	Memo     string  `json:"memo" binding:"max=500"`
}

// CreateTransaction records a manually-entered transaction.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, _ := decimal.NewFromString(req.Amount)
	date := time.Now().UTC()
	if req.Date != nil {
		date, _ = time.Parse(dateLayout, *req.Date)
	}

	txn, alerts, err := h.budgetService.AddManualTransaction(req.Payee, amount, req.Category, date, req.Memo)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": txn, "alerts": alerts})
}

// HideTransaction soft-deletes a transaction from every aggregate.
func (h *TransactionHandler) HideTransaction(c *gin.Context) {
	if err := h.budgetService.HideTransaction(c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction hidden"})
}

// OverrideCategoryRequest represents the request payload for a category
// override.
type OverrideCategoryRequest struct {
	Category string `json:"category" binding:"required"`
}

// OverrideCategory pins a transaction to a category.
func (h *TransactionHandler) OverrideCategory(c *gin.Context) {
	var req OverrideCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := h.budgetService.OverrideCategory(c.Param("id"), req.Category); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category overridden"})
}

// RenamePayeeRequest represents the request payload for a payee rename.
type RenamePayeeRequest struct {
	Payee string `json:"payee" binding:"required"`
}

// RenamePayee renames a transaction's payee, pushing ledger-owned rows
// upstream first.
func (h *TransactionHandler) RenamePayee(c *gin.Context) {
	var req RenamePayeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := h.budgetService.RenamePayee(c.Request.Context(), c.Param("id"), req.Payee); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payee updated"})
}
