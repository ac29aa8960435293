package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dwojc6/mybudget/internal/budget"
	apperrors "github.com/dwojc6/mybudget/internal/errors"
	"github.com/dwojc6/mybudget/internal/services"
)

// CategoryHandler handles category-related requests.
type CategoryHandler struct {
	budgetService *services.BudgetService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(budgetService *services.BudgetService) *CategoryHandler {
	return &CategoryHandler{budgetService: budgetService}
}

// GetCategories returns the persisted category display order.
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.budgetService.CategoryOrder()})
}

// GetSpending lists every category's spend against budget for the period
// containing the date parameter, in the requested sort order.
func (h *CategoryHandler) GetSpending(c *gin.Context) {
	date, err := parseDateQuery(c, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	sort := budget.SortOption(c.DefaultQuery("sort", string(budget.SortTotalSpending)))
	switch sort {
	case budget.SortTotalSpending, budget.SortPercentSpending, budget.SortAlphabetical:
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid sort"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": h.budgetService.CategorySpending(date, sort)})
}

// CreateCategoryRequest represents the request payload for a local category.
type CreateCategoryRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Amount string `json:"amount" binding:"omitempty,money_amount"`
}

// CreateCategory registers a local-only category with a default budget.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	amount := decimal.Zero
	if req.Amount != "" {
		amount, _ = decimal.NewFromString(req.Amount)
	}
	if err := h.budgetService.AddCategory(req.Name, amount); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category created"})
}

// DeleteCategory removes a category and its budget entries.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.budgetService.DeleteCategory(c.Param("name")); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// MoveCategoryRequest represents the request payload for reordering.
type MoveCategoryRequest struct {
	Position int `json:"position" binding:"min=0"`
}

// MoveCategory repositions a category within the display order.
func (h *CategoryHandler) MoveCategory(c *gin.Context) {
	var req MoveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := h.budgetService.MoveCategory(c.Param("name"), req.Position); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category moved"})
}
