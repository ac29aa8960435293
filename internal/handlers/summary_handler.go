package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/dwojc6/mybudget/internal/errors"
	"github.com/dwojc6/mybudget/internal/services"
)

// SummaryHandler serves computed period summaries and reports.
type SummaryHandler struct {
	budgetService *services.BudgetService
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(budgetService *services.BudgetService) *SummaryHandler {
	return &SummaryHandler{budgetService: budgetService}
}

// GetSummary returns the full summary for the period containing the date
// query parameter, defaulting to today.
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	date, err := parseDateQuery(c, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": h.budgetService.Summary(date)})
}

// StepPeriod returns the reference date for the period a number of steps away
// from the one containing the date parameter.
func (h *SummaryHandler) StepPeriod(c *gin.Context) {
	date, err := parseDateQuery(c, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	step, err := strconv.Atoi(c.DefaultQuery("step", "1"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid step"))
		return
	}
	stepped := h.budgetService.StepPeriod(date, step)
	c.JSON(http.StatusOK, gin.H{"date": stepped.Format(dateLayout)})
}

// GetWeeklyReport returns the current week's actual income and spending.
func (h *SummaryHandler) GetWeeklyReport(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"report": h.budgetService.Weekly()})
}
