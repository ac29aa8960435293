package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dwojc6/mybudget/internal/config"
	"github.com/dwojc6/mybudget/internal/models"
	"github.com/dwojc6/mybudget/internal/services"
	"github.com/dwojc6/mybudget/internal/testutil"
	"github.com/dwojc6/mybudget/internal/validator"
)

// stubLedger serves fixed data so handler tests can exercise a real service.
type stubLedger struct {
	aligned bool
}

func (s *stubLedger) SetToken(string) {}

func (s *stubLedger) FetchCategories(context.Context) ([]models.Category, error) {
	return []models.Category{
		{ID: 1, Name: "Paycheck", IsIncome: true},
		{ID: 2, Name: "Groceries"},
	}, nil
}

func (s *stubLedger) FetchBudgetSummary(context.Context, time.Time, time.Time) (bool, map[int]decimal.Decimal, error) {
	return s.aligned, map[int]decimal.Decimal{2: decimal.NewFromInt(300)}, nil
}

func (s *stubLedger) FetchTransactions(context.Context, time.Time, time.Time) ([]models.Transaction, []string, error) {
	categoryID := 2
	return []models.Transaction{{
		ID:         "100",
		Date:       testutil.Date(2025, time.January, 12),
		Amount:     decimal.NewFromInt(-200),
		Payee:      "GROCERY MART",
		CategoryID: &categoryID,
		CreatedAt:  testutil.Date(2025, time.January, 12),
	}}, nil, nil
}

func (s *stubLedger) UpdateTransactionPayee(context.Context, string, string) error { return nil }
func (s *stubLedger) TriggerAccountSync(context.Context) error                     { return nil }

func setupRouter(t *testing.T, ledger services.LedgerClient) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Register()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	svc, err := services.NewBudgetService(db, ledger, &config.Config{SyncLookbackDays: 7})
	testutil.AssertNoError(t, err)

	syncHandler := NewSyncHandler(svc)
	summaryHandler := NewSummaryHandler(svc)
	transactionHandler := NewTransactionHandler(svc)
	categoryHandler := NewCategoryHandler(svc)
	budgetHandler := NewBudgetHandler(svc)

	r := gin.New()
	r.POST("/setup", syncHandler.Setup)
	r.POST("/sync", syncHandler.Sync)
	r.GET("/summary", summaryHandler.GetSummary)
	r.GET("/transactions", transactionHandler.GetTransactions)
	r.POST("/transactions", transactionHandler.CreateTransaction)
	r.DELETE("/transactions/:id", transactionHandler.HideTransaction)
	r.GET("/categories/spending", categoryHandler.GetSpending)
	r.PUT("/budgets", budgetHandler.UpdateBudget)
	return r
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("malformed error body: %s", w.Body.String())
	}
	return payload.Error.Code
}

func TestSyncAndSummaryFlow(t *testing.T) {
	r := setupRouter(t, &stubLedger{aligned: true})

	if w := perform(r, http.MethodPost, "/sync", ""); w.Code != http.StatusOK {
		t.Fatalf("sync failed: %d %s", w.Code, w.Body.String())
	}

	w := perform(r, http.MethodGet, "/summary?date=2025-01-20", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload struct {
		Summary struct {
			Spent string `json:"spent"`
			Open  bool   `json:"open"`
		} `json:"summary"`
	}
	testutil.AssertNoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	if payload.Summary.Spent != "200" {
		t.Errorf("expected spent 200, got %q", payload.Summary.Spent)
	}

	w = perform(r, http.MethodGet, "/transactions?date=2025-01-20", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	r := setupRouter(t, &stubLedger{aligned: true})

	t.Run("rejects a malformed amount", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/transactions", `{"payee":"Coffee","amount":"abc"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if got := errorCode(t, w); got != "INVALID_INPUT" {
			t.Errorf("expected INVALID_INPUT, got %q", got)
		}
	})

	t.Run("rejects sub-cent precision", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/transactions", `{"payee":"Coffee","amount":"-5.001"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("rejects a zero amount", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/transactions", `{"payee":"Coffee","amount":"0.00"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if got := errorCode(t, w); got != "ZERO_AMOUNT" {
			t.Errorf("expected ZERO_AMOUNT, got %q", got)
		}
	})

	t.Run("creates a manual transaction", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/transactions", `{"payee":"Coffee","amount":"-5.00","date":"2025-01-19"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestHideTransactionNotFound(t *testing.T) {
	r := setupRouter(t, &stubLedger{aligned: true})

	w := perform(r, http.MethodDelete, "/transactions/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if got := errorCode(t, w); got != "TRANSACTION_NOT_FOUND" {
		t.Errorf("expected TRANSACTION_NOT_FOUND, got %q", got)
	}
}

func TestGetSpendingRejectsUnknownSort(t *testing.T) {
	r := setupRouter(t, &stubLedger{aligned: true})

	w := perform(r, http.MethodGet, "/categories/spending?sort=bogus", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSetupRejectsMisalignedWindow(t *testing.T) {
	r := setupRouter(t, &stubLedger{aligned: false})

	body := `{"token":"tok","starting_balance":"500.00","import_start":"2024-12-01",
		"period_start":"2025-01-01","period_end":"2025-01-31"}`
	w := perform(r, http.MethodPost, "/setup", body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if got := errorCode(t, w); got != "PERIOD_MISALIGNED" {
		t.Errorf("expected PERIOD_MISALIGNED, got %q", got)
	}
}

func TestUpdateBudget(t *testing.T) {
	r := setupRouter(t, &stubLedger{aligned: true})
	perform(r, http.MethodPost, "/sync", "")

	w := perform(r, http.MethodPut, "/budgets", `{"category":"Groceries","amount":"250.00","date":"2025-01-20"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
