package ledger

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dwojc6/mybudget/internal/testutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-token", time.Second)
}

func TestFetchCategories(t *testing.T) {
	t.Run("flattens nested categories", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("expected bearer auth, got %q", got)
			}
			w.Write([]byte(`{"categories":[
				{"id":1,"name":"Income","is_income":true,"children":[
					{"id":2,"name":"Paycheck","is_income":true}
				]},
				{"id":3,"name":"Groceries"}
			]}`))
		})

		categories, err := client.FetchCategories(context.Background())
		testutil.AssertNoError(t, err)

		if len(categories) != 3 {
			t.Fatalf("expected 3 categories, got %d", len(categories))
		}
		if categories[1].ParentID == nil || *categories[1].ParentID != 1 {
			t.Errorf("expected child to carry parent id 1, got %v", categories[1].ParentID)
		}
		if !categories[1].IsIncome {
			t.Error("expected income flag preserved")
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_, err := client.FetchCategories(context.Background())
		testutil.AssertAppError(t, err, "LEDGER_UNAUTHORIZED")
	})

	t.Run("missing token", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		client.SetToken("")
		_, err := client.FetchCategories(context.Background())
		testutil.AssertAppError(t, err, "TOKEN_NOT_CONFIGURED")
	})
}

func TestFetchBudgetSummary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("start_date"); got != "2025-01-01" {
			t.Errorf("expected start_date 2025-01-01, got %q", got)
		}
		w.Write([]byte(`{"aligned":true,"categories":[
			{"category_id":3,"totals":{"budgeted":300.004}},
			{"category_id":4,"totals":{}}
		]}`))
	})

	aligned, budgeted, err := client.FetchBudgetSummary(context.Background(),
		testutil.Date(2025, time.January, 1), testutil.Date(2025, time.January, 31))
	testutil.AssertNoError(t, err)

	if !aligned {
		t.Error("expected aligned window")
	}
	testutil.AssertDecimalEqual(t, budgeted[3], "300")
	if _, ok := budgeted[4]; ok {
		t.Error("expected category without a budget to be skipped")
	}
}

func TestFetchTransactions(t *testing.T) {
	t.Run("maps and sign-flips amounts", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"transactions":[
				{"id":100,"date":"2025-01-12","amount":"200.00","payee":"GROCERY MART",
				 "category_id":3,"created_at":"2025-01-12T08:30:00Z","is_pending":false},
				{"id":"101","date":"2025-01-13","amount":"-2500.00","payee":"EMPLOYER"}
			]}`))
		})

		txns, apiErrors, err := client.FetchTransactions(context.Background(),
			testutil.Date(2025, time.January, 1), testutil.Date(2025, time.January, 31))
		testutil.AssertNoError(t, err)
		if len(apiErrors) != 0 {
			t.Fatalf("expected no api errors, got %v", apiErrors)
		}
		if len(txns) != 2 {
			t.Fatalf("expected 2 transactions, got %d", len(txns))
		}

		// Numeric and string ids both decode.
		if txns[0].ID != "100" || txns[1].ID != "101" {
			t.Errorf("unexpected ids %q, %q", txns[0].ID, txns[1].ID)
		}
		testutil.AssertDecimalEqual(t, txns[0].Amount, "-200")
		testutil.AssertDecimalEqual(t, txns[1].Amount, "2500")
		if txns[0].CreatedAt.Hour() != 8 {
			t.Errorf("expected created_at parsed, got %v", txns[0].CreatedAt)
		}
		if !txns[1].CreatedAt.Equal(testutil.Date(2025, time.January, 13)) {
			t.Errorf("expected created_at to default to the date, got %v", txns[1].CreatedAt)
		}
	})

	t.Run("structured error body becomes the errors list", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":["account 7 unavailable","account 9 unavailable"]}`))
		})

		txns, apiErrors, err := client.FetchTransactions(context.Background(),
			testutil.Date(2025, time.January, 1), testutil.Date(2025, time.January, 31))
		testutil.AssertNoError(t, err)
		if txns != nil {
			t.Error("expected no transactions alongside errors")
		}
		if len(apiErrors) != 1 || apiErrors[0] != "account 7 unavailable, account 9 unavailable" {
			t.Errorf("unexpected errors list: %v", apiErrors)
		}
	})

	t.Run("unstructured failure is a transport error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("boom"))
		})

		_, _, err := client.FetchTransactions(context.Background(),
			testutil.Date(2025, time.January, 1), testutil.Date(2025, time.January, 31))
		testutil.AssertAppError(t, err, "LEDGER_UNAVAILABLE")
	})
}

func TestUpdateTransactionPayee(t *testing.T) {
	var gotPath, gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	})

	err := client.UpdateTransactionPayee(context.Background(), "100", "Grocery Mart")
	testutil.AssertNoError(t, err)

	if gotPath != "/transactions/100" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotBody != `{"payee":"Grocery Mart"}` {
		t.Errorf("unexpected body %q", gotBody)
	}
}

func TestTriggerAccountSync(t *testing.T) {
	t.Run("accepts 202", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/plaid_accounts/fetch" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			w.WriteHeader(http.StatusAccepted)
		})
		testutil.AssertNoError(t, client.TriggerAccountSync(context.Background()))
	})

	t.Run("propagates rejection", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limited"}`))
		})
		err := client.TriggerAccountSync(context.Background())
		testutil.AssertAppError(t, err, "LEDGER_UNAVAILABLE")
	})
}
