package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dwojc6/mybudget/internal/budget"
	apperrors "github.com/dwojc6/mybudget/internal/errors"
	"github.com/dwojc6/mybudget/internal/models"
	"github.com/dwojc6/mybudget/internal/pagination"
	"github.com/dwojc6/mybudget/internal/testutil"
	"github.com/dwojc6/mybudget/internal/uuid"
)

// syncedService returns a service that has completed one sync against the
// fixture ledger.
func syncedService(t *testing.T) (*BudgetService, *fakeLedger) {
	t.Helper()
	fake := ledgerFixture()
	svc := newTestService(t, fake)
	_, err := svc.Sync(context.Background(), SyncOptions{})
	testutil.AssertNoError(t, err)
	return svc, fake
}

func TestAddManualTransaction(t *testing.T) {
	t.Run("creates a prefixed transaction", func(t *testing.T) {
		svc, _ := syncedService(t)

		txn, _, err := svc.AddManualTransaction("Coffee Shop", testutil.Money("-5.00"), "Groceries", testNow, "")
		testutil.AssertNoError(t, err)

		if !strings.HasPrefix(txn.ID, uuid.ManualIDPrefix) {
			t.Errorf("expected manual id prefix, got %q", txn.ID)
		}
		if !txn.IsManual() {
			t.Error("expected IsManual")
		}
		if got := svc.state.CategoryFor(*txn); got != "Groceries" {
			t.Errorf("expected category Groceries, got %q", got)
		}

		reloaded, _, err := loadState(svc.db)
		testutil.AssertNoError(t, err)
		if _, ok := reloaded.TransactionByID(txn.ID); !ok {
			t.Error("expected manual transaction to be persisted")
		}
	})

	t.Run("rejects an empty payee", func(t *testing.T) {
		svc, _ := syncedService(t)
		_, _, err := svc.AddManualTransaction("   ", testutil.Money("-5.00"), "", testNow, "")
		testutil.AssertAppError(t, err, "EMPTY_PAYEE")
	})

	t.Run("rejects a zero amount", func(t *testing.T) {
		svc, _ := syncedService(t)
		_, _, err := svc.AddManualTransaction("Coffee Shop", testutil.Money("0"), "", testNow, "")
		testutil.AssertAppError(t, err, "ZERO_AMOUNT")
	})

	t.Run("unknown category becomes an override", func(t *testing.T) {
		svc, _ := syncedService(t)
		txn, _, err := svc.AddManualTransaction("Vet", testutil.Money("-80.00"), "Pets", testNow, "")
		testutil.AssertNoError(t, err)
		if got := svc.state.CategoryFor(*txn); got != "Pets" {
			t.Errorf("expected override category Pets, got %q", got)
		}
	})
}

func TestHideTransaction(t *testing.T) {
	svc, _ := syncedService(t)

	spentBefore := svc.state.Spent("Groceries", testNow, testNow)
	testutil.AssertDecimalEqual(t, spentBefore, "200")

	testutil.AssertNoError(t, svc.HideTransaction("100"))
	testutil.AssertDecimalEqual(t, svc.state.Spent("Groceries", testNow, testNow), "0")

	t.Run("unknown id", func(t *testing.T) {
		testutil.AssertAppError(t, svc.HideTransaction("does-not-exist"), "TRANSACTION_NOT_FOUND")
	})
}

func TestOverrideCategory(t *testing.T) {
	svc, _ := syncedService(t)

	testutil.AssertNoError(t, svc.OverrideCategory("100", "Dining Out"))

	txn, _ := svc.state.TransactionByID("100")
	if got := svc.state.CategoryFor(txn); got != "Dining Out" {
		t.Errorf("expected Dining Out, got %q", got)
	}

	t.Run("unknown id", func(t *testing.T) {
		testutil.AssertAppError(t, svc.OverrideCategory("nope", "Dining Out"), "TRANSACTION_NOT_FOUND")
	})
}

func TestRenamePayee(t *testing.T) {
	t.Run("ledger-owned rows are pushed upstream", func(t *testing.T) {
		svc, fake := syncedService(t)

		testutil.AssertNoError(t, svc.RenamePayee(context.Background(), "100", "Grocery Mart"))

		if fake.renamed["100"] != "Grocery Mart" {
			t.Error("expected upstream rename")
		}
		txn, _ := svc.state.TransactionByID("100")
		if txn.Payee != "Grocery Mart" {
			t.Errorf("expected local rename, got %q", txn.Payee)
		}
	})

	t.Run("manual rows rename locally only", func(t *testing.T) {
		svc, fake := syncedService(t)
		txn, _, err := svc.AddManualTransaction("Coffee", testutil.Money("-4.00"), "", testNow, "")
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.RenamePayee(context.Background(), txn.ID, "Cafe"))
		if len(fake.renamed) != 0 {
			t.Error("manual rename must not hit the ledger")
		}
	})

	t.Run("upstream failure keeps the old name", func(t *testing.T) {
		svc, fake := syncedService(t)
		fake.payeeErr = apperrors.ErrLedgerUnavailable

		err := svc.RenamePayee(context.Background(), "100", "Grocery Mart")
		testutil.AssertAppError(t, err, "LEDGER_UNAVAILABLE")

		txn, _ := svc.state.TransactionByID("100")
		if txn.Payee != "GROCERY MART" {
			t.Errorf("expected original payee, got %q", txn.Payee)
		}
	})
}

func TestUpdateBudget(t *testing.T) {
	svc, _ := syncedService(t)

	alerts, err := svc.UpdateBudget("Groceries", testutil.Money("250.00"), testNow)
	testutil.AssertNoError(t, err)

	// 200 spent against a 250 budget crosses the alert threshold.
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	testutil.AssertDecimalEqual(t, svc.state.BudgetFor("Groceries", testNow, testNow), "250")

	reloaded, _, err := loadState(svc.db)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimalEqual(t, reloaded.DefaultBudgets["Groceries"], "250")
	periodKey := budget.PeriodKey(svc.state.PeriodStart(testNow, testNow))
	testutil.AssertDecimalEqual(t, reloaded.PeriodBudgets[periodKey]["Groceries"], "250")
}

func TestCategoryManagement(t *testing.T) {
	svc, _ := syncedService(t)

	t.Run("add", func(t *testing.T) {
		testutil.AssertNoError(t, svc.AddCategory("Pets", testutil.Money("50.00")))
		testutil.AssertDecimalEqual(t, svc.state.BudgetFor("Pets", testNow, testNow), "50")
	})

	t.Run("move", func(t *testing.T) {
		testutil.AssertNoError(t, svc.MoveCategory("Pets", 0))
		if svc.state.CategoryOrder[0] != "Pets" {
			t.Errorf("expected Pets first, got %v", svc.state.CategoryOrder)
		}
	})

	t.Run("delete", func(t *testing.T) {
		testutil.AssertNoError(t, svc.DeleteCategory("Pets"))
		for _, name := range svc.state.CategoryOrder {
			if name == "Pets" {
				t.Error("expected Pets removed from order")
			}
		}
		var count int64
		svc.db.Model(&models.BudgetEntry{}).Where("category = ?", "Pets").Count(&count)
		if count != 0 {
			t.Errorf("expected budget entries deleted, found %d", count)
		}
	})

	t.Run("delete unknown", func(t *testing.T) {
		testutil.AssertAppError(t, svc.DeleteCategory("Nope"), "CATEGORY_NOT_FOUND")
	})
}

func TestSummary(t *testing.T) {
	svc, _ := syncedService(t)

	summary := svc.Summary(testNow)
	if summary.Relation != budget.PeriodCurrent {
		t.Errorf("expected current period, got %s", summary.Relation)
	}
	if !summary.Open {
		t.Error("expected open current period")
	}
	testutil.AssertDecimalEqual(t, summary.Spent, "200")
}

func TestTransactionsListing(t *testing.T) {
	svc, _ := syncedService(t)
	_, _, err := svc.AddManualTransaction("Coffee", testutil.Money("-4.00"), "Dining Out", testNow, "")
	testutil.AssertNoError(t, err)

	t.Run("lists the period's transactions", func(t *testing.T) {
		page := svc.Transactions(testNow, "", pagination.PageRequest{})
		if page.TotalItems != 2 {
			t.Errorf("expected 2 transactions, got %d", page.TotalItems)
		}
	})

	t.Run("filters by resolved category", func(t *testing.T) {
		page := svc.Transactions(testNow, "Dining Out", pagination.PageRequest{})
		if page.TotalItems != 1 {
			t.Fatalf("expected 1 transaction, got %d", page.TotalItems)
		}
		if page.Data[0].Payee != "Coffee" {
			t.Errorf("expected the coffee purchase, got %q", page.Data[0].Payee)
		}
	})

	t.Run("paginates", func(t *testing.T) {
		page := svc.Transactions(testNow, "", pagination.PageRequest{Page: 2, PageSize: 1})
		if len(page.Data) != 1 || page.TotalPages != 2 {
			t.Errorf("expected page 2 of 2 with 1 row, got %d rows over %d pages", len(page.Data), page.TotalPages)
		}
	})

	t.Run("hidden rows are excluded", func(t *testing.T) {
		testutil.AssertNoError(t, svc.HideTransaction("100"))
		page := svc.Transactions(testNow, "", pagination.PageRequest{})
		if page.TotalItems != 1 {
			t.Errorf("expected 1 visible transaction, got %d", page.TotalItems)
		}
	})
}

func TestWeekly(t *testing.T) {
	svc, _ := syncedService(t)

	report := svc.Weekly()
	start, end := budget.WeekInterval(testNow)
	if !report.Start.Equal(start) || !report.End.Equal(end) {
		t.Errorf("unexpected interval %v - %v", report.Start, report.End)
	}
	// The fixture's grocery run on Jan 12 is in the prior week.
	testutil.AssertDecimalEqual(t, report.Expenses, "0")
}

func TestSetStartingBalance(t *testing.T) {
	svc, _ := syncedService(t)

	testutil.AssertNoError(t, svc.SetStartingBalance(testutil.Money("750.00")))

	reloaded, _, err := loadState(svc.db)
	testutil.AssertNoError(t, err)
	testutil.AssertDecimalEqual(t, reloaded.StartingBalance, "750")
}
