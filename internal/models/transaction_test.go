package models

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dwojc6/mybudget/internal/uuid"
)

func TestIsManual(t *testing.T) {
	manual := Transaction{ID: uuid.NewManualID()}
	if !manual.IsManual() {
		t.Error("expected manual id to be recognized")
	}
	synced := Transaction{ID: "12345"}
	if synced.IsManual() {
		t.Error("expected plain id not to be manual")
	}
}

func TestAmountKey(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"-5.00", "-5"},
		{"-5.005", "-5"},    // banker's rounding to even
		{"-5.015", "-5.02"}, // banker's rounding to even
		{"10.1", "10.1"},
	}
	for _, tt := range tests {
		txn := Transaction{Amount: decimal.RequireFromString(tt.amount)}
		if got := txn.AmountKey(); got != tt.want {
			t.Errorf("AmountKey(%s): expected %q, got %q", tt.amount, tt.want, got)
		}
	}
}

func TestDisplayPayee(t *testing.T) {
	tests := []struct {
		name  string
		payee string
		want  string
	}{
		{"card prefix stripped", "CHECKCARD 0312 STARBUCKS STORE", "STARBUCKS STORE"},
		{"mobile purchase stripped", "MOBILE PURCHASE 0312 LOCAL CAFE", "LOCAL CAFE"},
		{"ach tail stripped", "ACME CORP DES:PAYROLL ID:123", "ACME CORP"},
		{"confirmation stripped", "TRANSFER TO CHK: Conf# abc123", "TRANSFER TO CHK"},
		{"masked digits stripped", "PAYMENT XXXXX1234", "PAYMENT"},
		{"plain name untouched", "Grocery Mart", "Grocery Mart"},
		{"empty payee", "", "Unknown Transaction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := Transaction{Payee: tt.payee}
			if got := txn.DisplayPayee(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		name     string
		isIncome bool
		want     CategoryKind
	}{
		{"Paycheck", true, CategoryKindIncome},
		{"Emergency Savings", false, CategoryKindSavings},
		{"savings account", false, CategoryKindSavings},
		{"Groceries", false, CategoryKindExpense},
		{"Savings Yield", true, CategoryKindIncome}, // income flag wins
	}
	for _, tt := range tests {
		if got := ClassifyCategory(tt.name, tt.isIncome); got != tt.want {
			t.Errorf("ClassifyCategory(%q, %v): expected %s, got %s", tt.name, tt.isIncome, tt.want, got)
		}
	}
}
