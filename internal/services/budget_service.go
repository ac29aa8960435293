package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dwojc6/mybudget/internal/budget"
	"github.com/dwojc6/mybudget/internal/config"
	apperrors "github.com/dwojc6/mybudget/internal/errors"
	"github.com/dwojc6/mybudget/internal/logger"
	"github.com/dwojc6/mybudget/internal/models"
	"github.com/dwojc6/mybudget/internal/pagination"
	"github.com/dwojc6/mybudget/internal/uuid"
)

// BudgetService is the single owner of all mutable budget state. Every
// mutation runs under the service mutex, persists its changes, and triggers
// exactly one engine recompute, so the derived aggregates the handlers read
// are never stale.
type BudgetService struct {
	db     *gorm.DB
	ledger LedgerClient

	lookbackDays int
	settleDelay  time.Duration
	now          func() time.Time

	mu      sync.Mutex
	syncing bool
	state   *budget.State
}

// NewBudgetService loads persisted state and returns a ready service.
func NewBudgetService(db *gorm.DB, ledger LedgerClient, cfg *config.Config) (*BudgetService, error) {
	state, token, err := loadState(db)
	if err != nil {
		return nil, err
	}
	if token != "" {
		ledger.SetToken(token)
	}

	return &BudgetService{
		db:           db,
		ledger:       ledger,
		lookbackDays: cfg.SyncLookbackDays,
		settleDelay:  time.Second,
		now:          time.Now,
		state:        state,
	}, nil
}

// AddManualTransaction records a locally-entered transaction. Manual entries
// get a prefixed id so a later sync can replace them with the real row.
func (s *BudgetService) AddManualTransaction(payee string, amount decimal.Decimal, category string, date time.Time, memo string) (*models.Transaction, []budget.Alert, error) {
	payee = strings.TrimSpace(payee)
	if payee == "" {
		return nil, nil, apperrors.ErrEmptyPayee
	}
	if amount.IsZero() {
		return nil, nil, apperrors.ErrZeroAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txn := models.Transaction{
		ID:        uuid.NewManualID(),
		Date:      budget.StartOfDay(date),
		Amount:    amount,
		Payee:     payee,
		Memo:      memo,
		CreatedAt: s.now(),
	}

	for id, cat := range s.state.Categories {
		if cat.Name == category {
			categoryID := id
			txn.CategoryID = &categoryID
			break
		}
	}
	if txn.CategoryID == nil && category != "" {
		// Local-only category; resolve through the override map.
		s.state.Overrides[txn.ID] = category
		if err := saveSetting(s.db, models.SettingCategoryOverrides, s.state.Overrides); err != nil {
			return nil, nil, err
		}
	}

	s.state.AddTransaction(txn)
	s.state.Recompute()
	alerts := s.evaluateAlertsLocked()

	if err := s.saveTransaction(txn); err != nil {
		return nil, nil, err
	}
	if err := s.saveDerivedSettings(); err != nil {
		return nil, nil, err
	}
	return &txn, alerts, nil
}

// HideTransaction soft-deletes a transaction from every aggregate.
func (s *BudgetService) HideTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.TransactionByID(id); !ok {
		return apperrors.ErrTransactionNotFound
	}
	s.state.HideTransaction(id)
	return s.saveHidden()
}

// OverrideCategory pins a transaction to a category regardless of its ledger
// mapping.
func (s *BudgetService) OverrideCategory(id, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.TransactionByID(id); !ok {
		return apperrors.ErrTransactionNotFound
	}
	s.state.Overrides[id] = category
	// Category resolution feeds paycheck detection.
	s.state.Recompute()

	if err := saveSetting(s.db, models.SettingCategoryOverrides, s.state.Overrides); err != nil {
		return err
	}
	return s.saveDerivedSettings()
}

// RenamePayee renames a transaction's payee. Manual transactions are renamed
// locally; ledger-owned ones are pushed upstream first and only renamed
// locally on success.
func (s *BudgetService) RenamePayee(ctx context.Context, id, newPayee string) error {
	trimmed := strings.TrimSpace(newPayee)
	if trimmed == "" {
		return apperrors.ErrEmptyPayee
	}

	s.mu.Lock()
	existing, ok := s.state.TransactionByID(id)
	s.mu.Unlock()
	if !ok {
		return apperrors.ErrTransactionNotFound
	}
	if existing.Payee == trimmed {
		return nil
	}

	if !existing.IsManual() {
		if err := s.ledger.UpdateTransactionPayee(ctx, id, trimmed); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	updated := existing.WithPayee(trimmed)
	s.state.ReplaceTransaction(updated)
	s.state.PayeeRules[id] = trimmed

	if err := s.saveTransaction(updated); err != nil {
		return err
	}
	return saveSetting(s.db, models.SettingPayeeRules, s.state.PayeeRules)
}

// UpdateBudget sets a category's budget for the period containing date and
// for the global default layer, then re-evaluates alerts.
func (s *BudgetService) UpdateBudget(category string, amount decimal.Decimal, date time.Time) ([]budget.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.state.SetBudget(category, amount, date, now)
	alerts := s.evaluateAlertsLocked()

	periodKey := budget.PeriodKey(s.state.PeriodStart(date, now))
	if err := s.saveBudgetEntry(models.DefaultPeriodKey, category, amount); err != nil {
		return nil, err
	}
	if err := s.saveBudgetEntry(periodKey, category, amount); err != nil {
		return nil, err
	}
	return alerts, nil
}

// AddCategory registers a local-only category with a default budget.
func (s *BudgetService) AddCategory(name string, amount decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Category name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AddCategory(name, amount)
	if err := s.saveBudgetEntry(models.DefaultPeriodKey, name, amount); err != nil {
		return err
	}
	return saveSetting(s.db, models.SettingCategoryOrder, s.state.CategoryOrder)
}

// DeleteCategory removes a category from the order and its budget entries.
func (s *BudgetService) DeleteCategory(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.RemoveCategory(name) {
		return apperrors.ErrCategoryNotFound
	}
	if err := s.deleteBudgetEntries(name); err != nil {
		return err
	}
	return saveSetting(s.db, models.SettingCategoryOrder, s.state.CategoryOrder)
}

// MoveCategory repositions a category within the persisted display order.
func (s *BudgetService) MoveCategory(name string, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.MoveCategory(name, to) {
		return apperrors.ErrCategoryNotFound
	}
	return saveSetting(s.db, models.SettingCategoryOrder, s.state.CategoryOrder)
}

// SetStartingBalance replaces the balance all aggregates build on.
func (s *BudgetService) SetStartingBalance(amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.StartingBalance = amount
	return saveSetting(s.db, models.SettingStartingBalance, amount.String())
}

// Summary computes the full period summary for the period containing date.
func (s *BudgetService) Summary(date time.Time) *PeriodSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	bounds := s.state.PeriodBounds(date, now)

	summary := &PeriodSummary{
		PeriodKey:        bounds.Key(),
		Label:            s.state.PeriodLabel(date, now),
		Relation:         s.state.RelationOf(date, now),
		Start:            bounds.Start,
		Open:             bounds.Open,
		Income:           s.state.Income(date, now),
		Spent:            s.state.Expenses(date, now),
		NetBudget:        s.state.NetBudget(date, now),
		BeginningBalance: s.state.BeginningBalance(date, now),
		EndingBalance:    s.state.EndingBalance(date, now),
		ProjectedEnd:     s.state.ProjectedEnd(date, now),
		LifetimeSavings:  s.state.LifetimeSavings(date, now),
	}
	if !bounds.Open {
		end := bounds.End
		summary.End = &end
	}
	return summary
}

// Transactions lists the period's visible transactions, optionally filtered
// by resolved category, newest first.
func (s *BudgetService) Transactions(date time.Time, category string, page pagination.PageRequest) pagination.PageResponse[TransactionView] {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	bounds := s.state.PeriodBounds(date, now)
	paydays := make(map[string]struct{})
	for _, p := range s.state.PaycheckDates() {
		paydays[budget.PeriodKey(p)] = struct{}{}
	}

	var views []TransactionView
	for _, t := range s.state.Transactions {
		if _, hidden := s.state.Hidden[t.ID]; hidden {
			continue
		}
		if !bounds.Contains(t.Date) {
			continue
		}
		resolved := s.state.CategoryFor(t)
		if category != "" && category != "All" && resolved != category {
			continue
		}
		_, onPayday := paydays[budget.PeriodKey(t.Date)]
		views = append(views, TransactionView{
			ID:           t.ID,
			Date:         t.Date,
			Amount:       t.Amount,
			Payee:        t.Payee,
			DisplayPayee: t.DisplayPayee(),
			Memo:         t.Memo,
			Category:     resolved,
			IsPending:    t.IsPending,
			IsManual:     t.IsManual(),
			OnPayday:     onPayday,
		})
	}
	return pagination.Slice(views, page)
}

// CategorySpending lists every category's spend against budget for the
// period containing date, in the requested sort order.
func (s *BudgetService) CategorySpending(date time.Time, sort budget.SortOption) []CategorySpend {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	names := s.state.SortedCategoryNames(sort, date, now)
	out := make([]CategorySpend, 0, len(names))
	for _, name := range names {
		out = append(out, CategorySpend{
			Category: name,
			Kind:     string(s.state.KindOf(name)),
			Spent:    s.state.Spent(name, date, now),
			Budget:   s.state.BudgetFor(name, date, now),
			Progress: s.state.CategoryProgress(name, date, now),
		})
	}
	return out
}

// Budgets returns the effective budget per category for the period containing
// date.
func (s *BudgetService) Budgets(date time.Time) map[string]decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make(map[string]decimal.Decimal, len(s.state.CategoryOrder))
	for _, name := range s.state.CategoryOrder {
		out[name] = s.state.BudgetFor(name, date, now)
	}
	return out
}

// CategoryOrder returns the persisted display order.
func (s *BudgetService) CategoryOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.state.CategoryOrder...)
}

// StepPeriod returns the reference date for the period step periods away
// from the one containing date.
func (s *BudgetService) StepPeriod(date time.Time, step int) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.StepPeriod(date, step, s.now())
}

// Weekly reports actual totals for the week containing now.
func (s *BudgetService) Weekly() *WeeklyReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, end := budget.WeekInterval(s.now())
	income, expenses := s.state.TotalsIn(start, end)
	return &WeeklyReport{Start: start, End: end, Income: income, Expenses: expenses}
}

// evaluateAlertsLocked runs the alert evaluator and persists any newly fired
// keys. Callers hold the mutex.
func (s *BudgetService) evaluateAlertsLocked() []budget.Alert {
	alerts := s.state.EvaluateAlerts(s.now())
	if len(alerts) == 0 {
		return nil
	}
	for _, alert := range alerts {
		logger.Get().Infow("budget alert",
			"category", alert.Category,
			"period", alert.PeriodKey,
			"spent", alert.Spent.String(),
			"budget", alert.Budget.String(),
		)
	}
	if err := s.saveAlertedKeys(); err != nil {
		logger.Get().Errorw("failed to persist alerted keys", "error", err.Error())
	}
	return alerts
}
