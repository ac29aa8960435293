package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dwojc6/mybudget/internal/budget"
	apperrors "github.com/dwojc6/mybudget/internal/errors"
	"github.com/dwojc6/mybudget/internal/logger"
	"github.com/dwojc6/mybudget/internal/models"
)

// Sync runs one full reconciliation cycle against the remote ledger. Only one
// cycle runs at a time; a second caller gets ErrSyncInFlight instead of
// queueing. Remote fetches happen outside the state mutex, and nothing is
// applied to the store until every fetch has succeeded, so a failed cycle
// leaves the local state exactly as it was.
func (s *BudgetService) Sync(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	s.mu.Lock()
	if s.syncing {
		s.mu.Unlock()
		return nil, apperrors.ErrSyncInFlight
	}
	s.syncing = true
	now := s.now()
	summaryStart, summaryEnd := s.summaryWindowLocked(opts, now)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
	}()

	var (
		categories []models.Category
		aligned    bool
		budgeted   map[int]decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := s.ledger.FetchCategories(gctx)
		if err != nil {
			return err
		}
		categories = fetched
		return nil
	})
	g.Go(func() error {
		ok, amounts, err := s.ledger.FetchBudgetSummary(gctx, summaryStart, summaryEnd)
		if err != nil {
			return err
		}
		aligned, budgeted = ok, amounts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Ask the ledger to pull fresh bank data before fetching transactions.
	// Failure here only means the fetch sees slightly staler rows.
	if err := s.ledger.TriggerAccountSync(ctx); err != nil {
		logger.Get().Warnw("account refresh trigger failed", "error", err.Error())
	} else if s.settleDelay > 0 {
		select {
		case <-time.After(s.settleDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	since := now.AddDate(0, 0, -s.lookbackDays)
	if opts.Since != nil {
		since = *opts.Since
	}
	incoming, apiErrors, err := s.ledger.FetchTransactions(ctx, since, now)
	if err != nil {
		return nil, err
	}
	if len(apiErrors) > 0 {
		logger.Get().Errorw("ledger reported per-item errors, discarding batch",
			"errors", apiErrors,
		)
		return nil, apperrors.WithMessage(apperrors.ErrLedgerPartialFailure,
			fmt.Sprintf("The remote ledger reported %d error(s); no changes were applied", len(apiErrors)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &SyncResult{Aligned: aligned}

	if err := s.applyCategoriesLocked(categories); err != nil {
		return nil, err
	}
	if aligned {
		if err := s.applyBudgetSummaryLocked(budgeted); err != nil {
			return nil, err
		}
	} else {
		logger.Get().Infow("budget summary window not aligned, skipping budget import",
			"start", budget.PeriodKey(summaryStart),
			"end", budget.PeriodKey(summaryEnd),
		)
	}

	// Imported counts rows the store had never seen; a routine sync re-fetches
	// the whole look-back window, so most of the batch is usually known.
	existing := make(map[string]struct{}, len(s.state.Transactions))
	for _, txn := range s.state.Transactions {
		existing[txn.ID] = struct{}{}
	}
	for _, txn := range incoming {
		if _, ok := existing[txn.ID]; !ok {
			result.Imported++
		}
	}

	merge := budget.Reconcile(s.state.Transactions, incoming)
	s.state.Transactions = merge.Transactions
	for _, id := range merge.RemovedManualIDs {
		delete(s.state.Hidden, id)
	}
	// Re-imported rows come back with their upstream payee; reapply renames.
	for i, txn := range s.state.Transactions {
		if payee, ok := s.state.PayeeRules[txn.ID]; ok {
			s.state.Transactions[i].Payee = payee
		}
	}
	s.state.Recompute()
	result.Alerts = s.evaluateAlertsLocked()

	removed := append(merge.RemovedManualIDs, merge.RemovedPendingIDs...)
	if err := s.replaceTransactions(removed, merge.Transactions); err != nil {
		return nil, err
	}
	if len(merge.RemovedManualIDs) > 0 {
		if err := s.saveHidden(); err != nil {
			return nil, err
		}
	}
	if err := s.saveDerivedSettings(); err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("Imported %d transaction(s)", result.Imported)
	logger.Get().Infow("sync complete",
		"imported", result.Imported,
		"removed_manual", len(merge.RemovedManualIDs),
		"removed_pending", len(merge.RemovedPendingIDs),
		"aligned", aligned,
	)
	return result, nil
}

// Setup runs the first-connect flow: validate the chosen budgeting window
// against the ledger, persist the credential and the user's starting point,
// then run the initial import. The window must line up with a ledger period;
// importing misaligned budgets would silently skew every future summary.
func (s *BudgetService) Setup(ctx context.Context, params SetupParams) (*SyncResult, error) {
	s.ledger.SetToken(params.Token)

	aligned, _, err := s.ledger.FetchBudgetSummary(ctx, params.PeriodStart, params.PeriodEnd)
	if err != nil {
		return nil, err
	}
	if !aligned {
		return nil, apperrors.ErrPeriodMisaligned
	}

	s.mu.Lock()
	s.state.StartingBalance = params.StartingBalance
	s.state.BudgetStartDay = params.PeriodStart.Day()
	importStart := budget.StartOfDay(params.ImportStart)
	s.state.HistoryStart = &importStart

	if err := saveSetting(s.db, models.SettingLedgerToken, params.Token); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := saveSetting(s.db, models.SettingStartingBalance, params.StartingBalance.String()); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := saveSetting(s.db, models.SettingBudgetStartDay, s.state.BudgetStartDay); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := saveSetting(s.db, models.SettingHistoryStart, importStart); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	return s.Sync(ctx, SyncOptions{
		Since:       &importStart,
		PeriodStart: &params.PeriodStart,
		PeriodEnd:   &params.PeriodEnd,
	})
}

// summaryWindowLocked picks the budget-summary request window: the explicit
// one when given, otherwise the calendar month of the current period start.
// The ledger budgets in whole months even when local periods float with
// paychecks.
func (s *BudgetService) summaryWindowLocked(opts SyncOptions, now time.Time) (time.Time, time.Time) {
	if opts.PeriodStart != nil && opts.PeriodEnd != nil {
		return budget.StartOfDay(*opts.PeriodStart), budget.StartOfDay(*opts.PeriodEnd)
	}
	d := budget.StartOfDay(now)
	start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// applyCategoriesLocked mirrors the fetched category list into the cache and
// rebuilds the budget scaffolding for any new names.
func (s *BudgetService) applyCategoriesLocked(categories []models.Category) error {
	s.state.Categories = make(map[int]models.Category, len(categories))
	for _, cat := range categories {
		s.state.Categories[cat.ID] = cat
	}
	if err := s.replaceCategories(categories); err != nil {
		return err
	}
	if s.state.RefreshCategoryList() {
		return s.saveDefaultBudgets()
	}
	return nil
}

// applyBudgetSummaryLocked imports the ledger's budgeted amounts into the
// default layer, keyed by category name.
func (s *BudgetService) applyBudgetSummaryLocked(budgeted map[int]decimal.Decimal) error {
	changed := false
	for id, amount := range budgeted {
		cat, ok := s.state.Categories[id]
		if !ok {
			continue
		}
		if existing, ok := s.state.DefaultBudgets[cat.Name]; ok && existing.Equal(amount) {
			continue
		}
		s.state.DefaultBudgets[cat.Name] = amount
		changed = true
	}
	if changed {
		return s.saveDefaultBudgets()
	}
	return nil
}
