package services

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dwojc6/mybudget/internal/budget"
	apperrors "github.com/dwojc6/mybudget/internal/errors"
	"github.com/dwojc6/mybudget/internal/logger"
	"github.com/dwojc6/mybudget/internal/models"
)

// loadSetting decodes a JSON setting into out. Missing keys and decode
// failures leave out untouched; persisted-state load problems degrade to
// defaults, never to a failed start.
func loadSetting(db *gorm.DB, key string, out any) bool {
	var setting models.Setting
	if err := db.First(&setting, "key = ?", key).Error; err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(setting.Value), out); err != nil {
		logger.Get().Warnw("discarding undecodable setting", "key", key, "error", err.Error())
		return false
	}
	return true
}

func saveSetting(db *gorm.DB, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	setting := models.Setting{Key: key, Value: string(encoded)}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// loadState rebuilds the engine state from the database. The order matters:
// budgets load before categories so RefreshCategoryList matches existing
// entries instead of zeroing them, and transactions load last so the single
// Recompute sees everything.
func loadState(db *gorm.DB) (*budget.State, string, error) {
	state := budget.NewState()

	var balance string
	if loadSetting(db, models.SettingStartingBalance, &balance) {
		if parsed, err := decimal.NewFromString(balance); err == nil {
			state.StartingBalance = parsed
		}
	}
	var startDay int
	if loadSetting(db, models.SettingBudgetStartDay, &startDay) && startDay > 0 {
		state.BudgetStartDay = startDay
	}
	var historyStart time.Time
	if loadSetting(db, models.SettingHistoryStart, &historyStart) {
		state.HistoryStart = &historyStart
	}
	var anchor time.Time
	if loadSetting(db, models.SettingAnchorPaycheck, &anchor) {
		state.AnchorPaycheck = &anchor
	}
	var hidden []string
	if loadSetting(db, models.SettingHiddenIDs, &hidden) {
		for _, id := range hidden {
			state.Hidden[id] = struct{}{}
		}
	}
	loadSetting(db, models.SettingCategoryOverrides, &state.Overrides)
	loadSetting(db, models.SettingPayeeRules, &state.PayeeRules)
	loadSetting(db, models.SettingCategoryOrder, &state.CategoryOrder)
	var alerted []string
	if loadSetting(db, models.SettingAlertedKeys, &alerted) {
		for _, key := range alerted {
			state.AlertedKeys[key] = struct{}{}
		}
	}
	var token string
	loadSetting(db, models.SettingLedgerToken, &token)

	// Budgets before categories (see above).
	var entries []models.BudgetEntry
	if err := db.Find(&entries).Error; err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, entry := range entries {
		if entry.PeriodKey == models.DefaultPeriodKey {
			state.DefaultBudgets[entry.Category] = entry.Amount
			continue
		}
		if state.PeriodBudgets[entry.PeriodKey] == nil {
			state.PeriodBudgets[entry.PeriodKey] = make(map[string]decimal.Decimal)
		}
		state.PeriodBudgets[entry.PeriodKey][entry.Category] = entry.Amount
	}

	var categories []models.Category
	if err := db.Find(&categories).Error; err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, cat := range categories {
		state.Categories[cat.ID] = cat
	}
	state.RefreshCategoryList()

	var transactions []models.Transaction
	if err := db.Find(&transactions).Error; err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	state.Transactions = transactions
	state.Recompute()

	return state, token, nil
}

func (s *BudgetService) saveHidden() error {
	hidden := make([]string, 0, len(s.state.Hidden))
	for id := range s.state.Hidden {
		hidden = append(hidden, id)
	}
	return saveSetting(s.db, models.SettingHiddenIDs, hidden)
}

func (s *BudgetService) saveAlertedKeys() error {
	keys := make([]string, 0, len(s.state.AlertedKeys))
	for key := range s.state.AlertedKeys {
		keys = append(keys, key)
	}
	return saveSetting(s.db, models.SettingAlertedKeys, keys)
}

func (s *BudgetService) saveDerivedSettings() error {
	if err := saveSetting(s.db, models.SettingBudgetStartDay, s.state.BudgetStartDay); err != nil {
		return err
	}
	if s.state.AnchorPaycheck != nil {
		if err := saveSetting(s.db, models.SettingAnchorPaycheck, *s.state.AnchorPaycheck); err != nil {
			return err
		}
	}
	return nil
}

// replaceTransactions swaps the persisted transaction set: removed rows are
// deleted and the merged set upserted in one database transaction.
func (s *BudgetService) replaceTransactions(removedIDs []string, merged []models.Transaction) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if len(removedIDs) > 0 {
			if err := tx.Delete(&models.Transaction{}, "id IN ?", removedIDs).Error; err != nil {
				return err
			}
		}
		if len(merged) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(merged, 200).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *BudgetService) saveTransaction(txn models.Transaction) error {
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&txn).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// replaceCategories rewrites the category cache to mirror the ledger.
func (s *BudgetService) replaceCategories(categories []models.Category) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Category{}).Error; err != nil {
			return err
		}
		if len(categories) == 0 {
			return nil
		}
		return tx.Create(&categories).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *BudgetService) saveBudgetEntry(periodKey, category string, amount decimal.Decimal) error {
	entry := models.BudgetEntry{PeriodKey: periodKey, Category: category, Amount: amount}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "period_key"}, {Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}).Create(&entry).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *BudgetService) deleteBudgetEntries(category string) error {
	if err := s.db.Delete(&models.BudgetEntry{}, "category = ?", category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// saveDefaultBudgets upserts the whole default layer; used after a category
// refresh introduces zero entries or a budget summary import overwrites them.
func (s *BudgetService) saveDefaultBudgets() error {
	for category, amount := range s.state.DefaultBudgets {
		if err := s.saveBudgetEntry(models.DefaultPeriodKey, category, amount); err != nil {
			return err
		}
	}
	return saveSetting(s.db, models.SettingCategoryOrder, s.state.CategoryOrder)
}
