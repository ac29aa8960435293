package models

// Setting is a persisted key/value pair. Values are JSON-encoded; a value
// that fails to decode falls back to its zero value rather than failing the
// load.
type Setting struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value string `json:"value"`
}

// Setting keys.
const (
	SettingStartingBalance   = "starting_balance"
	SettingBudgetStartDay    = "budget_start_day"
	SettingHistoryStart      = "history_start"
	SettingAnchorPaycheck    = "anchor_paycheck"
	SettingHiddenIDs         = "hidden_ids"
	SettingCategoryOverrides = "category_overrides"
	SettingPayeeRules        = "payee_rules"
	SettingCategoryOrder     = "category_order"
	SettingAlertedKeys       = "alerted_keys"
	SettingLedgerToken       = "ledger_token"
)
