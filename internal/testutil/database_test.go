package testutil

import (
	"testing"

	"github.com/dwojc6/mybudget/internal/models"
)

func TestSetupTestDB(t *testing.T) {
	t.Run("schema is visible on a fresh pool connection", func(t *testing.T) {
		db := SetupTestDB(t)
		t.Cleanup(func() { TeardownTestDB(t, db) })

		seed := models.Setting{Key: models.SettingStartingBalance, Value: `"500"`}
		if err := db.Create(&seed).Error; err != nil {
			t.Fatalf("failed to seed setting: %v", err)
		}

		// Drop the idle connection so the next query opens a new one.
		sqlDB, err := db.DB()
		if err != nil {
			t.Fatalf("failed to get underlying DB: %v", err)
		}
		sqlDB.SetMaxIdleConns(0)

		var got models.Setting
		if err := db.First(&got, "key = ?", models.SettingStartingBalance).Error; err != nil {
			t.Fatalf("query on a second pool connection failed: %v", err)
		}
		if got.Value != `"500"` {
			t.Errorf("expected seeded value, got %q", got.Value)
		}
	})

	t.Run("each setup gets an isolated database", func(t *testing.T) {
		first := SetupTestDB(t)
		t.Cleanup(func() { TeardownTestDB(t, first) })
		second := SetupTestDB(t)
		t.Cleanup(func() { TeardownTestDB(t, second) })

		seed := models.Setting{Key: models.SettingLedgerToken, Value: `"abc"`}
		if err := first.Create(&seed).Error; err != nil {
			t.Fatalf("failed to seed setting: %v", err)
		}

		var count int64
		if err := second.Model(&models.Setting{}).Count(&count).Error; err != nil {
			t.Fatalf("failed to count settings: %v", err)
		}
		if count != 0 {
			t.Errorf("expected empty database, found %d settings", count)
		}
	})
}
