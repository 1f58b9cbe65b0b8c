package testutil_test

import (
	"testing"
	"time"

	"submana/internal/models"
	"submana/internal/testutil"

	"github.com/shopspring/decimal"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "accounts", "categories", "transactions", "budgets", "subscriptions", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have a generated ID")
	}

	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, decimal.NewFromInt(50))
	testutil.AssertDecimalEqual(t, decimal.NewFromInt(50), account.Balance)

	parent := testutil.CreateTestCategory(t, db, user.ID)
	child := testutil.CreateTestSubcategory(t, db, user.ID, &parent.ID)
	if child.ParentID == nil || *child.ParentID != parent.ID {
		t.Error("subcategory should reference its parent")
	}

	system := testutil.CreateTestSystemCategory(t, db, nil)
	if !system.IsSystem() {
		t.Error("system category should have no owner")
	}

	tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID,
		models.TransactionTypeExpense, decimal.NewFromInt(10), time.Now(), &parent.ID, nil)
	if tx.ID == "" {
		t.Fatal("transaction should have a generated ID")
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, decimal.NewFromInt(100), parent)
	if len(budget.Categories) != 1 {
		t.Errorf("expected 1 linked category, got %d", len(budget.Categories))
	}

	sub := testutil.CreateTestSubscription(t, db, user.ID, time.Now().AddDate(0, 0, 7))
	if sub.BillingCycle != models.BillingCycleMonthly {
		t.Errorf("expected monthly billing cycle, got %s", sub.BillingCycle)
	}
}
