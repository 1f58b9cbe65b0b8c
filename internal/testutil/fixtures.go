package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"submana/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates a cash account with zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, userID, decimal.Zero)
}

// CreateTestAccountWithBalance creates a cash account with the given balance.
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, userID string, balance decimal.Decimal) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Account %d", nextID()),
		Type:     models.AccountTypeCash,
		Balance:  balance,
		Currency: "USD",
		IsActive: true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a root category owned by the given user.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return CreateTestSubcategory(t, db, userID, nil)
}

// CreateTestSubcategory creates a category under the given parent. A nil
// parentID creates a root category.
func CreateTestSubcategory(t *testing.T, db *gorm.DB, userID string, parentID *string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:   &userID,
		Name:     fmt.Sprintf("Test Category %d", nextID()),
		ParentID: parentID,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSystemCategory creates a shared system category (no owner).
func CreateTestSystemCategory(t *testing.T, db *gorm.DB, parentID *string) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:     fmt.Sprintf("System Category %d", nextID()),
		ParentID: parentID,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create system category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction of the given type and amount
// dated at the given time, optionally linked to a category.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, accountID string, txType models.TransactionType, amount decimal.Decimal, date time.Time, categoryID, subcategoryID *string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:        userID,
		AccountID:     accountID,
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		Type:          txType,
		Amount:        amount,
		Date:          date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a budget linked to the given categories. An
// empty list creates a general budget matching all expenses.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, amount decimal.Decimal, categories ...*models.Category) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID: userID,
		Name:   fmt.Sprintf("Test Budget %d", nextID()),
		Amount: amount,
	}
	for _, c := range categories {
		budget.Categories = append(budget.Categories, *c)
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestSubscription creates an active monthly subscription renewing
// at the given date.
func CreateTestSubscription(t *testing.T, db *gorm.DB, userID string, nextPayment time.Time) *models.Subscription {
	t.Helper()

	sub := &models.Subscription{
		UserID:          userID,
		Name:            fmt.Sprintf("Test Subscription %d", nextID()),
		Price:           decimal.NewFromFloat(9.99),
		BillingCycle:    models.BillingCycleMonthly,
		NextPaymentDate: nextPayment,
		IsActive:        true,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create test subscription: %v", err)
	}
	return sub
}
