package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"submana/internal/models"
	"submana/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID, name string, accountType models.AccountType, description, currency string, initialBalance decimal.Decimal) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID, name, description string) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
	ApplyTransaction(tx *gorm.DB, account *models.Account, transactionType models.TransactionType, amount decimal.Decimal) error
	RevertTransaction(tx *gorm.DB, account *models.Account, transactionType models.TransactionType, amount decimal.Decimal) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name, icon, color string, parentID *string) (*models.Category, error)
	GetVisibleCategories(userID string) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, icon, color string, parentID *string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionFilter holds optional filters for transaction listings.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, accountID string, categoryID, subcategoryID *string, transactionType models.TransactionType, amount decimal.Decimal, description string, date time.Time) (*models.Transaction, error)
	GetMonthTransactions(userID string, year, month int) ([]models.Transaction, error)
	GetAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// BudgetView is a budget enriched with its linked category ids and the
// freshly computed spend for the requested month.
type BudgetView struct {
	models.Budget
	CategoryIDs []string        `json:"category_ids"`
	Spent       decimal.Decimal `json:"spent"`
}

// MonthSummary aggregates a user's activity for one calendar month.
type MonthSummary struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Budgets  []BudgetView    `json:"budgets"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, name string, amount decimal.Decimal, color *string, categoryIDs []string, year, month int) (*BudgetView, error)
	GetUserBudgets(userID string, year, month int) ([]BudgetView, error)
	GetBudgetByID(userID, budgetID string, year, month int) (*BudgetView, error)
	UpdateBudget(userID, budgetID, name string, amount *decimal.Decimal, color *string, categoryIDs *[]string, year, month int) (*BudgetView, error)
	DeleteBudget(userID, budgetID string) error
	ComputeBudgetSpent(userID string, categoryIDs []string, allCategories []models.Category, year, month int) (decimal.Decimal, error)
	GetMonthSummary(userID string, year, month int) (*MonthSummary, error)
}

// SubscriptionServicer defines the contract for subscription-related business logic.
type SubscriptionServicer interface {
	CreateSubscription(userID, name string, price decimal.Decimal, cycle models.BillingCycle, nextPaymentDate time.Time, categoryID *string, notes string) (*models.Subscription, error)
	GetUserSubscriptions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Subscription], error)
	GetSubscriptionByID(userID, subscriptionID string) (*models.Subscription, error)
	UpdateSubscription(userID, subscriptionID, name string, price *decimal.Decimal, cycle *models.BillingCycle, nextPaymentDate *time.Time, categoryID *string, notes *string, isActive *bool) (*models.Subscription, error)
	DeleteSubscription(userID, subscriptionID string) error
	GetUpcomingSubscriptions(userID string, within time.Duration) ([]models.Subscription, error)
}

// AuditServicer defines the contract for audit log recording.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
