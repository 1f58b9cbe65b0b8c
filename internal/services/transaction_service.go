package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "submana/internal/errors"
	"submana/internal/models"
	"submana/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db              *gorm.DB
	accountService  AccountServicer
	categoryService CategoryServicer
	loc             *time.Location
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer, categoryService CategoryServicer, loc *time.Location) TransactionServicer {
	if loc == nil {
		loc = time.Local
	}
	return &transactionService{
		db:              db,
		accountService:  accountService,
		categoryService: categoryService,
		loc:             loc,
	}
}

// CreateTransaction records a transaction against one of the user's
// accounts and adjusts the account balance in the same DB transaction.
func (s *transactionService) CreateTransaction(
	userID, accountID string,
	categoryID, subcategoryID *string,
	transactionType models.TransactionType,
	amount decimal.Decimal,
	description string,
	date time.Time,
) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if accountID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}
	if transactionType != models.TransactionTypeIncome && transactionType != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}

	// Default date to now if not provided
	if date.IsZero() {
		date = time.Now()
	}

	if err := s.checkCategorySelection(userID, categoryID, subcategoryID); err != nil {
		return nil, err
	}

	account, err := s.accountService.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:        userID,
		AccountID:     account.ID,
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		Type:          transactionType,
		Amount:        amount,
		Description:   description,
		Date:          date,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.accountService.ApplyTransaction(tx, account, transactionType, amount)
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// GetMonthTransactions returns all of the user's transactions in a
// calendar month, newest first.
func (s *transactionService) GetMonthTransactions(userID string, year, month int) ([]models.Transaction, error) {
	start, end := MonthRange(year, month, s.loc)

	var transactions []models.Transaction
	if err := s.db.
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// GetAccountTransactions retrieves a paginated, filtered list of transactions for a specific account.
func (s *transactionService) GetAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	// First verify the account belongs to the user
	if _, err := s.accountService.GetAccountByID(userID, accountID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ? AND account_id = ?", userID, accountID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ? OR subcategory_id = ?", *f.CategoryID, *f.CategoryID)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// DeleteTransaction removes a transaction and reverts its effect on the
// account balance.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	account, err := s.accountService.GetAccountByID(userID, transaction.AccountID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.accountService.RevertTransaction(tx, account, transaction.Type, transaction.Amount)
	})
}

// checkCategorySelection validates the category/subcategory pair against
// the categories visible to the user. A lone subcategory is allowed; when
// both are set the subcategory must be a child of the category.
func (s *transactionService) checkCategorySelection(userID string, categoryID, subcategoryID *string) error {
	if categoryID == nil && subcategoryID == nil {
		return nil
	}

	if categoryID != nil {
		if _, err := s.categoryService.GetCategoryByID(userID, *categoryID); err != nil {
			return err
		}
	}
	if subcategoryID != nil {
		sub, err := s.categoryService.GetCategoryByID(userID, *subcategoryID)
		if err != nil {
			return err
		}
		if categoryID != nil && (sub.ParentID == nil || *sub.ParentID != *categoryID) {
			return apperrors.ErrSubcategoryMismatch
		}
	}
	return nil
}
