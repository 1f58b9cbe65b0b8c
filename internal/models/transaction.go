package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction represents a financial transaction in the system.
// CategoryID refers to a root category, SubcategoryID to one of its
// children; either or both may be NULL for uncategorized rows.
type Transaction struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID     string          `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID    *string         `gorm:"type:uuid;index" json:"category_id,omitempty"`
	SubcategoryID *string         `gorm:"type:uuid;index" json:"subcategory_id,omitempty"`
	Type          TransactionType `gorm:"not null" json:"type"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description   string          `json:"description"`
	Date          time.Time       `gorm:"not null;index" json:"date"`

	// Relationships
	Account     Account   `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Subcategory *Category `gorm:"foreignKey:SubcategoryID" json:"subcategory,omitempty"`
}
