package models

import "github.com/shopspring/decimal"

// Budget represents a monthly spending cap over a set of categories.
// An empty category link set makes it a general budget that matches
// every expense transaction regardless of category.
type Budget struct {
	Base
	UserID string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string          `gorm:"not null" json:"name"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Color  *string         `json:"color,omitempty"`

	// Relationships
	Categories []Category `gorm:"many2many:budget_categories" json:"-"`
}
