package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingCycle represents how often a subscription renews
type BillingCycle string

const (
	BillingCycleWeekly  BillingCycle = "weekly"
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// Subscription represents a recurring payment the user wants to track
type Subscription struct {
	Base
	UserID          string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name            string          `gorm:"not null" json:"name"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	BillingCycle    BillingCycle    `gorm:"not null" json:"billing_cycle"`
	NextPaymentDate time.Time       `gorm:"not null;index" json:"next_payment_date"`
	CategoryID      *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Notes           string          `json:"notes"`
	IsActive        bool            `gorm:"default:true" json:"is_active"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// Advance moves NextPaymentDate forward by whole billing cycles until it
// lies after the given instant. Returns true if the date changed.
func (s *Subscription) Advance(now time.Time) bool {
	advanced := false
	for !s.NextPaymentDate.After(now) {
		switch s.BillingCycle {
		case BillingCycleWeekly:
			s.NextPaymentDate = s.NextPaymentDate.AddDate(0, 0, 7)
		case BillingCycleMonthly:
			s.NextPaymentDate = s.NextPaymentDate.AddDate(0, 1, 0)
		case BillingCycleYearly:
			s.NextPaymentDate = s.NextPaymentDate.AddDate(1, 0, 0)
		default:
			return advanced
		}
		advanced = true
	}
	return advanced
}
