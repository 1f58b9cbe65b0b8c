package models

import (
	"testing"
	"time"
)

func TestSubscriptionAdvance(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("future date is untouched", func(t *testing.T) {
		s := &Subscription{
			BillingCycle:    BillingCycleMonthly,
			NextPaymentDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		}
		if s.Advance(now) {
			t.Error("expected no advance for a future date")
		}
	})

	t.Run("monthly rolls past overdue periods", func(t *testing.T) {
		s := &Subscription{
			BillingCycle:    BillingCycleMonthly,
			NextPaymentDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		}
		if !s.Advance(now) {
			t.Fatal("expected advance")
		}
		want := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
		if !s.NextPaymentDate.Equal(want) {
			t.Errorf("NextPaymentDate = %v, want %v", s.NextPaymentDate, want)
		}
	})

	t.Run("weekly rolls by whole weeks", func(t *testing.T) {
		s := &Subscription{
			BillingCycle:    BillingCycleWeekly,
			NextPaymentDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		}
		if !s.Advance(now) {
			t.Fatal("expected advance")
		}
		want := time.Date(2025, 3, 22, 0, 0, 0, 0, time.UTC)
		if !s.NextPaymentDate.Equal(want) {
			t.Errorf("NextPaymentDate = %v, want %v", s.NextPaymentDate, want)
		}
	})

	t.Run("yearly rolls by one year", func(t *testing.T) {
		s := &Subscription{
			BillingCycle:    BillingCycleYearly,
			NextPaymentDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		}
		if !s.Advance(now) {
			t.Fatal("expected advance")
		}
		want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		if !s.NextPaymentDate.Equal(want) {
			t.Errorf("NextPaymentDate = %v, want %v", s.NextPaymentDate, want)
		}
	})

	t.Run("unknown cycle does not loop forever", func(t *testing.T) {
		s := &Subscription{
			BillingCycle:    BillingCycle("daily"),
			NextPaymentDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		if s.Advance(now) {
			t.Error("expected no advance for an unknown cycle")
		}
	})
}
