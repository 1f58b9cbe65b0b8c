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

// subscriptionService handles recurring subscription tracking.
type subscriptionService struct {
	db              *gorm.DB
	categoryService CategoryServicer
}

// NewSubscriptionService creates a new SubscriptionServicer.
func NewSubscriptionService(db *gorm.DB, categoryService CategoryServicer) SubscriptionServicer {
	return &subscriptionService{db: db, categoryService: categoryService}
}

// CreateSubscription creates a new subscription for the user.
func (s *subscriptionService) CreateSubscription(userID, name string, price decimal.Decimal, cycle models.BillingCycle, nextPaymentDate time.Time, categoryID *string, notes string) (*models.Subscription, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "subscription name is required")
	}
	if price.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "subscription price cannot be negative")
	}
	if nextPaymentDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "next payment date is required")
	}

	if categoryID != nil {
		if _, err := s.categoryService.GetCategoryByID(userID, *categoryID); err != nil {
			return nil, err
		}
	}

	subscription := &models.Subscription{
		UserID:          userID,
		Name:            name,
		Price:           price,
		BillingCycle:    cycle,
		NextPaymentDate: nextPaymentDate,
		CategoryID:      categoryID,
		Notes:           notes,
		IsActive:        true,
	}

	if err := s.db.Create(subscription).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return subscription, nil
}

// GetUserSubscriptions retrieves a paginated list of the user's
// subscriptions, soonest renewal first. Renewal dates that have passed are
// rolled forward before the page is returned.
func (s *subscriptionService) GetUserSubscriptions(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Subscription], error) {
	page.Defaults()

	base := s.db.Model(&models.Subscription{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var subscriptions []models.Subscription
	if err := base.Scopes(pagination.Paginate(page)).
		Order("next_payment_date ASC").
		Find(&subscriptions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	for i := range subscriptions {
		if err := s.rollForward(&subscriptions[i], now); err != nil {
			return nil, err
		}
	}

	result := pagination.NewPageResponse(subscriptions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetSubscriptionByID returns a subscription by ID if it belongs to the user.
func (s *subscriptionService) GetSubscriptionByID(userID, subscriptionID string) (*models.Subscription, error) {
	var subscription models.Subscription
	if err := s.db.Where("id = ? AND user_id = ?", subscriptionID, userID).First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubscriptionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.rollForward(&subscription, time.Now()); err != nil {
		return nil, err
	}
	return &subscription, nil
}

// UpdateSubscription updates an existing subscription's fields.
func (s *subscriptionService) UpdateSubscription(userID, subscriptionID, name string, price *decimal.Decimal, cycle *models.BillingCycle, nextPaymentDate *time.Time, categoryID *string, notes *string, isActive *bool) (*models.Subscription, error) {
	subscription, err := s.GetSubscriptionByID(userID, subscriptionID)
	if err != nil {
		return nil, err
	}

	if price != nil && price.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "subscription price cannot be negative")
	}
	if categoryID != nil && *categoryID != "" {
		if _, err := s.categoryService.GetCategoryByID(userID, *categoryID); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if price != nil {
		updates["price"] = *price
	}
	if cycle != nil {
		updates["billing_cycle"] = *cycle
	}
	if nextPaymentDate != nil {
		updates["next_payment_date"] = *nextPaymentDate
	}
	if categoryID != nil {
		updates["category_id"] = categoryID
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(subscription).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return subscription, nil
}

// DeleteSubscription soft-deletes a subscription.
func (s *subscriptionService) DeleteSubscription(userID, subscriptionID string) error {
	subscription, err := s.GetSubscriptionByID(userID, subscriptionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(subscription).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetUpcomingSubscriptions returns the user's active subscriptions renewing
// within the given window, soonest first.
func (s *subscriptionService) GetUpcomingSubscriptions(userID string, within time.Duration) ([]models.Subscription, error) {
	var subscriptions []models.Subscription
	if err := s.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("next_payment_date ASC").
		Find(&subscriptions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := time.Now()
	cutoff := now.Add(within)
	upcoming := make([]models.Subscription, 0, len(subscriptions))
	for i := range subscriptions {
		if err := s.rollForward(&subscriptions[i], now); err != nil {
			return nil, err
		}
		if !subscriptions[i].NextPaymentDate.After(cutoff) {
			upcoming = append(upcoming, subscriptions[i])
		}
	}
	return upcoming, nil
}

// rollForward persists any overdue renewal date advancement.
func (s *subscriptionService) rollForward(subscription *models.Subscription, now time.Time) error {
	if !subscription.Advance(now) {
		return nil
	}
	if err := s.db.Model(subscription).
		Update("next_payment_date", subscription.NextPaymentDate).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
