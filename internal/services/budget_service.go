package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "submana/internal/errors"
	"submana/internal/models"
)

// budgetService handles budget-related business logic, including the
// per-month spend aggregation that backs every budget response.
type budgetService struct {
	db              *gorm.DB
	categoryService CategoryServicer
	loc             *time.Location
}

// NewBudgetService creates a new BudgetServicer. Month boundaries are
// computed in loc; pass nil to use the server's local time.
func NewBudgetService(db *gorm.DB, categoryService CategoryServicer, loc *time.Location) BudgetServicer {
	if loc == nil {
		loc = time.Local
	}
	return &budgetService{db: db, categoryService: categoryService, loc: loc}
}

// EffectiveCategoryIDs expands a budget's linked category ids into the full
// effective set: each linked id plus its direct subcategories. Categories
// are at most two levels deep, so only one level of children is added;
// expanding an already-expanded set yields the same set. Ids not present in
// allCategories pass through verbatim. The result is deduplicated.
func EffectiveCategoryIDs(linked []string, allCategories []models.Category) []string {
	children := make(map[string][]string, len(allCategories))
	for _, c := range allCategories {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	seen := make(map[string]struct{}, len(linked))
	effective := make([]string, 0, len(linked))
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			effective = append(effective, id)
		}
	}

	for _, id := range linked {
		add(id)
		for _, child := range children[id] {
			add(child)
		}
	}
	return effective
}

// MonthRange returns the inclusive bounds of a calendar month in loc:
// midnight on day 1 through the last nanosecond of the last day. The last
// day is found by normalizing day zero of the following month. Out-of-range
// months normalize the same way (month 13 rolls into January of year+1);
// callers validate 1-12 where strictness is wanted.
func MonthRange(year, month int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := time.Date(year, time.Month(month)+1, 0, 23, 59, 59, 999999999, loc)
	return start, end
}

// ComputeBudgetSpent sums the user's expense transactions for the month
// against the given category selection. An empty selection means a general
// budget: every expense counts. A non-empty selection is expanded via
// EffectiveCategoryIDs and a transaction matches when either its category
// or its subcategory falls in the effective set.
//
// Amounts are summed with decimal arithmetic on the fetched rows rather
// than in SQL so the result is cent-exact on every driver.
func (s *budgetService) ComputeBudgetSpent(userID string, categoryIDs []string, allCategories []models.Category, year, month int) (decimal.Decimal, error) {
	start, end := MonthRange(year, month, s.loc)

	q := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND date BETWEEN ? AND ?",
			userID, models.TransactionTypeExpense, start, end)

	if len(categoryIDs) > 0 {
		effective := EffectiveCategoryIDs(categoryIDs, allCategories)
		if len(effective) == 0 {
			return decimal.Zero, nil
		}
		q = q.Where("category_id IN ? OR subcategory_id IN ?", effective, effective)
	}

	var amounts []decimal.Decimal
	if err := q.Pluck("amount", &amounts).Error; err != nil {
		// Fetch failures must surface; zero is reserved for "no rows".
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent := decimal.Zero
	for _, a := range amounts {
		spent = spent.Add(a)
	}
	return spent, nil
}

// CreateBudget creates a new budget with optional category links and
// returns it with the spend for the given month already computed.
func (s *budgetService) CreateBudget(userID, name string, amount decimal.Decimal, color *string, categoryIDs []string, year, month int) (*BudgetView, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount cannot be negative")
	}

	categories, err := s.resolveLinkedCategories(userID, categoryIDs)
	if err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID: userID,
		Name:   name,
		Amount: amount,
		Color:  color,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(categories) > 0 {
			if err := tx.Model(budget).Association("Categories").Replace(categories); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	budget.Categories = categories
	return s.assembleView(userID, budget, nil, year, month)
}

// GetUserBudgets returns all of the user's budgets for the month, ordered
// by creation time, each with fresh spend. Category links are loaded in one
// batched query; per-budget aggregation runs concurrently since the
// computations are independent.
func (s *budgetService) GetUserBudgets(userID string, year, month int) ([]BudgetView, error) {
	var budgets []models.Budget
	if err := s.db.Preload("Categories").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	allCategories, err := s.categoryService.GetVisibleCategories(userID)
	if err != nil {
		return nil, err
	}

	views := make([]BudgetView, len(budgets))
	var g errgroup.Group
	for i := range budgets {
		g.Go(func() error {
			view, err := s.assembleView(userID, &budgets[i], allCategories, year, month)
			if err != nil {
				return err
			}
			views[i] = *view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// GetBudgetByID returns one budget with fresh spend for the month.
func (s *budgetService) GetBudgetByID(userID, budgetID string, year, month int) (*BudgetView, error) {
	budget, err := s.findBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}
	return s.assembleView(userID, budget, nil, year, month)
}

// UpdateBudget updates a budget's fields and, when categoryIDs is non-nil,
// replaces its category links wholesale (an empty slice clears them, turning
// it into a general budget). The response carries recomputed spend.
func (s *budgetService) UpdateBudget(userID, budgetID, name string, amount *decimal.Decimal, color *string, categoryIDs *[]string, year, month int) (*BudgetView, error) {
	budget, err := s.findBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	if amount != nil && amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount cannot be negative")
	}

	var categories []models.Category
	if categoryIDs != nil {
		categories, err = s.resolveLinkedCategories(userID, *categoryIDs)
		if err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if amount != nil {
		updates["amount"] = *amount
	}
	if color != nil {
		updates["color"] = *color
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(budget).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if categoryIDs != nil {
			if err := tx.Model(budget).Association("Categories").Replace(categories); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			budget.Categories = categories
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.assembleView(userID, budget, nil, year, month)
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.findBudget(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetMonthSummary returns the user's income and expense totals for a month
// together with all budget views.
func (s *budgetService) GetMonthSummary(userID string, year, month int) (*MonthSummary, error) {
	start, end := MonthRange(year, month, s.loc)

	income, err := s.sumByType(userID, models.TransactionTypeIncome, start, end)
	if err != nil {
		return nil, err
	}
	expenses, err := s.sumByType(userID, models.TransactionTypeExpense, start, end)
	if err != nil {
		return nil, err
	}

	budgets, err := s.GetUserBudgets(userID, year, month)
	if err != nil {
		return nil, err
	}

	return &MonthSummary{
		Year:     year,
		Month:    month,
		Income:   income,
		Expenses: expenses,
		Budgets:  budgets,
	}, nil
}

func (s *budgetService) sumByType(userID string, transactionType models.TransactionType, start, end time.Time) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND date BETWEEN ? AND ?", userID, transactionType, start, end).
		Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total, nil
}

// findBudget loads a budget with its category links if it belongs to the user.
func (s *budgetService) findBudget(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Categories").
		Where("id = ? AND user_id = ?", budgetID, userID).
		First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// resolveLinkedCategories maps the requested link ids to category rows
// visible to the user, rejecting ids that are not.
func (s *budgetService) resolveLinkedCategories(userID string, categoryIDs []string) ([]models.Category, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	visible, err := s.categoryService.GetVisibleCategories(userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Category, len(visible))
	for _, c := range visible {
		byID[c.ID] = c
	}

	seen := make(map[string]struct{}, len(categoryIDs))
	categories := make([]models.Category, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		c, ok := byID[id]
		if !ok {
			return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "category "+id+" not found")
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// assembleView attaches category ids and fresh spend to a budget. The
// category list is fetched when the caller does not already hold it.
func (s *budgetService) assembleView(userID string, budget *models.Budget, allCategories []models.Category, year, month int) (*BudgetView, error) {
	if allCategories == nil {
		var err error
		allCategories, err = s.categoryService.GetVisibleCategories(userID)
		if err != nil {
			return nil, err
		}
	}

	ids := make([]string, len(budget.Categories))
	for i, c := range budget.Categories {
		ids[i] = c.ID
	}

	spent, err := s.ComputeBudgetSpent(userID, ids, allCategories, year, month)
	if err != nil {
		return nil, err
	}

	return &BudgetView{Budget: *budget, CategoryIDs: ids, Spent: spent}, nil
}
