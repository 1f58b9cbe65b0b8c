package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "submana/internal/errors"
	"submana/internal/models"
	"submana/internal/services"
)

// --- mock budget service ---

type mockBudgetService struct {
	createBudgetFn       func(userID, name string, amount decimal.Decimal, color *string, categoryIDs []string, year, month int) (*services.BudgetView, error)
	getUserBudgetsFn     func(userID string, year, month int) ([]services.BudgetView, error)
	getBudgetByIDFn      func(userID, budgetID string, year, month int) (*services.BudgetView, error)
	updateBudgetFn       func(userID, budgetID, name string, amount *decimal.Decimal, color *string, categoryIDs *[]string, year, month int) (*services.BudgetView, error)
	deleteBudgetFn       func(userID, budgetID string) error
	computeBudgetSpentFn func(userID string, categoryIDs []string, allCategories []models.Category, year, month int) (decimal.Decimal, error)
	getMonthSummaryFn    func(userID string, year, month int) (*services.MonthSummary, error)
}

func (m *mockBudgetService) CreateBudget(userID, name string, amount decimal.Decimal, color *string, categoryIDs []string, year, month int) (*services.BudgetView, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, name, amount, color, categoryIDs, year, month)
	}
	return &services.BudgetView{}, nil
}

func (m *mockBudgetService) GetUserBudgets(userID string, year, month int) ([]services.BudgetView, error) {
	if m.getUserBudgetsFn != nil {
		return m.getUserBudgetsFn(userID, year, month)
	}
	return []services.BudgetView{}, nil
}

func (m *mockBudgetService) GetBudgetByID(userID, budgetID string, year, month int) (*services.BudgetView, error) {
	if m.getBudgetByIDFn != nil {
		return m.getBudgetByIDFn(userID, budgetID, year, month)
	}
	return &services.BudgetView{}, nil
}

func (m *mockBudgetService) UpdateBudget(userID, budgetID, name string, amount *decimal.Decimal, color *string, categoryIDs *[]string, year, month int) (*services.BudgetView, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(userID, budgetID, name, amount, color, categoryIDs, year, month)
	}
	return &services.BudgetView{}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

func (m *mockBudgetService) ComputeBudgetSpent(userID string, categoryIDs []string, allCategories []models.Category, year, month int) (decimal.Decimal, error) {
	if m.computeBudgetSpentFn != nil {
		return m.computeBudgetSpentFn(userID, categoryIDs, allCategories, year, month)
	}
	return decimal.Zero, nil
}

func (m *mockBudgetService) GetMonthSummary(userID string, year, month int) (*services.MonthSummary, error) {
	if m.getMonthSummaryFn != nil {
		return m.getMonthSummaryFn(userID, year, month)
	}
	return &services.MonthSummary{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

const testBudgetID = "018f3c2a-0000-7000-8000-00000000000b"

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/budgets", handler.CreateBudget)
	auth.GET("/budgets", handler.GetBudgets)
	auth.GET("/budgets/:id", handler.GetBudget)
	auth.PUT("/budgets/:id", handler.UpdateBudget)
	auth.DELETE("/budgets/:id", handler.DeleteBudget)
	auth.GET("/summary", handler.GetMonthSummary)
	return r
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockBudgetService{
			createBudgetFn: func(userID, name string, amount decimal.Decimal, _ *string, categoryIDs []string, _, _ int) (*services.BudgetView, error) {
				return &services.BudgetView{
					Budget: models.Budget{
						Base:   models.Base{ID: testBudgetID},
						UserID: userID,
						Name:   name,
						Amount: amount,
					},
					CategoryIDs: categoryIDs,
					Spent:       decimal.Zero,
				}, nil
			},
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets",
			`{"name":"Food","amount":"500.00","category_ids":["018f3c2a-0000-7000-8000-0000000000c1"]}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		budget := parseJSON(t, rec)["budget"].(map[string]interface{})
		if budget["name"] != "Food" {
			t.Errorf("expected Food, got %v", budget["name"])
		}
		if budget["spent"] != "0" {
			t.Errorf("expected spent 0, got %v", budget["spent"])
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets", `{"amount":"500.00"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on negative amount", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets", `{"name":"Food","amount":"-1.00"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on malformed category id", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets", `{"name":"Food","amount":"10","category_ids":["nope"]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid color", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets", `{"name":"Food","amount":"10","color":"red"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when a linked category is unknown", func(t *testing.T) {
		svc := &mockBudgetService{
			createBudgetFn: func(_, _ string, _ decimal.Decimal, _ *string, _ []string, _, _ int) (*services.BudgetView, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "POST", "/budgets",
			`{"name":"Food","amount":"10","category_ids":["018f3c2a-0000-7000-8000-0000000000c1"]}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestBudgetHandler_GetBudgets(t *testing.T) {
	t.Run("passes explicit month through and returns budgets", func(t *testing.T) {
		var gotYear, gotMonth int
		svc := &mockBudgetService{
			getUserBudgetsFn: func(_ string, year, month int) ([]services.BudgetView, error) {
				gotYear, gotMonth = year, month
				return []services.BudgetView{
					{
						Budget: models.Budget{Base: models.Base{ID: testBudgetID}, Name: "Food", Amount: decimal.RequireFromString("500")},
						Spent:  decimal.RequireFromString("60"),
					},
				}, nil
			},
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets?year=2025&month=3", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotYear != 2025 || gotMonth != 3 {
			t.Errorf("expected 2025-03, got %d-%d", gotYear, gotMonth)
		}
		budgets := parseJSON(t, rec)["budgets"].([]interface{})
		if len(budgets) != 1 {
			t.Fatalf("expected 1 budget, got %d", len(budgets))
		}
		if budgets[0].(map[string]interface{})["spent"] != "60" {
			t.Errorf("expected spent 60, got %v", budgets[0].(map[string]interface{})["spent"])
		}
	})

	t.Run("returns 400 on out-of-range month", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets?month=13", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on non-numeric year", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets?year=abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_GetBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockBudgetService{
			getBudgetByIDFn: func(_, budgetID string, _, _ int) (*services.BudgetView, error) {
				return &services.BudgetView{
					Budget: models.Budget{Base: models.Base{ID: budgetID}, Name: "Food"},
				}, nil
			},
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/"+testBudgetID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		budget := parseJSON(t, rec)["budget"].(map[string]interface{})
		if budget["id"] != testBudgetID {
			t.Errorf("expected id %s, got %v", testBudgetID, budget["id"])
		}
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/not-a-uuid", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockBudgetService{
			getBudgetByIDFn: func(_, _ string, _, _ int) (*services.BudgetView, error) {
				return nil, apperrors.ErrBudgetNotFound
			},
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/budgets/"+testBudgetID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_NOT_FOUND")
	})
}

func TestBudgetHandler_UpdateBudget(t *testing.T) {
	t.Run("passes replacement category links through", func(t *testing.T) {
		var gotLinks *[]string
		svc := &mockBudgetService{
			updateBudgetFn: func(_, budgetID, name string, _ *decimal.Decimal, _ *string, categoryIDs *[]string, _, _ int) (*services.BudgetView, error) {
				gotLinks = categoryIDs
				return &services.BudgetView{
					Budget: models.Budget{Base: models.Base{ID: budgetID}, Name: name},
				}, nil
			},
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets/"+testBudgetID,
			`{"name":"Essentials","category_ids":["018f3c2a-0000-7000-8000-0000000000c1"]}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotLinks == nil || len(*gotLinks) != 1 {
			t.Fatalf("expected one replacement link, got %v", gotLinks)
		}
	})

	t.Run("omitted category_ids stays nil", func(t *testing.T) {
		var gotLinks *[]string
		called := false
		svc := &mockBudgetService{
			updateBudgetFn: func(_, budgetID, _ string, _ *decimal.Decimal, _ *string, categoryIDs *[]string, _, _ int) (*services.BudgetView, error) {
				called = true
				gotLinks = categoryIDs
				return &services.BudgetView{Budget: models.Budget{Base: models.Base{ID: budgetID}}}, nil
			},
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets/"+testBudgetID, `{"name":"Essentials"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !called {
			t.Fatal("expected service to be called")
		}
		if gotLinks != nil {
			t.Errorf("expected nil category_ids, got %v", *gotLinks)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockBudgetService{
			updateBudgetFn: func(_, _, _ string, _ *decimal.Decimal, _ *string, _ *[]string, _, _ int) (*services.BudgetView, error) {
				return nil, apperrors.ErrBudgetNotFound
			},
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "PUT", "/budgets/"+testBudgetID, `{"name":"Essentials"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_DeleteBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		deleted := false
		svc := &mockBudgetService{
			deleteBudgetFn: func(_, budgetID string) error {
				deleted = budgetID == testBudgetID
				return nil
			},
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "DELETE", "/budgets/"+testBudgetID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !deleted {
			t.Error("expected delete to be called with the path ID")
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockBudgetService{
			deleteBudgetFn: func(_, _ string) error { return apperrors.ErrBudgetNotFound },
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "DELETE", "/budgets/"+testBudgetID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_GetMonthSummary(t *testing.T) {
	t.Run("returns totals and budget views", func(t *testing.T) {
		svc := &mockBudgetService{
			getMonthSummaryFn: func(_ string, year, month int) (*services.MonthSummary, error) {
				return &services.MonthSummary{
					Year:     year,
					Month:    month,
					Income:   decimal.RequireFromString("2000"),
					Expenses: decimal.RequireFromString("350.25"),
					Budgets: []services.BudgetView{
						{Budget: models.Budget{Base: models.Base{ID: testBudgetID}, Name: "Food"}},
					},
				}, nil
			},
		}
		handler := NewBudgetHandler(svc, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/summary?year=2025&month=6", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		summary := parseJSON(t, rec)["summary"].(map[string]interface{})
		if summary["income"] != "2000" {
			t.Errorf("expected income 2000, got %v", summary["income"])
		}
		if summary["expenses"] != "350.25" {
			t.Errorf("expected expenses 350.25, got %v", summary["expenses"])
		}
		if len(summary["budgets"].([]interface{})) != 1 {
			t.Errorf("expected 1 budget view, got %v", summary["budgets"])
		}
	})

	t.Run("returns 400 on invalid month", func(t *testing.T) {
		handler := NewBudgetHandler(&mockBudgetService{}, &mockAuditService{})
		r := setupBudgetRouter(handler)

		rec := doRequest(r, "GET", "/summary?month=0", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
