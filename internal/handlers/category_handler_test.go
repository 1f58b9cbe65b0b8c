package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "submana/internal/errors"
	"submana/internal/models"
	"submana/internal/services"
)

// --- mock category service ---

type mockCategoryService struct {
	createCategoryFn       func(userID, name, icon, color string, parentID *string) (*models.Category, error)
	getVisibleCategoriesFn func(userID string) ([]models.Category, error)
	getCategoryByIDFn      func(userID, categoryID string) (*models.Category, error)
	updateCategoryFn       func(userID, categoryID, name, icon, color string, parentID *string) (*models.Category, error)
	deleteCategoryFn       func(userID, categoryID string) error
}

func (m *mockCategoryService) CreateCategory(userID, name, icon, color string, parentID *string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, name, icon, color, parentID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetVisibleCategories(userID string) ([]models.Category, error) {
	if m.getVisibleCategoriesFn != nil {
		return m.getVisibleCategoriesFn(userID)
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(userID, categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(userID, categoryID, name, icon, color string, parentID *string) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, categoryID, name, icon, color, parentID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

const testCategoryID = "018f3c2a-0000-7000-8000-0000000000c1"

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/categories", handler.CreateCategory)
	auth.GET("/categories", handler.GetCategories)
	auth.GET("/categories/:id", handler.GetCategory)
	auth.PUT("/categories/:id", handler.UpdateCategory)
	auth.DELETE("/categories/:id", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(userID, name, icon, color string, parentID *string) (*models.Category, error) {
				return &models.Category{
					Base:     models.Base{ID: testCategoryID},
					UserID:   &userID,
					Name:     name,
					Icon:     icon,
					Color:    color,
					ParentID: parentID,
				}, nil
			},
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories", `{"name":"Groceries","icon":"cart","color":"#FF8800"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		category := parseJSON(t, rec)["category"].(map[string]interface{})
		if category["name"] != "Groceries" {
			t.Errorf("expected Groceries, got %v", category["name"])
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories", `{"icon":"cart"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on invalid color", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories", `{"name":"Groceries","color":"orange"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on malformed parent id", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories", `{"name":"Groceries","parent_id":"nope"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 when nesting would exceed one level", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(_, _, _, _ string, _ *string) (*models.Category, error) {
				return nil, apperrors.ErrCategoryDepthExceeded
			},
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "POST", "/categories",
			`{"name":"Too deep","parent_id":"`+testCategoryID+`"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_DEPTH_EXCEEDED")
	})
}

func TestCategoryHandler_GetCategories(t *testing.T) {
	t.Run("returns visible categories", func(t *testing.T) {
		svc := &mockCategoryService{
			getVisibleCategoriesFn: func(userID string) ([]models.Category, error) {
				return []models.Category{
					{Base: models.Base{ID: testCategoryID}, Name: "Food & Drink"},
					{Base: models.Base{ID: "018f3c2a-0000-7000-8000-0000000000c2"}, UserID: &userID, Name: "Hobbies"},
				}, nil
			},
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "GET", "/categories", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		categories := parseJSON(t, rec)["categories"].([]interface{})
		if len(categories) != 2 {
			t.Fatalf("expected 2 categories, got %d", len(categories))
		}
	})
}

func TestCategoryHandler_GetCategory(t *testing.T) {
	t.Run("returns 404 when not visible", func(t *testing.T) {
		svc := &mockCategoryService{
			getCategoryByIDFn: func(_, _ string) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "GET", "/categories/"+testCategoryID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "GET", "/categories/123", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockCategoryService{
			updateCategoryFn: func(_, categoryID, name, _, _ string, _ *string) (*models.Category, error) {
				return &models.Category{Base: models.Base{ID: categoryID}, Name: name}, nil
			},
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "PUT", "/categories/"+testCategoryID, `{"name":"Renamed"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		category := parseJSON(t, rec)["category"].(map[string]interface{})
		if category["name"] != "Renamed" {
			t.Errorf("expected Renamed, got %v", category["name"])
		}
	})

	t.Run("returns 403 on system category", func(t *testing.T) {
		svc := &mockCategoryService{
			updateCategoryFn: func(_, _, _, _, _ string, _ *string) (*models.Category, error) {
				return nil, apperrors.ErrSystemCategory
			},
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "PUT", "/categories/"+testCategoryID, `{"name":"Renamed"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "SYSTEM_CATEGORY")
	})

	t.Run("returns 400 when set as its own parent", func(t *testing.T) {
		svc := &mockCategoryService{
			updateCategoryFn: func(_, _, _, _, _ string, _ *string) (*models.Category, error) {
				return nil, apperrors.ErrSelfParentCategory
			},
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "PUT", "/categories/"+testCategoryID,
			`{"parent_id":"`+testCategoryID+`"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "DELETE", "/categories/"+testCategoryID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("returns 409 when category has children", func(t *testing.T) {
		svc := &mockCategoryService{
			deleteCategoryFn: func(_, _ string) error { return apperrors.ErrCategoryHasChildren },
		}
		handler := NewCategoryHandler(svc, &mockAuditService{})
		r := setupCategoryRouter(handler)

		rec := doRequest(r, "DELETE", "/categories/"+testCategoryID, "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_HAS_CHILDREN")
	})
}
