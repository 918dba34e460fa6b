package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mytheresa/retail-manager/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

// --- Mock Repos ---

type MockProductRepo struct {
	SourceProducts []models.Product
	Err            error

	// Fields to capture call arguments
	lastThreshold int
	lastCalledID  uint
	lastCreated   *models.Product
	lastUpdated   *models.Product
	lastDeletedID uint
	nextID        uint
}

func (m *MockProductRepo) GetLowStock(threshold int) ([]models.Product, error) {
	m.lastThreshold = threshold
	if m.Err != nil {
		return nil, m.Err
	}

	var low []models.Product
	for _, p := range m.SourceProducts {
		if p.Stock <= threshold {
			low = append(low, p)
		}
	}
	return low, nil
}

func (m *MockProductRepo) GetByID(id uint) (*models.Product, error) {
	m.lastCalledID = id

	for _, p := range m.SourceProducts {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return nil, models.ErrProductNotFound
}

func (m *MockProductRepo) CreateProduct(product *models.Product) error {
	m.lastCreated = product
	if m.Err != nil {
		return m.Err
	}
	product.ID = m.nextID
	product.Category = models.Category{ID: product.CategoryID, Name: "Created"}
	m.SourceProducts = append(m.SourceProducts, *product)
	return nil
}

func (m *MockProductRepo) UpdateProduct(product *models.Product) error {
	m.lastUpdated = product
	if m.Err != nil {
		return m.Err
	}
	for i, p := range m.SourceProducts {
		if p.ID == product.ID {
			product.Category = p.Category
			m.SourceProducts[i] = *product
			return nil
		}
	}
	return models.ErrProductNotFound
}

func (m *MockProductRepo) DeleteProduct(id uint) error {
	m.lastDeletedID = id
	if m.Err != nil {
		return m.Err
	}
	for _, p := range m.SourceProducts {
		if p.ID == id {
			return nil
		}
	}
	return models.ErrProductNotFound
}

type MockCategoryTree struct {
	Categories []models.Category
	Err        error
}

func (m *MockCategoryTree) GetCategoriesWithProducts() ([]models.Category, error) {
	return m.Categories, m.Err
}

// --- Helpers ---

func newTestProduct(id uint, name string, category models.Category, price float64, stock int) models.Product {
	return models.Product{
		ID:         id,
		Name:       name,
		Price:      decimal.NewFromFloat(price),
		Stock:      stock,
		CategoryID: category.ID,
		Category:   category,
	}
}

func newTestHandler(repo ProductProvider, tree CategoryTree) *CatalogHandler {
	logger, _ := test.NewNullLogger()
	return NewCatalogHandler(repo, tree, "/media/", logger)
}

// --- Tests ---

func TestHandleList(t *testing.T) {
	shoes := models.Category{ID: 1, Name: "Shoes"}
	hats := models.Category{ID: 2, Name: "Hats"}

	testCases := []struct {
		name               string
		tree               *MockCategoryTree
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "Groups products by category",
			tree: &MockCategoryTree{Categories: []models.Category{
				{ID: 1, Name: "Shoes", Products: []models.Product{
					newTestProduct(10, "Boot", models.Category{}, 59.9, 3),
					newTestProduct(11, "Sandal", models.Category{}, 19.99, 0),
				}},
				{ID: 2, Name: "Hats"},
			}},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp []CategoryGroup
				err := json.NewDecoder(rec.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Len(t, resp, 2)
				assert.Equal(t, "Shoes", resp[0].Name)
				assert.Len(t, resp[0].Products, 2)
				assert.Equal(t, "59.90", resp[0].Products[0].Price)
				assert.Equal(t, Category{ID: shoes.ID, Name: shoes.Name}, resp[0].Products[1].Category)
				assert.Equal(t, hats.Name, resp[1].Name)
				assert.NotNil(t, resp[1].Products)
				assert.Len(t, resp[1].Products, 0)
			},
		},
		{
			name:               "Repository error",
			tree:               &MockCategoryTree{Err: errors.New("db down")},
			expectedStatusCode: http.StatusInternalServerError,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var errResp map[string]string
				err := json.NewDecoder(rec.Body).Decode(&errResp)
				assert.NoError(t, err)
				assert.Equal(t, "failed to get products", errResp["error"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			handler := newTestHandler(&MockProductRepo{}, tc.tree)
			req := httptest.NewRequest("GET", "/management/products/", nil)
			rec := httptest.NewRecorder()

			// Act
			handler.HandleList(rec, req)

			// Assert
			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

func TestHandleDashboard(t *testing.T) {
	cat := models.Category{ID: 1, Name: "Clothing"}
	allMockProducts := []models.Product{
		newTestProduct(1, "Shirt", cat, 19.99, 0),
		newTestProduct(2, "Jacket", cat, 95.50, 5),
		newTestProduct(3, "Socks", cat, 4.00, 6),
		newTestProduct(4, "Scarf", cat, 24.99, 100),
	}

	t.Run("Only products at or below the threshold", func(t *testing.T) {
		repo := &MockProductRepo{SourceProducts: allMockProducts}
		handler := newTestHandler(repo, &MockCategoryTree{})
		rec := httptest.NewRecorder()

		handler.HandleDashboard(rec, httptest.NewRequest("GET", "/management/dashboard/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, repo.lastThreshold, "threshold is fixed at 5")

		var resp DashboardResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, 5, resp.Threshold)
		if assert.Len(t, resp.Products, 2) {
			assert.Equal(t, "Shirt", resp.Products[0].Name)
			assert.Equal(t, "Jacket", resp.Products[1].Name)
		}
	})

	t.Run("Repository error", func(t *testing.T) {
		handler := newTestHandler(&MockProductRepo{Err: errors.New("db down")}, &MockCategoryTree{})
		rec := httptest.NewRecorder()

		handler.HandleDashboard(rec, httptest.NewRequest("GET", "/management/dashboard/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
