package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mytheresa/retail-manager/models"
	"github.com/stretchr/testify/assert"
)

// --- Response Struct ---

type errorBody struct {
	Error string `json:"error"`
}

// --- Tests ---

func TestHandleGetProduct(t *testing.T) {
	cat := models.Category{ID: 3, Name: "Accessories"}
	product := newTestProduct(7, "Belt", cat, 10.00, 2)
	product.Image = "products/belt.webp"

	testCases := []struct {
		name               string
		id                 string
		repo               *MockProductRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:               "Found",
			id:                 "7",
			repo:               &MockProductRepo{SourceProducts: []models.Product{product}},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Product
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, Product{
					ID:       7,
					Name:     "Belt",
					Price:    "10.00",
					Stock:    2,
					Img:      "/media/products/belt.webp",
					Category: Category{ID: 3, Name: "Accessories"},
				}, resp)
			},
		},
		{
			name:               "Not found",
			id:                 "8",
			repo:               &MockProductRepo{SourceProducts: []models.Product{product}},
			expectedStatusCode: http.StatusNotFound,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp errorBody
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "Product not found", resp.Error)
			},
		},
		{
			name:               "Invalid id",
			id:                 "abc",
			repo:               &MockProductRepo{},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Repository failure",
			id:                 "1",
			repo:               &MockProductRepo{Err: errors.New("db down")},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestHandler(tc.repo, &MockCategoryTree{})
			req := httptest.NewRequest("GET", "/management/products/"+tc.id+"/", nil)
			req.SetPathValue("id", tc.id)
			rec := httptest.NewRecorder()

			handler.HandleGetProduct(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}

func TestHandleCreate(t *testing.T) {
	testCases := []struct {
		name               string
		body               string
		repoErr            error
		expectedStatusCode int
		expectedError      string
		checkRepo          func(t *testing.T, repo *MockProductRepo)
	}{
		{
			name:               "Valid product",
			body:               `{"name":"  Cap ","category_id":2,"price":"15.5","stock":4,"img":"products/cap.png"}`,
			expectedStatusCode: http.StatusCreated,
			checkRepo: func(t *testing.T, repo *MockProductRepo) {
				if assert.NotNil(t, repo.lastCreated) {
					assert.Equal(t, "Cap", repo.lastCreated.Name)
					assert.Equal(t, uint(2), repo.lastCreated.CategoryID)
					assert.Equal(t, "15.50", repo.lastCreated.Price.StringFixed(2))
					assert.Equal(t, 4, repo.lastCreated.Stock)
					assert.Equal(t, "products/cap.png", repo.lastCreated.Image)
				}
			},
		},
		{
			name:               "Numeric price and zero stock",
			body:               `{"name":"Cap","category_id":2,"price":0,"stock":0}`,
			expectedStatusCode: http.StatusCreated,
		},
		{
			name:               "Invalid JSON",
			body:               `{"name":`,
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Invalid JSON body",
		},
		{
			name:               "Oversized body",
			body:               `{"name":"` + strings.Repeat("a", 2<<20) + `","category_id":2,"price":"1","stock":1}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Invalid JSON body",
		},
		{
			name:               "Blank name",
			body:               `{"name":"   ","category_id":2,"price":"1","stock":1}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "name is required",
		},
		{
			name:               "Missing stock",
			body:               `{"name":"Cap","category_id":2,"price":"1"}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "stock is required",
		},
		{
			name:               "Negative stock",
			body:               `{"name":"Cap","category_id":2,"price":"1","stock":-1}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "stock must be at least 0",
		},
		{
			name:               "Negative price",
			body:               `{"name":"Cap","category_id":2,"price":"-0.01","stock":1}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "price cannot be negative",
		},
		{
			name:               "Too many decimals",
			body:               `{"name":"Cap","category_id":2,"price":"1.999","stock":1}`,
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Not an image",
			body:               `{"name":"Cap","category_id":2,"price":"1","stock":1,"img":"cap.exe"}`,
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "img must reference a jpg, png, gif or webp file",
		},
		{
			name:               "Unknown category",
			body:               `{"name":"Cap","category_id":99,"price":"1","stock":1}`,
			repoErr:            models.ErrCategoryNotFound,
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Category does not exist",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockProductRepo{Err: tc.repoErr, nextID: 12}
			handler := newTestHandler(repo, &MockCategoryTree{})
			req := httptest.NewRequest("POST", "/management/products/add", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			handler.HandleCreate(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedError != "" {
				var resp errorBody
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, tc.expectedError, resp.Error)
			}
			if tc.expectedStatusCode == http.StatusCreated {
				var resp Product
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, uint(12), resp.ID)
			} else if tc.repoErr == nil {
				assert.Nil(t, repo.lastCreated, "invalid input never reaches the repository")
			}
			if tc.checkRepo != nil {
				tc.checkRepo(t, repo)
			}
		})
	}
}

func TestHandleUpdate(t *testing.T) {
	cat := models.Category{ID: 1, Name: "Shoes"}

	t.Run("Overwrites editable fields", func(t *testing.T) {
		repo := &MockProductRepo{SourceProducts: []models.Product{newTestProduct(5, "Boot", cat, 50, 2)}}
		handler := newTestHandler(repo, &MockCategoryTree{})
		req := httptest.NewRequest("POST", "/management/products/edit/5/",
			strings.NewReader(`{"name":"Tall boot","category_id":1,"price":"65.00","stock":9}`))
		req.SetPathValue("id", "5")
		rec := httptest.NewRecorder()

		handler.HandleUpdate(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, uint(5), repo.lastUpdated.ID)
		var resp Product
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Tall boot", resp.Name)
		assert.Equal(t, "65.00", resp.Price)
		assert.Equal(t, 9, resp.Stock)
	})

	t.Run("Unknown product", func(t *testing.T) {
		handler := newTestHandler(&MockProductRepo{}, &MockCategoryTree{})
		req := httptest.NewRequest("POST", "/management/products/edit/5/",
			strings.NewReader(`{"name":"Boot","category_id":1,"price":"1","stock":1}`))
		req.SetPathValue("id", "5")
		rec := httptest.NewRecorder()

		handler.HandleUpdate(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Invalid body", func(t *testing.T) {
		repo := &MockProductRepo{SourceProducts: []models.Product{newTestProduct(5, "Boot", cat, 50, 2)}}
		handler := newTestHandler(repo, &MockCategoryTree{})
		req := httptest.NewRequest("POST", "/management/products/edit/5/",
			strings.NewReader(`{"name":"Boot","category_id":1,"price":"1","stock":-4}`))
		req.SetPathValue("id", "5")
		rec := httptest.NewRecorder()

		handler.HandleUpdate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, repo.lastUpdated)
	})
}

func TestHandleDelete(t *testing.T) {
	cat := models.Category{ID: 1, Name: "Shoes"}
	testCases := []struct {
		name               string
		id                 string
		expectedStatusCode int
	}{
		{name: "Existing product", id: "5", expectedStatusCode: http.StatusNoContent},
		{name: "Missing product", id: "6", expectedStatusCode: http.StatusNotFound},
		{name: "Zero id", id: "0", expectedStatusCode: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockProductRepo{SourceProducts: []models.Product{newTestProduct(5, "Boot", cat, 50, 2)}}
			handler := newTestHandler(repo, &MockCategoryTree{})
			req := httptest.NewRequest("POST", "/management/products/delete/"+tc.id+"/", nil)
			req.SetPathValue("id", tc.id)
			rec := httptest.NewRecorder()

			handler.HandleDelete(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
		})
	}
}
