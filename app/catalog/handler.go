package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mytheresa/retail-manager/app/api"
	"github.com/mytheresa/retail-manager/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var maxPrice = decimal.New(1, 8) // decimal(10,2)

type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID       uint     `json:"id"`
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Stock    int      `json:"stock"`
	Img      string   `json:"img"`
	Category Category `json:"category"`
}

// CategoryGroup is one category with the products filed under it.
type CategoryGroup struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

type DashboardResponse struct {
	Threshold int       `json:"threshold"`
	Products  []Product `json:"products"`
}

type ProductInput struct {
	Name       string           `json:"name" validate:"required,max=200"`
	CategoryID uint             `json:"category_id" validate:"required"`
	Price      *decimal.Decimal `json:"price" validate:"required"`
	Stock      *int             `json:"stock" validate:"required,gte=0"`
	Img        string           `json:"img" validate:"omitempty,max=255,image"`
}

type ProductProvider interface {
	GetByID(id uint) (*models.Product, error)
	GetLowStock(threshold int) ([]models.Product, error)
	CreateProduct(product *models.Product) error
	UpdateProduct(product *models.Product) error
	DeleteProduct(id uint) error
}

type CategoryTree interface {
	GetCategoriesWithProducts() ([]models.Category, error)
}

type CatalogHandler struct {
	repo       ProductProvider
	categories CategoryTree
	mediaURL   string
	log        logrus.FieldLogger
}

func NewCatalogHandler(r ProductProvider, c CategoryTree, mediaURL string, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{
		repo:       r,
		categories: c,
		mediaURL:   mediaURL,
		log:        log,
	}
}

func (h *CatalogHandler) toProduct(p models.Product) Product {
	return Product{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price.StringFixed(2),
		Stock: p.Stock,
		Img:   p.ImageURL(h.mediaURL),
		Category: Category{
			ID:   p.Category.ID,
			Name: p.Category.Name,
		},
	}
}

// HandleList returns every category with its products.
func (h *CatalogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	res, err := h.categories.GetCategoriesWithProducts()
	if err != nil {
		h.log.WithError(err).Error("failed to list products")
		api.WriteError(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	groups := make([]CategoryGroup, len(res))
	for i, c := range res {
		products := make([]Product, len(c.Products))
		for j, p := range c.Products {
			p.Category = models.Category{ID: c.ID, Name: c.Name}
			products[j] = h.toProduct(p)
		}
		groups[i] = CategoryGroup{
			ID:       c.ID,
			Name:     c.Name,
			Products: products,
		}
	}
	api.WriteJSON(w, http.StatusOK, groups)
}

// HandleDashboard reports products running low on stock.
func (h *CatalogHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	res, err := h.repo.GetLowStock(models.LowStockThreshold)
	if err != nil {
		h.log.WithError(err).Error("failed to load dashboard")
		api.WriteError(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	products := make([]Product, len(res))
	for i, p := range res {
		products[i] = h.toProduct(p)
	}
	api.WriteJSON(w, http.StatusOK, DashboardResponse{
		Threshold: models.LowStockThreshold,
		Products:  products,
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(w, r)
	if !ok {
		return
	}

	product, err := h.repo.GetByID(id)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, h.toProduct(*product))
}

func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	product, ok := decodeProduct(w, r)
	if !ok {
		return
	}

	if err := h.repo.CreateProduct(product); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.log.WithField("product_id", product.ID).Info("product created")

	created, err := h.repo.GetByID(product.ID)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, h.toProduct(*created))
}

func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(w, r)
	if !ok {
		return
	}
	product, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	product.ID = id

	if err := h.repo.UpdateProduct(product); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.log.WithField("product_id", id).Info("product updated")

	updated, err := h.repo.GetByID(id)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, h.toProduct(*updated))
}

func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteProduct(id); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.log.WithField("product_id", id).Info("product deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		api.WriteError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, models.ErrCategoryNotFound):
		api.WriteError(w, http.StatusBadRequest, "Category does not exist")
	case errors.Is(err, models.ErrConstraint):
		api.WriteError(w, http.StatusBadRequest, "Price and stock cannot be negative")
	default:
		h.log.WithError(err).Error("product repository failure")
		api.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (*models.Product, bool) {
	var input ProductInput
	api.LimitBody(w, r)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return nil, false
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Img = strings.TrimSpace(input.Img)

	if err := api.Validate(input); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if input.Price.IsNegative() {
		api.WriteError(w, http.StatusBadRequest, "price cannot be negative")
		return nil, false
	}
	if !input.Price.Equal(input.Price.Round(2)) || input.Price.GreaterThanOrEqual(maxPrice) {
		api.WriteError(w, http.StatusBadRequest, "price must fit 8 digits with 2 decimal places")
		return nil, false
	}

	return &models.Product{
		Name:       input.Name,
		CategoryID: input.CategoryID,
		Price:      *input.Price,
		Stock:      *input.Stock,
		Image:      input.Img,
	}, true
}
