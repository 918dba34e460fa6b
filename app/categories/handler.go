package categories

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mytheresa/retail-manager/app/api"
	"github.com/mytheresa/retail-manager/models"
	"github.com/sirupsen/logrus"
)

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CategoryInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CategoryProvider interface {
	GetAllCategories() ([]models.Category, error)
	GetByID(id uint) (*models.Category, error)
	CreateCategory(category *models.Category) error
	UpdateCategory(category *models.Category) error
	DeleteCategory(id uint) error
}

type CategoryHandler struct {
	repo CategoryProvider
	log  logrus.FieldLogger
}

func NewCategoryHandler(r CategoryProvider, log logrus.FieldLogger) *CategoryHandler {
	return &CategoryHandler{repo: r, log: log}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories()
	if err != nil {
		h.log.WithError(err).Error("failed to fetch categories")
		api.WriteError(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = CategoryResponse{
			ID:   c.ID,
			Name: c.Name,
		}
	}
	api.WriteJSON(w, http.StatusOK, response)
}

func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(w, r)
	if !ok {
		return
	}

	category, err := h.repo.GetByID(id)
	if err != nil {
		h.writeRepoError(w, err, "failed to fetch category")
		return
	}
	api.WriteJSON(w, http.StatusOK, CategoryResponse{ID: category.ID, Name: category.Name})
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeCategory(w, r)
	if !ok {
		return
	}

	category := &models.Category{Name: input.Name}
	if err := h.repo.CreateCategory(category); err != nil {
		h.log.WithError(err).Error("failed to create category")
		api.WriteError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}
	h.log.WithField("category_id", category.ID).Info("category created")

	api.WriteJSON(w, http.StatusCreated, CategoryResponse{ID: category.ID, Name: category.Name})
}

func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(w, r)
	if !ok {
		return
	}
	input, ok := decodeCategory(w, r)
	if !ok {
		return
	}

	category := &models.Category{ID: id, Name: input.Name}
	if err := h.repo.UpdateCategory(category); err != nil {
		h.writeRepoError(w, err, "Failed to update category")
		return
	}
	api.WriteJSON(w, http.StatusOK, CategoryResponse{ID: category.ID, Name: category.Name})
}

// HandleDelete refuses to remove a category that still has products.
func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteCategory(id); err != nil {
		h.writeRepoError(w, err, "Failed to delete category")
		return
	}
	h.log.WithField("category_id", id).Info("category deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) writeRepoError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, models.ErrCategoryNotFound):
		api.WriteError(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, models.ErrCategoryInUse):
		api.WriteError(w, http.StatusConflict, "Category still has products")
	default:
		h.log.WithError(err).Error(fallback)
		api.WriteError(w, http.StatusInternalServerError, fallback)
	}
}

func decodeCategory(w http.ResponseWriter, r *http.Request) (CategoryInput, bool) {
	var input CategoryInput
	api.LimitBody(w, r)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return input, false
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := api.Validate(input); err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return input, false
	}
	return input, true
}
