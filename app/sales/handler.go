package sales

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mytheresa/retail-manager/app/api"
	"github.com/mytheresa/retail-manager/models"
	"github.com/sirupsen/logrus"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type SaleRequest struct {
	Cart []CartItem `json:"cart"`
}

// CartItem ignores any extra product fields the POS client sends along.
type CartItem struct {
	ID       uint `json:"id"`
	Quantity int  `json:"quantity"`
}

type UpdatedProduct struct {
	ID       uint `json:"id"`
	NewStock int  `json:"new_stock"`
}

type SaleResponse struct {
	Status          string           `json:"status"`
	Message         string           `json:"message"`
	UpdatedProducts []UpdatedProduct `json:"updated_products"`
}

type FailureResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// POSProduct is the catalog entry the POS screen searches over.
type POSProduct struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
	Price string `json:"price"`
	Img   string `json:"img"`
}

type SaleProcessor interface {
	Process(ctx context.Context, cart []LineItem) ([]StockUpdate, error)
}

type InStockProvider interface {
	GetInStock() ([]models.Product, error)
}

type Handler struct {
	processor SaleProcessor
	products  InStockProvider
	mediaURL  string
	timeout   time.Duration
	log       logrus.FieldLogger
}

func NewHandler(processor SaleProcessor, products InStockProvider, mediaURL string, timeout time.Duration, log logrus.FieldLogger) *Handler {
	return &Handler{
		processor: processor,
		products:  products,
		mediaURL:  mediaURL,
		timeout:   timeout,
		log:       log,
	}
}

func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	res, err := h.products.GetInStock()
	if err != nil {
		h.log.WithError(err).Error("failed to load POS catalog")
		api.WriteError(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	products := make([]POSProduct, len(res))
	for i, p := range res {
		products[i] = POSProduct{
			ID:    p.ID,
			Name:  p.Name,
			Stock: p.Stock,
			Price: p.Price.StringFixed(2),
			Img:   p.ImageURL(h.mediaURL),
		}
	}
	api.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleProcessSale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeFailure(w, ErrInvalidMethod)
		return
	}

	var req SaleRequest
	api.LimitBody(w, r)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cart == nil {
		h.writeFailure(w, ErrMalformedRequest)
		return
	}

	cart := make([]LineItem, len(req.Cart))
	for i, item := range req.Cart {
		cart[i] = LineItem{ProductID: item.ID, Quantity: item.Quantity}
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	updates, err := h.processor.Process(ctx, cart)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	updated := make([]UpdatedProduct, len(updates))
	for i, u := range updates {
		updated[i] = UpdatedProduct{ID: u.ProductID, NewStock: u.NewStock}
	}
	api.WriteJSON(w, http.StatusOK, SaleResponse{
		Status:          statusSuccess,
		Message:         "Sale processed successfully",
		UpdatedProducts: updated,
	})
}

func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	var (
		insufficient *InsufficientStockError
		notFound     *NotFoundError
		status       int
		message      string
	)
	switch {
	case errors.Is(err, ErrInvalidMethod):
		status, message = http.StatusMethodNotAllowed, ErrInvalidMethod.Error()
	case errors.As(err, &insufficient):
		status, message = http.StatusBadRequest, insufficient.Error()
	case errors.As(err, &notFound):
		status, message = http.StatusInternalServerError, notFound.Error()
	case errors.Is(err, ErrMalformedRequest):
		status, message = http.StatusInternalServerError, "Malformed sale request"
	case errors.Is(err, context.DeadlineExceeded):
		h.log.WithError(err).Error("sale timed out")
		api.WriteJSON(w, http.StatusInternalServerError, FailureResponse{
			Status:  statusError,
			Message: "The sale timed out, no stock was changed",
		})
		return
	default:
		h.log.WithError(err).Error("sale failed")
		api.WriteJSON(w, http.StatusInternalServerError, FailureResponse{
			Status:  statusError,
			Message: "An unexpected error occurred",
		})
		return
	}

	h.log.WithError(err).WithField("status", status).Warn("sale rejected")
	api.WriteJSON(w, status, FailureResponse{Status: statusError, Message: message})
}
