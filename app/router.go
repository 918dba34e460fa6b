package app

import (
	"net/http"

	"github.com/mytheresa/retail-manager/app/api"
	"github.com/mytheresa/retail-manager/app/auth"
	"github.com/mytheresa/retail-manager/app/catalog"
	"github.com/mytheresa/retail-manager/app/categories"
	"github.com/mytheresa/retail-manager/app/middleware"
	"github.com/mytheresa/retail-manager/app/sales"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Gate       *auth.Gate
	Login      *auth.LoginHandler
	Catalog    *catalog.CatalogHandler
	Categories *categories.CategoryHandler
	Sales      *sales.Handler
}

// NewRouter wires every route. Everything under /management/ sits behind the
// staff gate, the sale endpoint included.
func NewRouter(h Handlers, logger logrus.FieldLogger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /{$}", http.RedirectHandler(auth.WelcomePath, http.StatusFound))
	mux.HandleFunc("GET /index/{$}", handleWelcome)
	mux.HandleFunc("GET "+auth.LoginPath, h.Login.HandleLoginForm)
	mux.HandleFunc("POST "+auth.LoginPath, h.Login.HandleLogin)
	mux.HandleFunc("POST /logout/", h.Login.HandleLogout)

	staff := func(f http.HandlerFunc) http.Handler {
		return h.Gate.RequireStaff(f)
	}

	mux.Handle("GET /management/products/{$}", staff(h.Catalog.HandleList))
	mux.Handle("POST /management/products/add", staff(h.Catalog.HandleCreate))
	mux.Handle("GET /management/products/{id}/", staff(h.Catalog.HandleGetProduct))
	mux.Handle("POST /management/products/edit/{id}/", staff(h.Catalog.HandleUpdate))
	mux.Handle("POST /management/products/delete/{id}/", staff(h.Catalog.HandleDelete))

	mux.Handle("GET /management/categories/{$}", staff(h.Categories.HandleGetAll))
	mux.Handle("POST /management/categories/add", staff(h.Categories.HandleCreate))
	mux.Handle("GET /management/categories/{id}/", staff(h.Categories.HandleGet))
	mux.Handle("POST /management/categories/edit/{id}/", staff(h.Categories.HandleUpdate))
	mux.Handle("POST /management/categories/delete/{id}/", staff(h.Categories.HandleDelete))

	mux.Handle("GET /management/dashboard/{$}", staff(h.Catalog.HandleDashboard))
	mux.Handle("GET /management/pos/{$}", staff(h.Sales.HandleCatalog))
	// No method in the pattern: the handler answers non-POST calls itself.
	mux.Handle("/management/pos/process-sale/{$}", staff(h.Sales.HandleProcessSale))

	return middleware.Recover(logger)(middleware.RequestLogger(logger)(mux))
}

func handleWelcome(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the store management service",
		"login":   auth.LoginPath,
	})
}
