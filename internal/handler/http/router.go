package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vasiliy-maslov/marketplace-service/internal/account"
	"github.com/vasiliy-maslov/marketplace-service/internal/asset"
	"github.com/vasiliy-maslov/marketplace-service/internal/cart"
	"github.com/vasiliy-maslov/marketplace-service/internal/catalog"
	"github.com/vasiliy-maslov/marketplace-service/internal/metrics"
	"github.com/vasiliy-maslov/marketplace-service/internal/order"
	"github.com/vasiliy-maslov/marketplace-service/internal/report"
	"github.com/vasiliy-maslov/marketplace-service/internal/storage"
)

type Services struct {
	Accounts account.Service
	Catalog  catalog.Service
	Carts    cart.Service
	Orders   order.Service
	Reports  report.Service
	Files    storage.Storage
}

type RouterConfig struct {
	Assets   asset.Resolver
	Location *time.Location
}

func NewRouter(svc Services, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Only the local driver serves its own files; S3 objects carry
	// absolute URLs.
	if fs, ok := svc.Files.(interface{ Handler() http.Handler }); ok {
		r.Method(http.MethodGet, storage.URLPrefix+"*", fs.Handler())
	}

	present := NewPresenter(cfg.Assets, cfg.Location)

	NewAuthHandler(svc.Accounts).RegisterRoutes(r)
	NewCatalogHandler(svc.Catalog, present).RegisterRoutes(r)
	NewCartHandler(svc.Carts, svc.Orders, present).RegisterRoutes(r)
	NewProfileHandler(svc.Accounts, svc.Reports, svc.Files, present).RegisterRoutes(r)
	NewSellerHandler(svc.Catalog, svc.Orders, present).RegisterRoutes(r)
	NewDashboardHandler(svc.Reports).RegisterRoutes(r)
	NewAdminHandler(svc.Accounts, svc.Catalog, svc.Reports, present).RegisterRoutes(r)
	NewUploadHandler(svc.Files).RegisterRoutes(r)

	return r
}
