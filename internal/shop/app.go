package shop

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

const (
	loginLimitPerMin = 5
	limitWindow      = 60 * time.Second
)

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)
	setupRoutes(r, s)

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		if deps.MetricsEnabled {
			deps.Log.Warn("metrics enabled but Registry is nil")
		}
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func setupRoutes(r *chi.Mux, s *Server) {
	loginLimiter := kit.NewRateLimiter(loginLimitPerMin, limitWindow)

	r.Get("/healthz", healthz)
	r.Get("/readyz", s.handleReady)

	r.Get("/products", s.handleListProducts)
	r.Get("/products/{id}", s.handleGetProduct)
	r.Get("/categories", s.handleCategories)

	r.Route("/cart", func(cr chi.Router) {
		cr.Get("/", s.handleGetCart)
		cr.Delete("/", s.handleClearCart)
		cr.Post("/items", s.handleAddToCart)
		cr.Put("/items/{id}", s.handleUpdateCartItem)
		cr.Delete("/items/{id}", s.handleRemoveCartItem)
	})
	r.Post("/checkout", s.handleCheckout)

	r.Route("/admin", func(ar chi.Router) {
		ar.With(loginLimiter.Middleware).Post("/login", s.handleLogin)
		ar.Get("/session", s.handleSession)

		ar.Group(func(pr chi.Router) {
			pr.Use(s.requireAdmin)
			pr.Post("/logout", s.handleLogout)
			pr.Put("/password", s.handleChangePassword)
			pr.Post("/products", s.handleCreateProduct)
			pr.Patch("/products/{id}", s.handleUpdateProduct)
			pr.Delete("/products/{id}", s.handleDeleteProduct)
			pr.Post("/products/{id}/image", s.handleUploadImage)
		})
	})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
