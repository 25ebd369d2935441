package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dhruvbhatia/bizdesk-backend/api/controllers"
	"github.com/dhruvbhatia/bizdesk-backend/api/middleware"
	"github.com/dhruvbhatia/bizdesk-backend/internal/auth"
	"github.com/dhruvbhatia/bizdesk-backend/internal/chat"
	"github.com/dhruvbhatia/bizdesk-backend/internal/documents"
	"github.com/dhruvbhatia/bizdesk-backend/internal/inventory"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/auth/session"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/config"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/db"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/enums"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/logger"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/redis"
)

// Deps bundles everything the router needs.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	Sessions       session.AccessSessionChecker
	Registry       *prometheus.Registry
	AuthService    auth.Service
	Inventory      inventory.Service
	Documents      documents.Service
	Chat           chat.Service
	MaxUploadBytes int64
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginTokenLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.Login(deps.AuthService, logg))
		r.Post("/refresh", controllers.Refresh(deps.AuthService, logg))
		r.Post("/logout", controllers.Logout(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(deps.Inventory, logg))
			r.Post("/", controllers.InventoryCreate(deps.Inventory, logg))
			r.Get("/export", controllers.InventoryExport(deps.Inventory, logg))
			r.Post("/import", controllers.InventoryImport(deps.Inventory, deps.Chat, logg))
			r.Post("/ask", controllers.InventoryAsk(deps.Chat, logg))
			r.Get("/{itemId}", controllers.InventoryGet(deps.Inventory, logg))
			r.Patch("/{itemId}", controllers.InventoryUpdate(deps.Inventory, logg))
			r.Delete("/{itemId}", controllers.InventoryDelete(deps.Inventory, logg))
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", controllers.DocumentList(deps.Documents, logg))
			r.Post("/", controllers.DocumentUpload(deps.Documents, deps.MaxUploadBytes, logg))
			r.Post("/query", controllers.DocumentQuery(deps.Documents, cfg.RAG.TopK, logg))
		})

		r.Route("/chat", func(r chi.Router) {
			r.Post("/ask", controllers.ChatAsk(deps.Chat, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))

		r.Delete("/inventory", controllers.InventoryClear(deps.Inventory, logg))
	})

	return r
}
