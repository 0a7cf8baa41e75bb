package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/daeho/careops/internal/api/handlers"
	"github.com/daeho/careops/internal/api/middleware"
	"github.com/daeho/careops/internal/auth"
	"github.com/daeho/careops/internal/rental"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	Rental         *rental.Service
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow all in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		// Default to localhost for development - configure in production
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	recipientHandler := handlers.NewRecipientHandler(cfg.Rental)
	productHandler := handlers.NewProductHandler(cfg.DB)
	assetHandler := handlers.NewAssetHandler(cfg.Rental)
	orderHandler := handlers.NewOrderHandler(cfg.Rental)
	dashboardHandler := handlers.NewDashboardHandler(cfg.Rental)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			// User endpoints
			r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
				userID := middleware.GetUserID(r.Context())
				user, err := cfg.AuthService.GetUserByID(r.Context(), userID)
				if err != nil {
					http.Error(w, "User not found", http.StatusNotFound)
					return
				}
				writeJSON(w, http.StatusOK, user)
			})

			// Recipients endpoints
			r.Route("/recipients", func(r chi.Router) {
				r.Get("/", recipientHandler.List)
				r.Post("/", recipientHandler.Create)
				r.Get("/{id}", recipientHandler.Get)
				r.Put("/{id}", recipientHandler.Update)
				r.Get("/{id}/balance", recipientHandler.Balance)
				r.With(middleware.RequireRole("owner", "staff")).Post("/{id}/topup", recipientHandler.TopUp)
			})

			// Products catalog - shared across tenants, owner-managed
			r.Route("/products", func(r chi.Router) {
				r.Get("/", productHandler.List)
				r.Get("/{id}", productHandler.Get)
				r.With(middleware.RequireRole("owner")).Post("/", productHandler.Create)
				r.With(middleware.RequireRole("owner")).Put("/{id}", productHandler.Update)
			})

			// Assets endpoints
			r.Route("/assets", func(r chi.Router) {
				r.Get("/", assetHandler.List)
				r.Post("/", assetHandler.Create)
				r.Get("/{id}", assetHandler.Get)
				r.Post("/{id}/transition", assetHandler.Transition)
				r.Delete("/{id}", assetHandler.Discard)
			})

			// Orders endpoints
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.List)
				r.With(middleware.RequireRole("owner", "staff")).Post("/", orderHandler.Create)
				r.Get("/{id}", orderHandler.Get)
			})

			// Dashboard endpoints
			r.Get("/dashboard/stats", dashboardHandler.Stats)
		})
	})

	return &Router{r}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
