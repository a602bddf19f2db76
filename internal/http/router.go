package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/hotelstock/hotel-stock-api/internal/auth"
	"github.com/hotelstock/hotel-stock-api/internal/config"
	"github.com/hotelstock/hotel-stock-api/internal/hotel"
	"github.com/hotelstock/hotel-stock-api/internal/httputil"
	"github.com/hotelstock/hotel-stock-api/internal/logging"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	cfg *config.Config,
	authHandler *auth.Handler,
	hotelHandler *hotel.Handler,
	authMiddleware *auth.Middleware,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  NewOriginChecker(cfg.Server.TrustedOrigins, cfg.Server.OriginWildcard),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Origin", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	// Public routes
	r.Get("/health", handleHealth)
	r.Get("/hotels-public", hotelHandler.ListPublic)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger ui enabled", "path", "/swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	// Auth routes (public)
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/forgot-password", authHandler.ForgotPassword)
	r.Post("/reset-password", authHandler.ResetPassword)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Post("/logout", authHandler.Logout)
		r.Get("/user", authHandler.Me)

		r.Route("/hotels", func(r chi.Router) {
			r.Get("/", hotelHandler.ListOwn)
			r.Post("/", hotelHandler.Create)
			r.Get("/{id}", hotelHandler.Get)
			r.Put("/{id}", hotelHandler.Update)
			r.Delete("/{id}", hotelHandler.Delete)
		})
		r.Get("/my-hotels", hotelHandler.ListOwn)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
