package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"stickler/internal/config"
	"stickler/internal/middleware"
	"stickler/server/http/handlers"
	"stickler/similarity"
)

// NewRouter wires the middleware chain and routes for the comparison
// service: health check plus the recursive-compare endpoint, backed by
// the default similarity registry.
func NewRouter(cfg config.Config, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	reg := similarity.NewDefaultRegistry()

	r.Get("/health", handlers.Health)
	r.Post("/compare", handlers.Compare(reg, logger))

	return r
}
