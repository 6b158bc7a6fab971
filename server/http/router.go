package serverhttp

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"name-matcher/internal/config"
	matchHnd "name-matcher/internal/matching/handler"
	"name-matcher/internal/matching/service"
	"name-matcher/internal/middleware"
	"name-matcher/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> realip -> requestID -> logging -> cors
	r.Use(middleware.Recover(logger))
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))

	r.Get("/", handlers.Index(cfg, logger))
	r.Get("/health", handlers.Health)

	matcher := service.NewMatcher(service.WithLogger(logger))
	r.With(
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		middleware.LimitBytes(cfg.MaxUploadBytes()),
	).Post("/match", matchHnd.Match(cfg, logger, matcher))

	return r
}
