package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/sweetshop-backend/api/controllers"
	"github.com/angelmondragon/sweetshop-backend/api/middleware"
	"github.com/angelmondragon/sweetshop-backend/internal/auth"
	"github.com/angelmondragon/sweetshop-backend/internal/sweets"
	"github.com/angelmondragon/sweetshop-backend/pkg/config"
	"github.com/angelmondragon/sweetshop-backend/pkg/db"
	"github.com/angelmondragon/sweetshop-backend/pkg/logger"
	"github.com/angelmondragon/sweetshop-backend/pkg/metrics"
	"github.com/angelmondragon/sweetshop-backend/pkg/redis"
)

// RedisStore is the slice of the redis client used by the HTTP layer.
type RedisStore interface {
	redis.Pinger
	redis.IdempotencyStore
	redis.RateLimitStore
}

// RouterParams bundles everything NewRouter wires together. Redis, Registry
// and HTTPMetrics are optional.
type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         RedisStore
	Registry      *prometheus.Registry
	HTTPMetrics   *metrics.HTTPMetrics
	AuthService   auth.Service
	SweetsService sweets.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Metrics(p.HTTPMetrics),
	)

	var (
		rateStore        redis.RateLimitStore
		idempotencyStore redis.IdempotencyStore
	)
	readiness := map[string]controllers.Pinger{"database": p.DB}
	if p.Redis != nil {
		rateStore = p.Redis
		idempotencyStore = p.Redis
		readiness["redis"] = p.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readiness, logg))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)
	registerPolicy := middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg)).Post("/register", controllers.AuthRegister(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
	})

	idempotent := middleware.Idempotency(idempotencyStore, logg)
	adminOnly := middleware.RequireAdmin(logg)

	r.Route("/api/sweets", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/", controllers.SweetsList(p.SweetsService, logg))
		r.Get("/search", controllers.SweetsSearch(p.SweetsService, logg))
		r.Get("/{id}", controllers.SweetsGet(p.SweetsService, logg))
		r.With(idempotent).Post("/{id}/purchase", controllers.SweetsPurchase(p.SweetsService, logg))

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.With(idempotent).Post("/", controllers.SweetsCreate(p.SweetsService, logg))
			r.Put("/{id}", controllers.SweetsUpdate(p.SweetsService, logg))
			r.Delete("/{id}", controllers.SweetsDelete(p.SweetsService, logg))
			r.With(idempotent).Post("/{id}/restock", controllers.SweetsRestock(p.SweetsService, logg))
		})
	})

	return r
}
