// Package api wires the HTTP router for the organization manager server.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MacJediWizard/orgmanager/docs"
	"github.com/MacJediWizard/orgmanager/internal/api/handlers"
	"github.com/MacJediWizard/orgmanager/internal/api/middleware"
	"github.com/MacJediWizard/orgmanager/internal/auth"
	"github.com/MacJediWizard/orgmanager/internal/config"
	"github.com/MacJediWizard/orgmanager/internal/db"
	"github.com/MacJediWizard/orgmanager/internal/metrics"
)

// NewRouter builds the Gin engine with all middleware and routes registered.
func NewRouter(cfg config.ServerConfig, database *db.DB, verifier *auth.Verifier, logger zerolog.Logger) *gin.Engine {
	if cfg.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins, cfg.Environment))
	r.Use(middleware.BodyLimitMiddleware(cfg.MaxBodyBytes))
	r.Use(httpMetrics.Middleware())

	if cfg.RateLimitRequests > 0 {
		limiter, err := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitPeriod)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid rate limit configuration")
		}
		r.Use(limiter)
	}

	healthHandler := handlers.NewHealthHandler(database, logger)
	orgsHandler := handlers.NewOrganizationsHandler(database, logger)

	healthHandler.RegisterPublicRoutes(r)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
			ginSwagger.URL("/api/docs/doc.json"),
			ginSwagger.DefaultModelsExpandDepth(-1)))

		healthHandler.RegisterRoutes(api)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(verifier, logger))
		orgsHandler.RegisterRoutes(protected)
	}

	return r
}
