package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// HealthStore defines the interface for database health checks.
type HealthStore interface {
	Ping(ctx context.Context) error
	Check(ctx context.Context) (int, error)
	Health() map[string]any
}

// HealthHandler handles health-related HTTP endpoints.
type HealthHandler struct {
	db     HealthStore
	logger zerolog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db HealthStore, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger.With().Str("component", "health_handler").Logger(),
	}
}

// RegisterPublicRoutes registers health check routes that don't require authentication.
func (h *HealthHandler) RegisterPublicRoutes(r *gin.Engine) {
	r.GET("/health", h.Overall)
}

// RegisterRoutes registers the database probe on the given router group.
func (h *HealthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/db-check", h.DBCheck)
}

// Overall returns the overall server health status.
//
//	@Summary	Server health
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Failure	503	{object}	map[string]any
//	@Router		/health [get]
func (h *HealthHandler) Overall(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error().Err(err).Msg("database ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": h.db.Health(),
	})
}

// DBCheck runs a trivial round-trip query against the database.
//
//	@Summary	Database connectivity check
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Failure	500	{object}	map[string]string
//	@Router		/db-check [get]
func (h *HealthHandler) DBCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	value, err := h.db.Check(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("database check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database connection failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"db_response": value,
	})
}
