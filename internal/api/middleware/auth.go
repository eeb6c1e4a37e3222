// Package middleware provides HTTP middleware for the organization manager API.
package middleware

import (
	"context"
	"net/http"

	"github.com/MacJediWizard/orgmanager/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TokenVerifier validates a bearer token and returns the subject it carries.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// ContextKey is the type for context keys used by this package.
type ContextKey string

// OwnerContextKey is the context key for the verified owner id.
const OwnerContextKey ContextKey = "owner_user_id"

// AuthMiddleware returns a Gin middleware that requires a valid bearer token.
// It is the sole gate in front of the store: no handler runs without a
// verified owner id in the context. All verification failures map to 401.
func AuthMiddleware(verifier TokenVerifier, logger zerolog.Logger) gin.HandlerFunc {
	log := logger.With().Str("component", "auth_middleware").Logger()

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			log.Debug().Str("path", c.Request.URL.Path).Msg("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		token := auth.ExtractBearerToken(header)
		if token == "" {
			log.Debug().Str("path", c.Request.URL.Path).Msg("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		subject, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("token verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		ownerID, err := uuid.Parse(subject)
		if err != nil {
			log.Debug().Str("path", c.Request.URL.Path).Msg("token subject is not a valid owner id")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			return
		}

		c.Set(string(OwnerContextKey), ownerID)

		log.Debug().
			Str("owner_user_id", ownerID.String()).
			Str("path", c.Request.URL.Path).
			Msg("authenticated request")

		c.Next()
	}
}

// GetOwnerID retrieves the verified owner id from the Gin context.
func GetOwnerID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(string(OwnerContextKey))
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return id, true
}

// RequireOwnerID is a helper that gets the verified owner id or aborts with 401.
// Use this in handlers that expect AuthMiddleware to have already run.
func RequireOwnerID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := GetOwnerID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return uuid.Nil, false
	}
	return id, true
}
