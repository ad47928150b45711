package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"forum-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	identityKey = "identity"
	claimsKey   = "claims"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier func(ctx context.Context, tokenString string) (*models.Claims, error)

// AuthMiddleware requires a valid bearer token and stores the caller identity
// and claims in the gin context.
func AuthMiddleware(verify TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.With(zap.String("path", c.Request.URL.Path))

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Debug("Authorization header missing")
			abortUnauthorized(c, "Missing token")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			log.Warn("Malformed Authorization header")
			abortUnauthorized(c, "Malformed token header")
			return
		}

		claims, err := verify(c.Request.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, models.ErrTokenExpired):
				abortUnauthorized(c, "Token expired")
			case errors.Is(err, models.ErrTokenInvalid), errors.Is(err, models.ErrTokenMalformed):
				abortUnauthorized(c, "Invalid token")
			default:
				log.Error("Unexpected token verification error", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					models.ErrorResponse(http.StatusInternalServerError, "Internal server error during token verification", ""))
			}
			return
		}

		c.Set(identityKey, claims.Identity())
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// IdentityFromContext returns the identity stored by AuthMiddleware.
func IdentityFromContext(c *gin.Context) (models.UserData, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.UserData{}, false
	}
	identity, ok := v.(models.UserData)
	return identity, ok
}

// ClaimsFromContext returns the token claims stored by AuthMiddleware.
func ClaimsFromContext(c *gin.Context) (*models.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*models.Claims)
	return claims, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(http.StatusUnauthorized, message, ""))
}
