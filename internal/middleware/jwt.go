package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"progression-service/internal/dto"
	"progression-service/pkg/jwt"

	"github.com/gin-gonic/gin"
)

type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth validates the bearer token locally and rejects revoked JTIs.
// A nil blacklist skips revocation checks (redis unavailable).
func JWTAuth(jwtSecret string, blacklist BlacklistChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			dto.JsonError(c, http.StatusUnauthorized, "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			dto.JsonError(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwt.ValidateAccessToken(parts[1], jwtSecret)
		if err != nil {
			dto.JsonError(c, http.StatusUnauthorized, "Failed to validate token")
			c.Abort()
			return
		}

		if blacklist != nil && claims.JTI != "" {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			revoked, err := blacklist.IsBlacklisted(ctx, claims.JTI)
			cancel()
			if err == nil && revoked {
				dto.JsonError(c, http.StatusUnauthorized, "Token has been revoked")
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)

		c.Next()
	}
}
