package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lnco/artifact-service/internal/platform/logger"
	"github.com/lnco/artifact-service/internal/services"
)

const contributorKey = "contributor"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// RequireAuth rejects requests without a resolvable bearer identity.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}
		sub, err := am.authService.SubjectFromToken(tokenString)
		if err != nil {
			am.log.Debug("Token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": err.Error(), "code": "unauthorized"},
			})
			return
		}
		c.Set(contributorKey, sub)
		c.Next()
	}
}

// OptionalAuth resolves an identity when a token is present but lets
// anonymous requests through. Reads are never gated on ownership; only the
// editability flags differ.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := extractToken(c); tokenString != "" {
			if sub, err := am.authService.SubjectFromToken(tokenString); err == nil {
				c.Set(contributorKey, sub)
			} else {
				am.log.Debug("Ignoring unresolvable token on optional-auth route", "error", err)
			}
		}
		c.Next()
	}
}

// Contributor returns the resolved identity for the request, empty for
// anonymous callers.
func Contributor(c *gin.Context) string {
	return c.GetString(contributorKey)
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
