package middleware

import (
	"strings"

	"taskmanager/internal/adapter/http/helper"
	"taskmanager/internal/core/port"
	ct "taskmanager/pkg/context"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey    = "x-user-id"
	UserEmailKey = "x-user-email"
)

// Authentication resolves the caller from a bearer token or, for clients
// that cannot set headers, a token query parameter. A missing, invalid or
// expired token leaves the request anonymous.
func Authentication(auth port.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		GetCurrent(c).Set(ct.UserIDKey, claims.UserID)

		c.Next()
	}
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUserID(c) == "" {
			helper.SendUnauthenticatedError(c, "Not authenticated")
			return
		}

		c.Next()
	}
}

// CurrentUserID is empty for anonymous requests.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")

	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}

	return c.Query("token")
}
