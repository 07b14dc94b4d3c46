package middleware

import (
	"context"
	"ctlab_backend/internal/util"
	"ctlab_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator turns a bearer token into claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*util.Claims, error)
}

func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" || tokenString == authHeader {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			logger.Log.Debug("JWT rejected", zap.Error(err))
			util.Abort(c, err)
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Set(util.ContextTokenKey, tokenString)
		c.Next()
	}
}
