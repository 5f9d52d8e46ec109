package middleware

import (
	"context"
	"net/http"
	"strings"

	"roboquest_backend/internal/model"
	"roboquest_backend/internal/util"
	"roboquest_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenVerifier 把 bearer token 解析成 Identity
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*model.Identity, error)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Error(c, http.StatusUnauthorized, "No authorization token provided")
			c.Abort()
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			logger.Log.Debug("Token rejected", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		util.SetIdentity(c, identity)
		c.Next()
	}
}

// AdminOnly 必须挂在 AuthMiddleware 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := util.GetIdentityFromContext(c)
		if identity == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if !identity.CanAdminister() {
			logger.Log.Warn("Admin route denied",
				zap.String("user_id", identity.UserID),
				zap.String("path", c.FullPath()))
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
