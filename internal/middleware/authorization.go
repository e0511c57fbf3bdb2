package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"rewards_quest_bot/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type Authorization struct {
	token string
}

func NewAuthorization(token string) *Authorization {
	return &Authorization{
		token: token,
	}
}

// BearerToken rejects requests without "Authorization: Bearer <token>".
// With an empty token every request passes.
func (a *Authorization) BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.token == "" {
			c.Next()
			return
		}

		log := logger.Logger()

		header := c.GetHeader("Authorization")
		got, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			log.Info("missing bearer token", zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if subtle.ConstantTimeCompare([]byte(got), []byte(a.token)) != 1 {
			log.Info("invalid bearer token", zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
