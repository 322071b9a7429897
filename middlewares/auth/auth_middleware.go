package auth

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/courtbook/courtbook/config/db"
	"github.com/courtbook/courtbook/logger"
	"github.com/courtbook/courtbook/models/user_models"
)

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// AuthMiddleware validates the Bearer token, loads the user, and publishes
// "sub" and "role" into the request context. Tokens for inactive users are
// rejected. When the tenant middleware already resolved an organization, a
// tenant-bound user must belong to it.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
			return
		}
		if len(authHeader) < 8 || !strings.EqualFold(authHeader[:7], "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		rawToken := authHeader[7:]

		token, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return jwtSecret(), nil
		})
		if err != nil || !token.Valid {
			logger.WarnLogger.Warnf("Rejected invalid token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}
		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid subject claim"})
			return
		}

		user, err := user_models.GetUserByID(c.Request.Context(), db.DB, userID)
		if err != nil {
			logger.WarnLogger.Warnf("Token for unknown user %s", userID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user associated with token not found"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account is disabled"})
			return
		}

		if orgRaw, exists := c.Get("organization_id"); exists && user.OrganizationID != nil {
			if orgStr, ok := orgRaw.(string); ok && orgStr != user.OrganizationID.String() {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user does not belong to this organization"})
				return
			}
		}

		c.Set("sub", user.ID.String())
		c.Set("role", string(user.Role))
		c.Next()
	}
}
