package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/audittrack/audittrack-api/internal/models"
	"github.com/gin-gonic/gin"
)

// TokenVerifier resolves a bearer token to the user it belongs to.
// Implemented by services.AuthService.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.User, error)
}

// Auth returns a middleware that validates session tokens
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := ""

		if authHeader == "" {
			// Allow query param for download links
			tokenString = c.Query("token")
			if tokenString == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Authorization token required",
				})
				return
			}
		} else {
			// Accept "Bearer <token>" or a bare token value
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				tokenString = parts[1]
			} else {
				tokenString = authHeader
			}
		}

		user, err := verifier.VerifyToken(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set("userID", user.ID)
		c.Set("username", user.Username)
		c.Set("userRole", user.Role)

		c.Next()
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) uint {
	userID, exists := c.Get("userID")
	if !exists {
		return 0
	}
	return userID.(uint)
}

// GetUserRole extracts the user role from the Gin context
func GetUserRole(c *gin.Context) string {
	role, exists := c.Get("userRole")
	if !exists {
		return ""
	}
	return role.(string)
}

// IsAdmin checks if the current user is an admin
func IsAdmin(c *gin.Context) bool {
	return GetUserRole(c) == models.RoleAdmin
}

// RequireAdmin returns a middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin privileges required",
			})
			return
		}
		c.Next()
	}
}
