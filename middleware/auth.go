package middleware

import (
	"strings"

	"reservas/response"
	"reservas/services"
	"reservas/types"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// AuthMiddleware verifies the bearer token and stores the caller's Session
func AuthMiddleware(secret string, roles ...int) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		session, err := services.ParseToken(tokenString, secret)
		if err != nil {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		if len(roles) > 0 && !hasRole(session.Role, roles) {
			response.Forbidden(c)
			c.Abort()
			return
		}

		session.RequestID = c.GetString(requestIDKey)
		c.Set(sessionKey, session)
		c.Set("userID", session.UserID)
		c.Set("userRole", session.Role)
		c.Next()
	}
}

func hasRole(role int, roles []int) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleMiddleware restricts a group to roles, after AuthMiddleware
func RoleMiddleware(roles ...int) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("userRole")
		if !exists {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		if !hasRole(userRole.(int), roles) {
			response.Forbidden(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetSession returns the Session set by AuthMiddleware
func GetSession(c *gin.Context) types.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(types.Session); ok {
			return s
		}
	}
	return types.Session{RequestID: c.GetString(requestIDKey)}
}

// SetSession is used by handlers mounted without AuthMiddleware in tests
func SetSession(session types.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionKey, session)
		c.Set("userID", session.UserID)
		c.Set("userRole", session.Role)
		c.Next()
	}
}

// ErrorHandler renders errors pushed with c.Error that no handler answered
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			response.ServerError(c)
		}
	}
}
