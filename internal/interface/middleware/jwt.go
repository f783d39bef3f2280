package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tourism-booking-api/pkg/response"
)

const CtxUserIDKey = "userID"

// TokenVerifier resolves a bearer token to a user id. *application.AuthService satisfies it.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// JWTAuth validates the bearer token and injects the user ID into the context.
func JWTAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "No token provided", "", nil)
			return
		}
		userID, err := v.VerifyToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid token", "", nil)
			return
		}
		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by JWTAuth.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
