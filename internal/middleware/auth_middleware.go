package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Vampire-js/DAAVAT/internal/auth"
	"github.com/Vampire-js/DAAVAT/pkg/responses"
)

const (
	userIDKey = "user_id"
	emailKey  = "email"
)

// AuthMiddleware gates every document operation behind the session cookie.
// Verification is stateless; no user record is fetched. A verifier without
// a secret fails closed with 500 so a misconfigured deployment never lets
// requests through unauthenticated.
func AuthMiddleware(verifier *auth.Verifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			responses.Message(c, http.StatusUnauthorized, "Not authenticated - No cookie found")
			c.Abort()
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			if err == auth.ErrNoSecret {
				log.Println("CRITICAL: JWT secret is not configured")
				responses.Message(c, http.StatusInternalServerError, "Server configuration error")
				c.Abort()
				return
			}
			log.Printf("Token validation failed: %v", err)
			responses.Message(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id set by AuthMiddleware.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
