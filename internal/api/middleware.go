package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/TayyabArif/Firtz/internal/models"
)

const userContextKey = "authenticatedUser"

// authRequired resolves the bearer token to a user profile. Tokens are
// opaque strings matched against the user store.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.errorResponse(c, http.StatusUnauthorized, "missing or malformed authorization header")
			c.Abort()
			return
		}

		user, err := s.repos.Users.GetByToken(c.Request.Context(), token)
		if err != nil {
			s.errorResponse(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func (s *Server) adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).Admin {
			s.errorResponse(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentUser returns the profile set by authRequired. Handlers behind
// the middleware can rely on it being present.
func currentUser(c *gin.Context) *models.UserProfile {
	return c.MustGet(userContextKey).(*models.UserProfile)
}
