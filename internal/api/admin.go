// internal/api/admin.go
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TayyabArif/Firtz/internal/repo"
)

// listUsers handles GET /api/v1/admin/users
func (s *Server) listUsers(c *gin.Context) {
	users, err := s.repos.Users.List(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		s.errorResponse(c, http.StatusInternalServerError, "failed to list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

type addCreditsRequest struct {
	Amount int    `json:"amount" binding:"required"`
	Reason string `json:"reason"`
}

// addCredits handles POST /api/v1/admin/users/:userID/credits
func (s *Server) addCredits(c *gin.Context) {
	var req addCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Amount <= 0 {
		s.errorResponse(c, http.StatusBadRequest, "amount must be positive")
		return
	}

	userID := c.Param("userID")
	profile, err := s.repos.Users.AddCredits(c.Request.Context(), userID, req.Amount)
	if errors.Is(err, repo.ErrNotFound) {
		s.errorResponse(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to add credits", zap.String("user_id", userID), zap.Error(err))
		s.errorResponse(c, http.StatusInternalServerError, "failed to add credits")
		return
	}

	s.logger.Info("credits granted",
		zap.String("admin_id", currentUser(c).UserID),
		zap.String("user_id", userID),
		zap.Int("amount", req.Amount),
		zap.String("reason", req.Reason))
	c.JSON(http.StatusOK, profile)
}
