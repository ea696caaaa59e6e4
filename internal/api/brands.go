// internal/api/brands.go
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TayyabArif/Firtz/internal/models"
	"github.com/TayyabArif/Firtz/internal/repo"
)

type deleteQueryRequest struct {
	Query    string `json:"query" binding:"required"`
	Keyword  string `json:"keyword" binding:"required"`
	Category string `json:"category" binding:"required"`
}

// deleteQuery handles DELETE /api/v1/brands/:brandID/queries. The
// query is matched on the exact (query, keyword, category) tuple.
func (s *Server) deleteQuery(c *gin.Context) {
	var req deleteQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	brandID := c.Param("brandID")
	brand, err := s.getOwnedBrand(c, brandID)
	if brand == nil {
		return
	}

	removed, err := s.repos.Brands.DeleteQuery(c.Request.Context(), brandID, models.Query{
		Query:    req.Query,
		Keyword:  req.Keyword,
		Category: req.Category,
	})
	if err != nil {
		s.logger.Error("failed to delete query", zap.String("brand_id", brandID), zap.Error(err))
		s.errorResponse(c, http.StatusInternalServerError, "failed to delete query")
		return
	}
	if !removed {
		s.errorResponse(c, http.StatusNotFound, "no matching query on this brand")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// getBrandAnalytics handles GET /api/v1/brands/:brandID/analytics
func (s *Server) getBrandAnalytics(c *gin.Context) {
	brandID := c.Param("brandID")
	if brand, _ := s.getOwnedBrand(c, brandID); brand == nil {
		return
	}

	analytics, err := s.repos.Analytics.GetBrandAnalytics(c.Request.Context(), brandID)
	if errors.Is(err, repo.ErrNotFound) {
		s.errorResponse(c, http.StatusNotFound, "no analytics recorded for this brand yet")
		return
	}
	if err != nil {
		s.logger.Error("failed to get analytics", zap.String("brand_id", brandID), zap.Error(err))
		s.errorResponse(c, http.StatusInternalServerError, "failed to get analytics")
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// getCompetitorAnalytics handles GET /api/v1/brands/:brandID/competitors
func (s *Server) getCompetitorAnalytics(c *gin.Context) {
	brandID := c.Param("brandID")
	if brand, _ := s.getOwnedBrand(c, brandID); brand == nil {
		return
	}

	analytics, err := s.repos.Analytics.GetCompetitorAnalytics(c.Request.Context(), brandID)
	if errors.Is(err, repo.ErrNotFound) {
		s.errorResponse(c, http.StatusNotFound, "no competitor analytics recorded for this brand yet")
		return
	}
	if err != nil {
		s.logger.Error("failed to get competitor analytics", zap.String("brand_id", brandID), zap.Error(err))
		s.errorResponse(c, http.StatusInternalServerError, "failed to get competitor analytics")
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// getOwnedBrand loads the brand and enforces ownership, writing the
// error response itself. A nil return means the response is done.
func (s *Server) getOwnedBrand(c *gin.Context, brandID string) (*models.Brand, error) {
	brand, err := s.repos.Brands.Get(c.Request.Context(), brandID)
	if errors.Is(err, repo.ErrNotFound) {
		s.errorResponse(c, http.StatusNotFound, "brand not found")
		return nil, err
	}
	if err != nil {
		s.logger.Error("failed to get brand", zap.String("brand_id", brandID), zap.Error(err))
		s.errorResponse(c, http.StatusInternalServerError, "failed to get brand")
		return nil, err
	}
	if brand.UserID != currentUser(c).UserID {
		s.errorResponse(c, http.StatusForbidden, "brand belongs to another user")
		return nil, nil
	}
	return brand, nil
}
