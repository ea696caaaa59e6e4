// internal/api/jobs.go
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TayyabArif/Firtz/internal/repo"
	"github.com/TayyabArif/Firtz/services"
)

type startJobRequest struct {
	BrandID string `json:"brandId" binding:"required"`
}

// startJob handles POST /api/v1/jobs
func (s *Server) startJob(c *gin.Context) {
	var req startJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	user := currentUser(c)
	job, err := s.orch.StartJob(c.Request.Context(), user, req.BrandID)
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, job)
	case errors.Is(err, repo.ErrInsufficientCredits):
		s.errorWithCode(c, http.StatusBadRequest, "INSUFFICIENT_CREDITS", "not enough credits to process this brand's queries")
	case errors.Is(err, services.ErrJobConflict):
		s.errorResponse(c, http.StatusConflict, "a job is already running for this brand")
	case errors.Is(err, services.ErrNoQueries):
		s.errorResponse(c, http.StatusBadRequest, "brand has no queries to process")
	case errors.Is(err, services.ErrForbidden):
		s.errorResponse(c, http.StatusForbidden, "brand belongs to another user")
	case errors.Is(err, repo.ErrNotFound):
		s.errorResponse(c, http.StatusNotFound, "brand not found")
	default:
		s.logger.Error("failed to start job",
			zap.String("brand_id", req.BrandID),
			zap.String("user_id", user.UserID),
			zap.Error(err))
		s.errorResponse(c, http.StatusInternalServerError, "failed to start job")
	}
}

// getJob handles GET /api/v1/jobs/:jobID
func (s *Server) getJob(c *gin.Context) {
	user := currentUser(c)
	job, err := s.orch.GetJob(c.Request.Context(), user.UserID, c.Param("jobID"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, job)
	case errors.Is(err, repo.ErrNotFound):
		s.errorResponse(c, http.StatusNotFound, "job not found")
	case errors.Is(err, services.ErrForbidden):
		s.errorResponse(c, http.StatusForbidden, "job belongs to another user")
	default:
		s.logger.Error("failed to get job", zap.String("job_id", c.Param("jobID")), zap.Error(err))
		s.errorResponse(c, http.StatusInternalServerError, "failed to get job")
	}
}
