// internal/api/server.go
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TayyabArif/Firtz/internal/config"
	"github.com/TayyabArif/Firtz/internal/repo"
	"github.com/TayyabArif/Firtz/services"
)

// Server is the HTTP surface over the job orchestrator and stores.
type Server struct {
	cfg    *config.Config
	repos  *repo.Manager
	orch   services.Orchestrator
	logger *zap.Logger
	engine *gin.Engine
}

func NewServer(cfg *config.Config, repos *repo.Manager, orch services.Orchestrator, logger *zap.Logger) *Server {
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:    cfg,
		repos:  repos,
		orch:   orch,
		logger: logger,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/", s.root)
	s.engine.GET("/health", s.health)

	v1 := s.engine.Group("/api/v1")
	v1.Use(s.authRequired())
	{
		v1.POST("/jobs", s.startJob)
		v1.GET("/jobs/:jobID", s.getJob)
		v1.DELETE("/brands/:brandID/queries", s.deleteQuery)
		v1.GET("/brands/:brandID/analytics", s.getBrandAnalytics)
		v1.GET("/brands/:brandID/competitors", s.getCompetitorAnalytics)

		admin := v1.Group("/admin")
		admin.Use(s.adminRequired())
		{
			admin.GET("/users", s.listUsers)
			admin.POST("/users/:userID/credits", s.addCredits)
		}
	}
}

// Engine exposes the router for the HTTP server and tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) root(c *gin.Context) {
	c.JSON(200, gin.H{"service": "firtz", "status": "running"})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "healthy"})
}
