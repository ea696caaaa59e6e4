package api

import "github.com/gin-gonic/gin"

func (s *Server) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// errorWithCode adds a machine-readable code for clients that branch on
// the failure kind rather than the message.
func (s *Server) errorWithCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}
