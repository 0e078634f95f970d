package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleHealth reports overall service health. Backends that are not
// configured are omitted; a configured backend that fails its check
// degrades the status but still returns 200, so the container health
// check only fails when the process itself is unresponsive.
func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	services := gin.H{}

	if s.store != nil {
		if err := s.store.Ping(c.Request.Context()); err != nil {
			services["database"] = "error: " + err.Error()
			status = "degraded"
		} else {
			services["database"] = "connected"
		}
	}

	if s.cache != nil {
		if err := s.cache.Ping(c.Request.Context()); err != nil {
			services["redis"] = "error: " + err.Error()
			status = "degraded"
		} else {
			services["redis"] = "connected"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  services,
	})
}
