// Package web exposes the pipeline over HTTP.
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cartridge-engine/internal/pipeline"
)

// Request and response headers.
const (
	HeaderCurrency    = "X-Currency"
	HeaderDirection   = "X-Direction"
	HeaderRequestID   = "X-Request-Id"
	HeaderBulkRequest = "X-Bulk-Request"
)

// Server is the HTTP front of a pipeline.Service.
type Server struct {
	svc    *pipeline.Service
	router *gin.Engine
}

// NewServer creates a server with every route registered.
func NewServer(svc *pipeline.Service) *Server {
	router := gin.Default()

	s := &Server{
		svc:    svc,
		router: router,
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/transform/:cartridgeId", s.handleTransform)
		api.POST("/transform/:cartridgeId/bulk", s.handleTransformBulk)
		api.GET("/cartridges", s.handleCartridges)
		api.POST("/admin/reload", s.handleReload)
	}

	return s
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until the server fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
