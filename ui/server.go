// Package ui exposes the wizard over HTTP: a gin JSON API for the front-end
// plus a small chi router for operational endpoints.
package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maiveui/app"
	"maiveui/internal/errors"
	"maiveui/ports"
)

// Server is the wizard API server
type Server struct {
	router    *gin.Engine
	analysis  *app.AnalysisService
	export    *app.ExportService
	estimator ports.Estimator
}

// NewServer wires the API routes over the application services
func NewServer(analysis *app.AnalysisService, export *app.ExportService, estimator ports.Estimator) *Server {
	s := &Server{
		router:    gin.Default(),
		analysis:  analysis,
		export:    export,
		estimator: estimator,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the wizard API
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")

	api.POST("/upload", s.handleUpload)
	api.POST("/demo", s.handleDemoUpload)

	session := api.Group("/sessions/:id")
	session.GET("", s.handleSession)
	session.DELETE("", s.handleReset)
	session.POST("/mapping", s.handleMapping)
	session.POST("/filter", s.handleFilter)
	session.POST("/parameters", s.handleParameterEdit)
	session.GET("/options", s.handleOptions)
	session.POST("/run", s.handleRun)
	session.GET("/results", s.handleResults)
	session.GET("/export/results", s.handleExportResults)
	session.GET("/export/data", s.handleExportData)

	api.GET("/help", s.handleHelpIndex)
	api.GET("/help/:topic", s.handleHelpTopic)
}

// Start runs the API server
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// respondError maps application error codes onto HTTP statuses and renders
// the uniform error envelope the front-end expects.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidInput, errors.CodeValidationError:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeEstimatorAborted:
		// The client went away; 499 in the nginx tradition.
		status = 499
	case errors.CodeEstimatorTimeout:
		status = http.StatusGatewayTimeout
	case errors.CodeEstimatorRejected:
		status = http.StatusUnprocessableEntity
	case errors.CodeEstimatorUnreachable:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": err.Error()}})
}
