package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"absentee/adapters/charts"
	"absentee/internal/config"
	"absentee/internal/session"
	"absentee/ui/middleware"
)

//go:embed templates/*.html templates/fragments/*/*.html static/css/*
var embeddedFiles embed.FS

// uploadField is the multipart field carrying the dataset file
const uploadField = "dataset"

// Server represents the dashboard web server
type Server struct {
	router    *gin.Engine
	templates *template.Template
	sessions  *session.Store
	charts    *charts.Renderer
	config    *config.Config
	logger    *slog.Logger
}

// NewServer creates the dashboard server over a session store
func NewServer(cfg *config.Config, sessions *session.Store) (*Server, error) {
	s := &Server{
		router:   gin.New(),
		sessions: sessions,
		charts:   charts.NewRenderer(),
		config:   cfg,
		logger:   slog.With("component", "http"),
	}

	templates, err := parseTemplates(embeddedFiles)
	if err != nil {
		return nil, err
	}
	s.templates = templates

	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router for an http.Server
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware installs recovery, request logging and the embedded static files
func (s *Server) setupMiddleware() error {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(s.logger))

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	cookie := s.config.Session.CookieName

	s.router.GET("/", s.handleIndex)
	s.router.POST("/upload", s.handleUpload)
	s.router.POST("/reset", s.handleReset)

	pages := s.router.Group("/", middleware.RequireSession(s.sessions, cookie, true))
	pages.GET("/dashboard", s.handleDashboard)
	pages.GET("/report", s.handleReport)

	// Non-HTML resources answer 404 JSON instead of redirecting
	resources := s.router.Group("/", middleware.RequireSession(s.sessions, cookie, false))
	resources.GET("/api/dashboard", s.handleAPIDashboard)
	resources.GET("/charts/:file", s.handleChart)
	resources.GET("/report.md", s.handleReportMarkdown)
}
