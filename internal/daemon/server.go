// Package daemon provides the local HTTP server that catches login
// redirects and exposes session state to the CLI and the browser.
package daemon

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sigil-io/agent/internal/common"
	"github.com/sigil-io/agent/internal/config"
	"github.com/sigil-io/agent/internal/models"
	"github.com/sigil-io/agent/internal/sessions"
)

//go:embed static/*
var staticFiles embed.FS

// Budget for the callback endpoints, which accept unauthenticated
// requests from the browser.
const (
	callbackRateLimit = 5.0
	callbackRateBurst = 10
)

func NewServer(cfg *config.Config, manager *sessions.Manager) *Server {

	// Create template functions
	funcMap := template.FuncMap{
		"toJSON": func(v any) string {
			jsonBytes, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return fmt.Sprintf("Error: %v", err)
			}
			return string(jsonBytes)
		},
	}

	// Parse the templates with custom functions
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(staticFiles, "static/*.html")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to parse templates")
	}

	// Create a new server instance with the provided configuration
	server := &Server{
		Config:         cfg,
		Manager:        manager,
		TemplateEngine: tmpl,
		StartTime:      time.Now().UTC(),
		limiter:        NewRateLimiter(callbackRateLimit, callbackRateBurst),
	}

	return server
}

// Server represents the web service that handles redirect callbacks and
// local status requests
type Server struct {
	Config           *config.Config
	Manager          *sessions.Manager
	TemplateEngine   *template.Template
	StartTime        time.Time
	TotalRequests    int64
	CallbackRequests int64
	limiter          *RateLimiter
	server           *http.Server
}

func (s *Server) GetConfig() *config.Config {
	return s.Config
}

func (s *Server) GetManager() *sessions.Manager {
	return s.Manager
}

func (s *Server) GetVersion() string {
	return common.GetVersion()
}

func (s *Server) GetTemplateEngine() *template.Template {
	return s.TemplateEngine
}

func (s *Server) GetTemplateData(c *gin.Context) config.TemplateData {

	status := "Signed out"

	sessionStatus := s.Manager.Status()
	if sessionStatus.Authorized {
		status = "Authorized"
	} else if sessionStatus.Active {
		status = "Active"
	}

	return config.TemplateData{
		Config:      s.Config,
		ServiceName: "Sigil Agent",
		Version:     s.GetVersion(),
		Status:      status,
		Uptime:      common.FormatDurationRemaining(time.Since(s.StartTime)),
	}
}

// Start initializes and starts the web service
func (s *Server) Start() error {
	// Set Gin mode based on configuration
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Add middleware
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(
		func(c *gin.Context, err any) {

			logrus.WithError(err.(error)).Error("Recovered from panic")

			foundError, ok := err.(error)

			if !ok {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			}

			// If the client accepts html then return error.html otherwise,
			// return the json error

			s.getErrorPage(c, http.StatusInternalServerError, "Internal Server Error", foundError)
		},
	))
	router.Use(correlationMiddleware())
	router.Use(s.requestCounterMiddleware())

	allowedOrigins := []string{
		s.Config.GetLocalServerUrl(),
	}

	if len(s.Config.GetAuthBaseUrl()) > 0 {
		allowedOrigins = append(allowedOrigins, s.Config.GetAuthBaseUrl())
	}

	allowedOrigins = append(allowedOrigins,
		s.Config.Server.Security.CORS.AllowedOrigins...)

	// Configured origin lists may carry empty entries
	allowedOrigins = common.FilterEmpty(allowedOrigins...)

	logrus.WithFields(logrus.Fields{
		"allowedOrigins": allowedOrigins,
	}).Debugln("CORS configuration")

	router.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		// Configured origins may carry a wildcard subdomain
		AllowWildcard: true,
		AllowHeaders: []string{
			"Origin",
			"Content-Length",
			"Content-Type",
			"Authorization",
			"Accept",
			"X-Requested-With",
		},
		AllowCredentials: false,
	}))

	// Set HTML template engine
	router.SetHTMLTemplate(s.TemplateEngine)

	// Setup routes
	s.setupRoutes(router)

	// Start server
	addr := s.Config.GetServerAddress()
	fmt.Printf("Starting web service on %s\n", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  s.Config.Server.Limits.ReadTimeout,
		WriteTimeout: s.Config.Server.Limits.WriteTimeout,
		IdleTimeout:  s.Config.Server.Limits.IdleTimeout,
	}

	// Store server reference for shutdown
	s.server = server

	// Channel to capture startup errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		if err := server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	// Wait a moment to see if the server fails to start
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("failed to start server: %v", err)
		}
		// Server shutdown gracefully
		return nil
	case <-time.After(100 * time.Millisecond):
		// Server started successfully
		fmt.Printf("Web service started successfully on %s\n", addr)
		return nil
	}
}

func (s *Server) Stop() {
	s.limiter.Stop()

	if s.server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.Println("Server Shutdown:", err)
	}
	log.Println("Server exiting")
}

// setupRoutes configures all the HTTP routes
func (s *Server) setupRoutes(router *gin.Engine) {

	router.GET("/styles.css", s.getStyle)

	// Health endpoint
	router.GET("/health", s.healthHandler)

	// Metrics endpoint
	router.GET("/metrics", s.metricsHandler)

	// Serve the landing page at root
	router.GET("/", s.getIndexPage)

	// The browser lands here after the provider redirects; the page
	// hands the full URL, fragment included, to the completion endpoint
	router.GET("/callback", s.limiter.Middleware(), s.getCallbackPage)
	router.POST("/callback/complete", s.limiter.Middleware(), s.postCallbackComplete)

	router.GET("/status", s.getStatus)
	router.GET("/logs", s.getLogsPage)
}

// healthHandler handles the health check endpoint
func (s *Server) healthHandler(c *gin.Context) {
	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.GetVersion(),
	}

	c.JSON(http.StatusOK, response)
}

// metricsHandler handles the metrics endpoint
func (s *Server) metricsHandler(c *gin.Context) {
	uptime := time.Since(s.StartTime)

	metrics := models.MetricsInfo{
		Uptime:           uptime.String(),
		TotalRequests:    atomic.LoadInt64(&s.TotalRequests),
		CallbackRequests: atomic.LoadInt64(&s.CallbackRequests),
	}

	c.JSON(http.StatusOK, metrics)
}

func (s *Server) getStyle(c *gin.Context) {
	c.FileFromFS("static/styles.css", http.FS(staticFiles))
}
