// Package httpapi is the HTTP surface of the service: account registration
// and session checks, the credit-gated lookup endpoints, the admin dual of
// the bot commands, and the static frontend.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"deeptracex/internal/config"
	"deeptracex/internal/services"
)

// Server is the HTTP API server
type Server struct {
	cfg      *config.Config
	engine   *gin.Engine
	http     *http.Server
	accounts *services.AccountService
	gate     *services.LookupGate
	admin    *services.AdminService
	qr       *services.QRService
	logger   *logrus.Logger
}

// NewServer creates the HTTP server and wires up all routes
func NewServer(
	cfg *config.Config,
	accounts *services.AccountService,
	gate *services.LookupGate,
	admin *services.AdminService,
	qr *services.QRService,
	logger *logrus.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		accounts: accounts,
		gate:     gate,
		admin:    admin,
		qr:       qr,
		logger:   logger,
	}

	s.engine.Use(s.requestLogger())
	s.registerRoutes()

	s.http = &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", s.handleRegister)
	auth.POST("/check", s.handleCheckAuth)
	auth.POST("/logout", s.handleLogout)
	auth.GET("/bindqr", s.handleBindQR)

	api.POST("/credits/check", s.handleCheckCredits)

	lookups := api.Group("/lookup", s.requireAPIKey())
	lookups.POST("/:type", s.handleLookup)

	admin := api.Group("/admin", s.requireAPIKey())
	admin.POST("/users", s.handleAdminUsers)
	admin.POST("/history", s.handleAdminHistory)
	admin.POST("/ban", s.handleAdminBan)
	admin.POST("/unban", s.handleAdminUnban)
	admin.POST("/addcredit", s.handleAdminAddCredit)
	admin.POST("/rmcredit", s.handleAdminRemoveCredit)
	admin.POST("/reset", s.handleAdminReset)

	if s.cfg.Server.StaticDir != "" {
		s.engine.StaticFile("/", s.cfg.Server.StaticDir+"/index.html")
		s.engine.Static("/static", s.cfg.Server.StaticDir)
	}
}

// Start serves HTTP until the listener fails or Shutdown is called
func (s *Server) Start() error {
	s.logger.Infof("HTTP API listening on %s", s.cfg.Server.ListenAddr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Engine exposes the router for tests
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
