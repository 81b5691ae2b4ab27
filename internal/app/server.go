// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"marketplace_backend/internal/assistant"
	"marketplace_backend/internal/category"
	"marketplace_backend/internal/city"
	"marketplace_backend/internal/common"
	"marketplace_backend/internal/config"
	"marketplace_backend/internal/fieldtemplate"
	"marketplace_backend/internal/firebase"
	"marketplace_backend/internal/jobs"
	"marketplace_backend/internal/listing"
	"marketplace_backend/internal/middleware"
	"marketplace_backend/internal/notification"
	"marketplace_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server holds the HTTP server and everything it serves.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	listingExpiryJob *jobs.ListingExpiryJob
}

// NewServer builds the gin engine, wires all routes and returns a ready-to-start server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	userHandler *user.Handler,
	categoryHandler *category.Handler,
	cityHandler *city.Handler,
	fieldTemplateHandler *fieldtemplate.Handler,
	listingHandler *listing.Handler,
	notificationHandler *notification.Handler,
	assistantHandler *assistant.Handler,
	listingExpiryJob *jobs.ListingExpiryJob,
	firebaseService *firebase.FirebaseService,
	userService user.Service,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(firebaseService, userService, logger.Named("AuthMiddleware"))
	adminRoleMW := middleware.RoleAuthMiddleware(common.RoleAdmin)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	// Uploaded listing images are served straight off disk.
	router.Static("/images", cfg.ImageStoragePath)

	v1 := router.Group("/api/v1")

	userHandler.RegisterRoutes(v1, authMW)
	cityHandler.RegisterRoutes(v1)
	categoryHandler.RegisterRoutes(v1, authMW, adminRoleMW)
	fieldTemplateHandler.RegisterRoutes(v1, authMW, adminRoleMW)
	listingHandler.RegisterRoutes(v1, authMW, adminRoleMW)
	notificationHandler.RegisterRoutes(v1, authMW)
	assistantHandler.RegisterRoutes(v1, authMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:       httpServer,
		router:           router,
		cfg:              cfg,
		logger:           logger,
		listingExpiryJob: listingExpiryJob,
	}, nil
}

// Start launches the expiry job and blocks serving HTTP until shutdown.
func (s *Server) Start() error {
	if s.listingExpiryJob != nil {
		if err := s.listingExpiryJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to start listing expiry job", zap.Error(err))
		}
	}

	s.logger.Info("HTTP server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("HTTP server failed", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Shutdown stops the scheduler and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.listingExpiryJob != nil {
		s.listingExpiryJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
