// Package server wires services, handlers and middleware into the HTTP router.
package server

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"danaku/internal/config"
	_ "danaku/internal/docs" // Import swagger docs
	"danaku/internal/handlers"
	"danaku/internal/ledger"
	"danaku/internal/middleware"
	"danaku/internal/services"
)

// Deps are the long-lived components the router is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Store  ledger.Store
	Digest handlers.DigestRunner
	Health handlers.Pinger
}

// NewRouter builds the full API router.
func NewRouter(d Deps) (*gin.Engine, error) {
	cfg := d.Config

	// Services
	userService := services.NewUserService(d.DB)
	auditService := services.NewAuditService(d.DB)
	walletService := services.NewWalletService(d.DB, d.Store)
	transactionService := services.NewTransactionService(d.DB, d.Store)
	savingsService := services.NewSavingsService(d.DB, d.Store)
	reportService := services.NewReportService(d.DB)
	snapshotService := services.NewSnapshotService(d.DB)

	// Handlers
	tokens := middleware.NewTokenManagerFromConfig(cfg)
	authHandler := handlers.NewAuthHandler(userService, auditService, tokens)
	walletHandler := handlers.NewWalletHandler(walletService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	savingsHandler := handlers.NewSavingsHandler(savingsService, auditService)
	reportHandler := handlers.NewReportHandler(reportService)
	streamHandler := handlers.NewStreamHandler(d.Store, snapshotService)
	digestHandler := handlers.NewDigestHandler(d.Digest)
	healthHandler := handlers.NewHealthHandler(d.Health)

	limiter, err := middleware.NewLimiter(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(corsMiddleware(cfg.CORSAllowedOrigins))
	router.NoRoute(middleware.NotFound())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", healthHandler.Health)

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(limiter))
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(tokens), middleware.RateLimit(limiter))

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	wallets := protected.Group("/wallets")
	wallets.POST("", walletHandler.CreateWallet)
	wallets.GET("", walletHandler.ListWallets)
	wallets.GET("/:id", walletHandler.GetWallet)
	wallets.PUT("/:id", walletHandler.RenameWallet)
	wallets.PUT("/:id/archive", walletHandler.ArchiveWallet)
	wallets.DELETE("/:id", walletHandler.DeleteWallet)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("/bulk-delete", transactionHandler.BulkDeleteTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	savings := protected.Group("/savings")
	savings.POST("", savingsHandler.CreatePocket)
	savings.GET("", savingsHandler.ListPockets)
	savings.GET("/:id", savingsHandler.GetPocket)
	savings.POST("/:id/adjust", savingsHandler.AdjustPocket)
	savings.DELETE("/:id", savingsHandler.DeletePocket)

	protected.GET("/reports/summary", reportHandler.Summary)
	protected.GET("/stream", streamHandler.Stream)

	// Internal routes
	internal := v1.Group("/internal")
	internal.Use(middleware.InternalAPIKey(cfg.PipelineAPIKey))
	internal.POST("/digest/run", digestHandler.Run)

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
