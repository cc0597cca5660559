package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecommerce_api/internal/config"
	"ecommerce_api/internal/handler"
	"ecommerce_api/internal/logger"
	"ecommerce_api/internal/middleware"
	"ecommerce_api/internal/repository"
	"ecommerce_api/internal/service"
	"ecommerce_api/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logger.New(0).Fatal("failed to load config", "error", err)
	}
	log := logger.New(cfg.LogLevel)
	if envErr != nil {
		log.Info("no .env file found, relying on environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, cfg.DB, log.Logger)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	// --- Migrations ---
	if err := config.AutoMigrate(ctx, dbPool); err != nil {
		log.Fatal("failed to migrate database", "error", err)
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(utils.JWTOptions{
		AccessSecret:  cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
	hasher := utils.NewPasswordHasher(cfg.Security.BcryptCost)

	// --- Initialize Repositories ---
	store := repository.NewStore(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	categoryRepo := repository.NewCategoryRepository(dbPool)

	// --- Initialize Services ---
	authService := service.NewAuthService(store, jwtUtil, hasher, log, cfg.AdminEmail)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, log)

	// --- Initialize Handlers ---
	handler.RegisterValidators()
	resp := handler.NewResponder(log, cfg.IsDevelopment())
	authHandler := handler.NewAuthHandler(authService, resp)
	catalogHandler := handler.NewCatalogHandler(catalogService, resp)

	// --- Setup Gin Router ---
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.HTTP.CORSOrigin))

	// --- Initialize Middlewares ---
	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil)
	adminRoleMW := middleware.AdminMiddleware()

	// --- Register Routes ---
	apiGroup := router.Group("/api/" + cfg.HTTP.APIVersion)
	if cfg.HTTP.RateLimitMax > 0 {
		limiter := middleware.NewIPRateLimiter(cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitMax)
		apiGroup.Use(middleware.RateLimit(limiter))
	}
	authHandler.RegisterAuthRoutes(apiGroup, jwtAuthMW)
	catalogHandler.RegisterCatalogRoutes(apiGroup, jwtAuthMW, adminRoleMW)
	apiGroup.GET("/health", healthHandler(dbPool))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       "E-commerce API",
			"version":       cfg.HTTP.APIVersion,
			"documentation": fmt.Sprintf("/api/%s/health", cfg.HTTP.APIVersion),
		})
	})
	router.NoRoute(func(c *gin.Context) {
		resp.Fail(c, http.StatusNotFound, fmt.Sprintf("Route %s not found", c.Request.URL.Path))
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTP.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server exiting")
}

// healthHandler reports whether the database answers a ping.
func healthHandler(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Database unavailable", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Server is running",
			"db":        "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
