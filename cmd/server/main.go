package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripsalama/internal/config"
	"tripsalama/internal/handlers"
	"tripsalama/internal/middleware"
	"tripsalama/internal/repositories/mongodb"
	"tripsalama/internal/services"
	"tripsalama/pkg/cache"
	"tripsalama/pkg/database"
	"tripsalama/pkg/logger"
	"tripsalama/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to mongodb")
	}
	defer db.Close()

	if err := database.EnsureIndexes(ctx, db.Database); err != nil {
		log.WithError(err).Fatal("failed to ensure indexes")
	}

	var cacheService services.CacheService
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.WithError(err).Warn("redis unavailable, caching and rate limiting disabled")
	} else {
		defer redisCache.Close()
		cacheService = services.NewCacheService(redisCache)
	}

	// Repositories
	userRepo := mongodb.NewUserRepository(db.Database)
	vehicleRepo := mongodb.NewVehicleRepository(db.Database)
	statusRepo := mongodb.NewDriverStatusRepository(db.Database)
	rideRepo := mongodb.NewRideRepository(db.Database, cacheService)
	messageRepo := mongodb.NewMessageRepository(db.Database)
	walletRepo := mongodb.NewWalletRepository(db.Database)
	txRepo := mongodb.NewTransactionRepository(db.Database)
	verificationRepo := mongodb.NewVerificationRepository(db.Database)
	sosRepo := mongodb.NewSOSRepository(db.Database)
	referralRepo := mongodb.NewReferralRepository(db.Database)

	// Services
	txRunner := services.NewMongoTxRunner(db)
	authService := services.NewAuthService(userRepo, cfg.Security.JWTSecret, log)
	walletService := services.NewWalletService(walletRepo, txRepo, rideRepo, txRunner, cfg.Payment, log)
	rideService := services.NewRideService(rideRepo, userRepo, vehicleRepo, statusRepo, walletService, log)
	driverService := services.NewDriverService(statusRepo, userRepo, log)
	vehicleService := services.NewVehicleService(vehicleRepo, log)
	chatService := services.NewChatService(messageRepo, rideRepo, log)
	verificationService := services.NewVerificationService(verificationRepo, userRepo, log)
	sosService := services.NewSOSService(sosRepo, rideRepo, log)
	referralService := services.NewReferralService(referralRepo, walletService, cfg.Payment, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	rideHandler := handlers.NewRideHandler(rideService)
	driverHandler := handlers.NewDriverHandler(driverService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	walletHandler := handlers.NewWalletHandler(walletService)
	chatHandler := handlers.NewChatHandler(chatService)
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	sosHandler := handlers.NewSOSHandler(sosService)
	referralHandler := handlers.NewReferralHandler(referralService)
	healthHandler := handlers.NewHealthHandler(db, cacheService)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.RateLimit(cacheService, cfg.Security.RateLimitPerMinute))

	if len(cfg.Security.TrustedProxies) > 0 {
		if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			log.WithError(err).Fatal("invalid trusted proxies")
		}
	}

	router.GET("/health", healthHandler.Check)

	v1 := router.Group("/api/v1")
	{
		routes.SetupAuthRoutes(v1, authHandler, cfg.Security.JWTSecret)
		routes.SetupRideRoutes(v1, rideHandler, chatHandler, cfg.Security.JWTSecret)
		routes.SetupDriverRoutes(v1, driverHandler, vehicleHandler, rideHandler, cfg.Security.JWTSecret)
		routes.SetupWalletRoutes(v1, walletHandler, cfg.Security.JWTSecret)
		routes.SetupVerificationRoutes(v1, verificationHandler, cfg.Security.JWTSecret)
		routes.SetupSOSRoutes(v1, sosHandler, cfg.Security.JWTSecret)
		routes.SetupReferralRoutes(v1, referralHandler, cfg.Security.JWTSecret)
	}

	// Sweep job: flip drivers silent for too long back to unavailable.
	go runDriverSweep(ctx, driverService, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.App.Port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}

// runDriverSweep invokes the inactivity sweep every five minutes until the
// context is cancelled.
func runDriverSweep(ctx context.Context, driverService *services.DriverService, log *logger.Logger) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if _, err := driverService.DeactivateInactive(sweepCtx); err != nil {
				log.WithError(err).Error("driver sweep failed")
			}
			cancel()
		}
	}
}
