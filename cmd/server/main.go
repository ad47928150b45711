package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forum-server/internal/config"
	"forum-server/internal/database"
	"forum-server/internal/handler"
	"forum-server/internal/interfaces"
	"forum-server/internal/logger"
	"forum-server/internal/messaging"
	"forum-server/internal/middleware"
	"forum-server/internal/realtime"
	"forum-server/internal/service"
	"forum-server/pkg/migration"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	migrateOnly := flag.Bool("migrate-only", false, "apply migrations and exit")
	migrateDown := flag.Bool("migrate-down", false, "roll back every migration and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding}
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)
	zlog := logger.NewZerolog(logCfg)
	log.Info("Configuration loaded", zap.String("env", cfg.Env), zap.String("logLevel", cfg.LogLevel))

	// --- Migrations ---
	migrator := migration.NewMigrator(migration.Config{
		DatabaseURL:    cfg.DatabaseURL(),
		MigrationsFS:   database.MigrationsFS,
		MigrationsPath: database.MigrationsPath,
	}, zlog)
	if *migrateDown {
		if err := migrator.Down(); err != nil {
			log.Fatal("Failed to roll back migrations", zap.Error(err))
		}
		return
	}

	// --- External Connections ---
	pgPool, err := setupPostgres(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()

	if err := migrator.Up(); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}
	if version, dirty, err := migrator.Version(); err == nil {
		log.Info("Database schema ready", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	if *migrateOnly {
		return
	}

	redisClient, err := setupRedis(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	// --- Event publishers ---
	var publishers []interfaces.ForumEventPublisher
	if cfg.RabbitMQURL != "" {
		mqConn, err := messaging.ConnectRabbitMQ(cfg.RabbitMQURL, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()

		rabbitPublisher, closeChannel, err := messaging.NewRabbitMQEventPublisher(mqConn, cfg.EventsExchange, log)
		if err != nil {
			log.Fatal("Failed to create event publisher", zap.Error(err))
		}
		defer func() { _ = closeChannel() }()
		publishers = append(publishers, rabbitPublisher)
		log.Info("Connected to RabbitMQ", zap.String("exchange", cfg.EventsExchange))
	} else {
		log.Info("RABBITMQ_URL not set, forum events are not published to a broker")
	}

	var hub *realtime.Hub
	if cfg.RealtimeEnabled {
		hub = realtime.NewHub(zlog)
		go hub.Run(appCtx)
		publishers = append(publishers, hub)
	}
	var publisher interfaces.ForumEventPublisher = messaging.NoopPublisher{}
	if len(publishers) > 0 {
		publisher = messaging.NewFanoutPublisher(publishers...)
	}

	// --- Dependency Injection ---
	txHelper := database.NewTransactionHelper(pgPool, log)
	topicRepo := database.NewPgTopicRepository(log)
	postRepo := database.NewPgPostRepository(log)
	userRepo := database.NewPgUserRepository(log)
	tokenRepo := database.NewRedisTokenRepository(redisClient, log)
	topicCache := database.NewRedisTopicCache(redisClient, cfg.LatestTopicsTTL, log)

	topicService := service.NewTopicService(pgPool, txHelper, topicRepo, postRepo, topicCache, publisher, log)
	postService := service.NewPostService(pgPool, txHelper, postRepo, topicRepo, publisher, log)
	userService := service.NewUserService(pgPool, txHelper, userRepo, tokenRepo, topicCache, publisher, log)
	authService := service.NewAuthService(service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		Issuer:         cfg.JWTIssuer,
		AccessTokenTTL: cfg.AccessTokenTTL,
	}, tokenRepo, log)

	forumHandler := handler.NewForumHandler(topicService, postService, userService, authService, log)

	rateLimitStore := rateli.RedisStore(&rateli.RedisOptions{
		RedisClient: redisClient,
		Rate:        cfg.AuthRateLimitWindow,
		Limit:       cfg.AuthRateLimit,
	})
	rateLimitMiddleware := rateli.RateLimiter(rateLimitStore, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			log.Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status": "error",
				"error": gin.H{
					"code":    http.StatusTooManyRequests,
					"message": "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
				},
			})
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.GinZapLogger(log))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.GetAllowedOrigins()
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := newHealthHandler(log,
		healthCheck{name: "postgres", ping: pgPool.Ping},
		healthCheck{name: "redis", ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
	)
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	forumHandler.RegisterRoutes(router, rateLimitMiddleware)
	if hub != nil {
		wsHandler := realtime.NewWebSocketHandler(hub, cfg.GetAllowedOrigins(), zlog)
		router.GET("/ws/topics/:id", wsHandler.ServeWS)
	}

	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	stopApp()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")
}
