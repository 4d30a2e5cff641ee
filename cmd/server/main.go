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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/video-sharing-platform/internal/breaker"
	"github.com/yourusername/video-sharing-platform/internal/cache"
	"github.com/yourusername/video-sharing-platform/internal/config"
	"github.com/yourusername/video-sharing-platform/internal/database"
	"github.com/yourusername/video-sharing-platform/internal/kafka"
	"github.com/yourusername/video-sharing-platform/internal/logger"
	"github.com/yourusername/video-sharing-platform/internal/middleware"
	"github.com/yourusername/video-sharing-platform/internal/repository"
	"github.com/yourusername/video-sharing-platform/internal/rest"
	"github.com/yourusername/video-sharing-platform/internal/service"
	"github.com/yourusername/video-sharing-platform/internal/storage"
)

const (
	serviceName    = "video-sharing-platform"
	serviceVersion = "1.0.0"

	kafkaMaxRetries   = 3
	kafkaEmitTimeout  = 5 * time.Second
	minioConnectTries = 3
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to MongoDB
	mongodb, err := database.NewMongoDB(cfg.MongoURI, cfg.MongoDatabase, log)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongodb.Close(); err != nil {
			log.Errorf("Error closing MongoDB: %v", err)
		}
	}()

	// Initialize repositories
	userRepo := repository.NewUserRepository(mongodb.Database, cfg.QueryTimeout)
	videoRepo := repository.NewVideoRepository(mongodb.Database, cfg.QueryTimeout)
	tweetRepo := repository.NewTweetRepository(mongodb.Database, cfg.QueryTimeout)
	commentRepo := repository.NewCommentRepository(mongodb.Database, cfg.QueryTimeout)
	likeRepo := repository.NewLikeRepository(mongodb.Database, cfg.QueryTimeout)
	subscriptionRepo := repository.NewSubscriptionRepository(mongodb.Database, cfg.QueryTimeout)
	playlistRepo := repository.NewPlaylistRepository(mongodb.Database, cfg.QueryTimeout)

	log.Info("Creating MongoDB indexes...")
	if err := database.EnsureIndexes(context.Background(), log,
		userRepo, videoRepo, tweetRepo, commentRepo, likeRepo, subscriptionRepo, playlistRepo,
	); err != nil {
		log.Fatalf("Failed to create MongoDB indexes: %v", err)
	}

	// Initialize Redis cache
	var redisCache *cache.RedisCache
	if cfg.RedisEnabled {
		redisCache, err = cache.NewRedisCache(
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			cfg.RedisMaxRetries,
			cfg.RedisPoolSize,
			cfg.RedisMinIdleConns,
			log,
			true,
		)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Info("Redis connected successfully")
	} else {
		log.Warn("Redis is disabled, access tokens stay valid until expiry after logout")
		redisCache, _ = cache.NewRedisCache("", "", 0, 0, 0, 0, log, false)
	}
	defer redisCache.Close()

	// Initialize media storage
	objectStore := newObjectStore(cfg, log)
	mediaBreaker := breaker.New("media-storage", cfg.CircuitBreakerMaxReq, cfg.CircuitBreakerTimeout, log)
	mediaService := service.NewMediaService(objectStore, mediaBreaker, cfg.MaxUploadBytes, log)

	// Initialize Kafka producer
	var publisher kafka.Publisher = kafka.NoopPublisher{}
	if cfg.KafkaEnabled {
		log.WithFields(logrus.Fields{
			"brokers": cfg.KafkaBrokers,
			"topic":   cfg.KafkaTopic,
		}).Info("Initializing Kafka producer...")
		publisher = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, kafkaMaxRetries, log)
	} else {
		log.Warn("Kafka is disabled, activity events are dropped")
	}
	defer publisher.Close()
	eventBreaker := breaker.New("activity-events", cfg.CircuitBreakerMaxReq, cfg.CircuitBreakerTimeout, log)
	emitter := kafka.NewEmitter(publisher, eventBreaker, kafkaEmitTimeout, log)

	// Initialize services
	jwtService := service.NewJWTService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	authService := service.NewAuthService(userRepo, jwtService, redisCache, log)
	passwordService := service.NewPasswordService()
	dashboardService := service.NewDashboardService(videoRepo, subscriptionRepo)

	cookies := rest.CookieConfig{
		Secure:        cfg.CookieSecure,
		AccessMaxAge:  cfg.AccessTokenExpiry,
		RefreshMaxAge: cfg.RefreshTokenExpiry,
	}
	handlers := rest.Handlers{
		Users:         rest.NewUserHandlers(userRepo, authService, passwordService, mediaService, emitter, cookies, log),
		Videos:        rest.NewVideoHandlers(videoRepo, userRepo, commentRepo, likeRepo, playlistRepo, mediaService, emitter, log),
		Tweets:        rest.NewTweetHandlers(tweetRepo, userRepo, likeRepo, log),
		Comments:      rest.NewCommentHandlers(commentRepo, videoRepo, likeRepo, log),
		Likes:         rest.NewLikeHandlers(likeRepo, videoRepo, commentRepo, tweetRepo, emitter, log),
		Subscriptions: rest.NewSubscriptionHandlers(subscriptionRepo, userRepo, emitter, log),
		Playlists:     rest.NewPlaylistHandlers(playlistRepo, videoRepo, userRepo, log),
		Dashboard:     rest.NewDashboardHandlers(dashboardService, videoRepo, log),
		Health: rest.NewHealthHandlers(serviceName, serviceVersion,
			map[string]rest.HealthChecker{"mongodb": mongodb},
			map[string]rest.HealthChecker{"redis": redisCache},
		),
	}

	router := newRouter(cfg, log, handlers, middleware.NewAuthenticator(authService, userRepo, log))

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServiceHost, cfg.ServicePort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	go func() {
		log.WithField("address", httpServer.Addr).Info("Video platform API starting...")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down video platform API...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error shutting down HTTP server: %v", err)
	}

	log.Info("Video platform API stopped successfully")
}

func newRouter(cfg *config.Config, log *logrus.Logger, handlers rest.Handlers, auth *middleware.Authenticator) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes, cfg.MaxUploadBytes))
	router.Use(middleware.ErrorHandler(log))
	router.NoRoute(middleware.NotFound())

	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authLimiter := middleware.NewRateLimiter(cfg.AuthRatePerMinute, time.Minute, cfg.AuthRateBurst)
	rest.RegisterRoutes(router.Group("/api/v1"), handlers, auth, authLimiter.Middleware())

	return router
}

// newObjectStore connects to MinIO with retries. The API starts without
// media storage when MinIO is disabled or unreachable.
func newObjectStore(cfg *config.Config, log *logrus.Logger) service.ObjectStore {
	if !cfg.MinioEnabled {
		log.Warn("MinIO is disabled, media uploads will be rejected")
		return service.DisabledObjectStore{}
	}

	var lastErr error
	for i := 0; i < minioConnectTries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		minioStorage, err := storage.NewMinioStorage(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioPublicURL, cfg.MinioUseSSL, log)
		cancel()
		if err == nil {
			log.Info("MinIO storage initialized successfully")
			return minioStorage
		}
		lastErr = err
		log.Warnf("Failed to initialize MinIO storage (attempt %d/%d): %v", i+1, minioConnectTries, err)
		if i < minioConnectTries-1 {
			time.Sleep(5 * time.Second)
		}
	}

	log.WithError(lastErr).Warn("Starting without MinIO storage, media uploads will be rejected")
	return service.DisabledObjectStore{}
}
