package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Service configuration constants
const (
	DefaultQueryTimeout          = 5 * time.Second
	DefaultShutdownTimeout       = 10 * time.Second
	DefaultReadTimeout           = 15 * time.Second
	DefaultWriteTimeout          = 60 * time.Second
	DefaultIdleTimeout           = 120 * time.Second
	DefaultAccessTokenExpiry     = 24 * time.Hour
	DefaultRefreshTokenExpiry    = 10 * 24 * time.Hour
	DefaultMaxBodyBytes          = 16 * 1024
	DefaultMaxUploadBytes        = 512 * 1024 * 1024
	DefaultAuthRatePerMinute     = 30
	DefaultAuthRateBurst         = 10
	DefaultCircuitBreakerMaxReq  = 3
	DefaultCircuitBreakerTimeout = 30 * time.Second
	// Redis defaults
	DefaultRedisMaxRetries   = 3
	DefaultRedisPoolSize     = 10
	DefaultRedisMinIdleConns = 5
)

type Config struct {
	ServicePort        string
	ServiceHost        string
	CORSOrigins        []string
	MongoURI           string
	MongoDatabase      string
	QueryTimeout       time.Duration
	ShutdownTimeout    time.Duration
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	Environment        string
	LogLevel           string
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration
	CookieSecure       bool
	MaxBodyBytes       int64
	MaxUploadBytes     int64
	AuthRatePerMinute  int
	AuthRateBurst      int
	// Media storage
	MinioEnabled          bool
	MinioEndpoint         string
	MinioPublicURL        string
	MinioAccessKey        string
	MinioSecretKey        string
	MinioBucket           string
	MinioUseSSL           bool
	CircuitBreakerMaxReq  uint32
	CircuitBreakerTimeout time.Duration
	// Redis Configuration
	RedisEnabled      bool
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisMaxRetries   int
	RedisPoolSize     int
	RedisMinIdleConns int
	// Kafka Configuration
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	mongoURI := getEnv("MONGO_URI", "")
	if mongoURI == "" {
		return nil, errors.New("MONGO_URI is required environment variable")
	}

	accessSecret := getEnv("ACCESS_TOKEN_SECRET", "")
	refreshSecret := getEnv("REFRESH_TOKEN_SECRET", "")
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required environment variables")
	}

	minioEnabled := getEnvBool("MINIO_ENABLED", true)
	minioAccessKey := getEnv("MINIO_ACCESS_KEY", "")
	minioSecretKey := getEnv("MINIO_SECRET_KEY", "")
	if minioEnabled && (minioAccessKey == "" || minioSecretKey == "") {
		return nil, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENABLED is true")
	}

	minioEndpoint := getEnv("MINIO_ENDPOINT", "localhost:9000")
	minioUseSSL := getEnvBool("MINIO_USE_SSL", false)
	minioBucket := getEnv("MINIO_BUCKET", "media")

	return &Config{
		ServicePort:        getEnv("PORT", "8000"),
		ServiceHost:        getEnv("SERVICE_HOST", "0.0.0.0"),
		CORSOrigins:        splitList(getEnv("CORS_ORIGIN", "http://localhost:3000")),
		MongoURI:           mongoURI,
		MongoDatabase:      getEnv("MONGO_DATABASE", "videotube"),
		QueryTimeout:       getEnvDuration("QUERY_TIMEOUT", DefaultQueryTimeout),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),
		ReadTimeout:        getEnvDuration("HTTP_READ_TIMEOUT", DefaultReadTimeout),
		WriteTimeout:       getEnvDuration("HTTP_WRITE_TIMEOUT", DefaultWriteTimeout),
		IdleTimeout:        getEnvDuration("HTTP_IDLE_TIMEOUT", DefaultIdleTimeout),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		AccessTokenSecret:  accessSecret,
		AccessTokenExpiry:  getEnvDuration("ACCESS_TOKEN_EXPIRY", DefaultAccessTokenExpiry),
		RefreshTokenSecret: refreshSecret,
		RefreshTokenExpiry: getEnvDuration("REFRESH_TOKEN_EXPIRY", DefaultRefreshTokenExpiry),
		CookieSecure:       getEnvBool("COOKIE_SECURE", true),
		MaxBodyBytes:       getEnvInt64("MAX_BODY_BYTES", DefaultMaxBodyBytes),
		MaxUploadBytes:     getEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		AuthRatePerMinute:  getEnvInt("RATE_LIMIT_AUTH_PER_MINUTE", DefaultAuthRatePerMinute),
		AuthRateBurst:      getEnvInt("RATE_LIMIT_AUTH_BURST", DefaultAuthRateBurst),
		// Media storage
		MinioEnabled:          minioEnabled,
		MinioEndpoint:         minioEndpoint,
		MinioPublicURL:        getEnv("MINIO_PUBLIC_URL", defaultPublicURL(minioEndpoint, minioBucket, minioUseSSL)),
		MinioAccessKey:        minioAccessKey,
		MinioSecretKey:        minioSecretKey,
		MinioBucket:           minioBucket,
		MinioUseSSL:           minioUseSSL,
		CircuitBreakerMaxReq:  uint32(getEnvInt("CIRCUIT_BREAKER_MAX_REQ", DefaultCircuitBreakerMaxReq)),
		CircuitBreakerTimeout: getEnvDuration("CIRCUIT_BREAKER_TIMEOUT", DefaultCircuitBreakerTimeout),
		// Redis Configuration
		RedisEnabled:      getEnvBool("REDIS_ENABLED", false),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisMaxRetries:   getEnvInt("REDIS_MAX_RETRIES", DefaultRedisMaxRetries),
		RedisPoolSize:     getEnvInt("REDIS_POOL_SIZE", DefaultRedisPoolSize),
		RedisMinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", DefaultRedisMinIdleConns),
		// Kafka Configuration
		KafkaEnabled: getEnvBool("KAFKA_ENABLED", false),
		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "video-activity"),
	}, nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func defaultPublicURL(endpoint, bucket string, useSSL bool) string {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return scheme + "://" + endpoint + "/" + bucket
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
