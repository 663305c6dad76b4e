package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	MongoURI       string
	JWTSecret      string
	JWTExpiry      string
	AllowedOrigins []string
	Redis          RedisConfig
	Ride           RideConfig
	// MongoTransactions enables the atomic overlap-check-and-insert path.
	// Requires a replica set deployment.
	MongoTransactions bool
	// ReconcileInterval controls how often stale availability flags and
	// overdue bookings are swept.
	ReconcileInterval time.Duration
}

type RedisConfig struct {
	URL          string
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	RetryDelay   time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
}

// RideConfig carries the duration-estimation constants.
type RideConfig struct {
	AverageSpeedKmph  float64
	RoadPaddingFactor float64
	FallbackHours     float64
	MinimumHours      float64
}

func Load() *Config {
	// load .env variable
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI environment variable is not set")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}

	return &Config{
		Port:              port,
		MongoURI:          mongoURI,
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTExpiry:         os.Getenv("JWT_EXPIRY"),
		AllowedOrigins:    strings.Split(allowedOrigins, ","),
		Redis:             loadRedisConfig(),
		Ride:              loadRideConfig(),
		MongoTransactions: envBool("MONGO_TRANSACTIONS", false),
		ReconcileInterval: envDuration("RECONCILE_INTERVAL", 5*time.Minute),
	}
}

func loadRedisConfig() RedisConfig {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	return RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		Host:         host,
		Port:         port,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           envInt("REDIS_DB", 0),
		PoolSize:     envInt("REDIS_POOL_SIZE", 10),
		MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
		MaxRetries:   envInt("REDIS_MAX_RETRIES", 3),
		RetryDelay:   envDuration("REDIS_RETRY_DELAY", 100*time.Millisecond),
		DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		PoolTimeout:  envDuration("REDIS_POOL_TIMEOUT", 4*time.Second),
	}
}

func loadRideConfig() RideConfig {
	return RideConfig{
		AverageSpeedKmph:  envFloat("RIDE_AVERAGE_SPEED_KMPH", 50),
		RoadPaddingFactor: envFloat("RIDE_ROAD_PADDING_FACTOR", 1.4),
		FallbackHours:     envFloat("RIDE_FALLBACK_HOURS", 8),
		MinimumHours:      envFloat("RIDE_MINIMUM_HOURS", 0.5),
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
