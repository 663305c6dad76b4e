package routes

import (
	"log"

	"rental-backend/internal/api/handlers"
	"rental-backend/internal/api/middleware"
	"rental-backend/internal/config"
	"rental-backend/internal/repository"
	"rental-backend/internal/services"
	"rental-backend/pkg/cache"
	"rental-backend/pkg/database"
	"rental-backend/pkg/ratelimit"
	"rental-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

func SetupRoutes(router *gin.Engine, db *mongo.Database, redisClient *redis.Client, cfg *config.Config) {
	// Initialize repositories. The atomic booking path needs both the config
	// flag and a deployment that actually supports transactions.
	useTransactions := cfg.MongoTransactions && database.SupportsTransactions(db)
	if cfg.MongoTransactions && !useTransactions {
		log.Println("Mongo transactions requested but unsupported by deployment, using plain check-then-insert")
	}

	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	bookingRepo := repository.NewBookingRepository(db, useTransactions)

	// Initialize services
	estimator := services.NewRideEstimator(services.EstimatorConfig{
		AverageSpeedKmph:  cfg.Ride.AverageSpeedKmph,
		RoadPaddingFactor: cfg.Ride.RoadPaddingFactor,
		FallbackHours:     cfg.Ride.FallbackHours,
		MinimumHours:      cfg.Ride.MinimumHours,
	})

	authService := services.NewAuthService(userRepo)
	vehicleService := services.NewVehicleService(vehicleRepo, bookingRepo)
	availabilityService := services.NewAvailabilityService(vehicleRepo, bookingRepo, estimator)
	bookingService := services.NewBookingService(bookingRepo, vehicleRepo, estimator)

	// Wire the cache when Redis is reachable; the services run uncached
	// otherwise.
	if redisClient != nil && redisClient.IsConnected() {
		cacheManager := cache.NewDefaultCacheManager(redisClient)
		vehicleService.SetCacheManager(cacheManager)
		availabilityService.SetCacheManager(cacheManager)
		bookingService.SetCacheManager(cacheManager)
	}

	// Rate limiting: shared state via Redis when available, per-process
	// buckets otherwise.
	rateLimitConfig := ratelimit.DefaultConfig()
	var limiter ratelimit.RateLimiter
	if redisClient != nil && redisClient.IsConnected() {
		redisLimiter := ratelimit.NewRedisRateLimiter(redisClient.GetClient(), rateLimitConfig)
		if err := redisLimiter.LoadCustomLimits(); err != nil {
			log.Printf("Failed to load custom rate limits: %v", err)
		}
		limiter = redisLimiter
	} else {
		limiter = ratelimit.NewMemoryRateLimiter(rateLimitConfig)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService, availabilityService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	healthHandler := handlers.NewHealthHandler(db, redisClient)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(limiter, rateLimitConfig))

	api.GET("/health", healthHandler.HealthCheck)

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	// Availability search is public: customers browse before logging in
	api.GET("/vehicles/available", vehicleHandler.GetAvailableVehicles)
	api.GET("/vehicles", vehicleHandler.GetVehicles)
	api.GET("/vehicles/:id", vehicleHandler.GetVehicle)

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/auth/refresh", authHandler.RefreshToken)

		// Vehicle management
		vehicles := protected.Group("/vehicles")
		vehicles.Use(middleware.RequireRole("admin"))
		{
			vehicles.POST("", vehicleHandler.CreateVehicle)
			vehicles.PUT("/:id", vehicleHandler.UpdateVehicle)
			vehicles.DELETE("/:id", vehicleHandler.DeleteVehicle)
		}

		// Bookings
		bookings := protected.Group("/bookings")
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("/my", bookingHandler.GetMyBookings)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
			bookings.PATCH("/:id/status", bookingHandler.UpdateBookingStatus)
		}
	}
}
