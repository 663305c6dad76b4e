package main

import (
	"log"

	"rental-backend/internal/api/routes"
	"rental-backend/internal/config"
	"rental-backend/internal/repository"
	"rental-backend/pkg/database"
	"rental-backend/pkg/reconcile"
	"rental-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to MongoDB
	db, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Disconnect(db.Client())

	// Ensure indexes; the overlap filter depends on the compound booking index
	vehicleRepo := repository.NewVehicleRepository(db)
	bookingRepo := repository.NewBookingRepository(db, false)
	userRepo := repository.NewUserRepository(db)
	for name, create := range map[string]func() error{
		"vehicles": vehicleRepo.CreateIndexes,
		"bookings": bookingRepo.CreateIndexes,
		"users":    userRepo.CreateIndexes,
	} {
		if err := create(); err != nil {
			log.Printf("Failed to create %s indexes: %v", name, err)
		}
	}

	// Initialize Redis client
	redisClient := redis.NewClient(cfg.Redis)
	defer redisClient.Close()

	healthStatus := redisClient.HealthCheck()
	if healthStatus.IsConnected {
		log.Printf("Redis connected successfully at %s", healthStatus.ConnectionInfo)
	} else {
		log.Printf("Redis connection failed: %s (will retry automatically)", healthStatus.Error)
	}

	// Background sweep for overdue bookings and stale availability flags
	reconciler := reconcile.NewReconciler(vehicleRepo, bookingRepo, cfg.ReconcileInterval)
	go reconciler.Start()
	defer reconciler.Stop()

	// Setup Gin router
	router := gin.Default()

	// CORS middleware
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}

	// Handle wildcard origin for development
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false // Cannot use credentials with AllowAllOrigins
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}

	router.Use(cors.New(corsConfig))

	// Setup routes
	routes.SetupRoutes(router, db, redisClient, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(router.Run(":" + cfg.Port))
}
