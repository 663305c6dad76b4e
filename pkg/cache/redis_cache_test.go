package cache

import (
	"testing"
	"time"

	"rental-backend/internal/config"
	"rental-backend/internal/models"
	"rental-backend/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestManager(t *testing.T) (*RedisCacheManager, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(config.RedisConfig{
		Host:         mr.Host(),
		Port:         mr.Port(),
		PoolSize:     5,
		MinIdleConns: 1,
		DialTimeout:  time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolTimeout:  time.Second,
	})
	t.Cleanup(func() { client.Close() })

	cfg := DefaultCacheConfig()
	cfg.KeyPrefix = "test:"
	cfg.TagPrefix = "test_tag:"

	return NewRedisCacheManager(client, cfg), mr
}

func testVehicle(name string) *models.Vehicle {
	return &models.Vehicle{
		ID:           primitive.NewObjectID(),
		Name:         name,
		CapacityKg:   1000,
		Tyres:        4,
		PricePerHour: 100,
		IsAvailable:  true,
		Location:     models.VehicleLocation{Pincode: "110001", City: "Delhi"},
	}
}

func TestVehicleCaching(t *testing.T) {
	manager, _ := newTestManager(t)

	vehicle := testVehicle("Cached Truck")

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, manager.SetVehicle(vehicle.ID.Hex(), vehicle, time.Minute))

		cached, err := manager.GetVehicle(vehicle.ID.Hex())
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.Equal(t, vehicle.Name, cached.Name)
		assert.Equal(t, vehicle.Location.Pincode, cached.Location.Pincode)
	})

	t.Run("MissIsNotAnError", func(t *testing.T) {
		cached, err := manager.GetVehicle(primitive.NewObjectID().Hex())
		require.NoError(t, err)
		assert.Nil(t, cached)
	})

	t.Run("Invalidate", func(t *testing.T) {
		require.NoError(t, manager.InvalidateVehicle(vehicle.ID.Hex()))

		cached, err := manager.GetVehicle(vehicle.ID.Hex())
		require.NoError(t, err)
		assert.Nil(t, cached)
	})
}

func TestVehicleTTL(t *testing.T) {
	manager, mr := newTestManager(t)

	vehicle := testVehicle("Expiring Truck")
	require.NoError(t, manager.SetVehicle(vehicle.ID.Hex(), vehicle, 100*time.Millisecond))

	cached, err := manager.GetVehicle(vehicle.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, cached)

	mr.FastForward(200 * time.Millisecond)

	cached, err = manager.GetVehicle(vehicle.ID.Hex())
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestAvailabilityCaching(t *testing.T) {
	manager, _ := newTestManager(t)

	vehicle := testVehicle("Search Truck")
	result := []models.AvailableVehicle{
		{Vehicle: *vehicle, EstimatedRideDurationHours: 3},
	}

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, manager.SetAvailability("search_1000_110001_1_2", result, time.Minute))

		cached, err := manager.GetAvailability("search_1000_110001_1_2")
		require.NoError(t, err)
		require.Len(t, cached, 1)
		assert.Equal(t, vehicle.Name, cached[0].Name)
		assert.Equal(t, 3.0, cached[0].EstimatedRideDurationHours)
	})

	t.Run("EmptyResultIsAValidHit", func(t *testing.T) {
		require.NoError(t, manager.SetAvailability("search_empty", []models.AvailableVehicle{}, time.Minute))

		cached, err := manager.GetAvailability("search_empty")
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.Empty(t, cached)
	})

	t.Run("MissReturnsNil", func(t *testing.T) {
		cached, err := manager.GetAvailability("search_unknown")
		require.NoError(t, err)
		assert.Nil(t, cached)
	})

	t.Run("InvalidateAvailabilityDropsAllSearches", func(t *testing.T) {
		require.NoError(t, manager.InvalidateAvailability())

		cached, err := manager.GetAvailability("search_1000_110001_1_2")
		require.NoError(t, err)
		assert.Nil(t, cached)

		cached, err = manager.GetAvailability("search_empty")
		require.NoError(t, err)
		assert.Nil(t, cached)
	})
}

func TestInvalidateVehicleDropsItsSearchResults(t *testing.T) {
	manager, _ := newTestManager(t)

	appearing := testVehicle("Appearing Truck")
	other := testVehicle("Other Truck")

	require.NoError(t, manager.SetAvailability("search_with", []models.AvailableVehicle{
		{Vehicle: *appearing},
	}, time.Minute))
	require.NoError(t, manager.SetAvailability("search_without", []models.AvailableVehicle{
		{Vehicle: *other},
	}, time.Minute))

	require.NoError(t, manager.InvalidateVehicle(appearing.ID.Hex()))

	// Search result containing the vehicle is gone
	cached, err := manager.GetAvailability("search_with")
	require.NoError(t, err)
	assert.Nil(t, cached)

	// Unrelated search result survives
	cached, err = manager.GetAvailability("search_without")
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

func TestGenericOperations(t *testing.T) {
	manager, _ := newTestManager(t)

	require.NoError(t, manager.Set("greeting", "hello", time.Minute))

	var value string
	require.NoError(t, manager.Get("greeting", &value))
	assert.Equal(t, "hello", value)

	var missing string
	require.NoError(t, manager.Get("absent", &missing))
	assert.Empty(t, missing)
}

func TestCacheStatsTracking(t *testing.T) {
	manager, _ := newTestManager(t)

	vehicle := testVehicle("Stats Truck")

	// Miss first
	_, err := manager.GetVehicle(vehicle.ID.Hex())
	require.NoError(t, err)

	stats := manager.GetCacheStats()
	assert.Equal(t, int64(0), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMisses)

	// Then a hit
	require.NoError(t, manager.SetVehicle(vehicle.ID.Hex(), vehicle, time.Minute))
	_, err = manager.GetVehicle(vehicle.ID.Hex())
	require.NoError(t, err)

	stats = manager.GetCacheStats()
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMisses)
	assert.Equal(t, 0.5, stats.HitRate)
}

func TestHealthCheck(t *testing.T) {
	manager, mr := newTestManager(t)

	assert.NoError(t, manager.HealthCheck())

	mr.Close()
	assert.Error(t, manager.HealthCheck())
}
