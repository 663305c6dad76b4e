package cache

import "time"

// CacheConfig holds configuration for cache TTL values and behavior
type CacheConfig struct {
	VehicleDataTTL  time.Duration `json:"vehicleDataTTL"`  // single vehicle lookups
	AvailabilityTTL time.Duration `json:"availabilityTTL"` // search results, short lived
	VehicleListTTL  time.Duration `json:"vehicleListTTL"`  // fleet listings
	BookingDataTTL  time.Duration `json:"bookingDataTTL"`  // booking lookups
	MaxMemoryUsage  int64         `json:"maxMemoryUsage"`
	EvictionPolicy  string        `json:"evictionPolicy"`
	KeyPrefix       string        `json:"keyPrefix"`
	TagPrefix       string        `json:"tagPrefix"`
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		VehicleDataTTL:  2 * time.Minute,
		AvailabilityTTL: 30 * time.Second,
		VehicleListTTL:  2 * time.Minute,
		BookingDataTTL:  time.Minute,
		MaxMemoryUsage:  100 * 1024 * 1024, // 100MB
		EvictionPolicy:  "lru",
		KeyPrefix:       "rental:",
		TagPrefix:       "tag:",
	}
}

// GetTTLForDataType returns appropriate TTL based on data type
func (c CacheConfig) GetTTLForDataType(dataType string) time.Duration {
	switch dataType {
	case "vehicle":
		return c.VehicleDataTTL
	case "availability":
		return c.AvailabilityTTL
	case "vehicle_list":
		return c.VehicleListTTL
	case "booking":
		return c.BookingDataTTL
	default:
		return c.VehicleDataTTL
	}
}
