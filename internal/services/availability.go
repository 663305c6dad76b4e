package services

import (
	"fmt"

	"rental-backend/internal/models"
	"rental-backend/pkg/cache"
)

// AvailabilityService answers "which vehicles are free in this window". It is
// read-only: it never locks or reserves candidates, so a booking attempt that
// follows a search can still lose the window to a concurrent requester.
type AvailabilityService struct {
	vehicleStore VehicleStore
	bookingStore BookingStore
	estimator    *RideEstimator
	cacheManager cache.CacheManager
	cacheConfig  cache.CacheConfig
}

func NewAvailabilityService(vehicleStore VehicleStore, bookingStore BookingStore, estimator *RideEstimator) *AvailabilityService {
	return &AvailabilityService{
		vehicleStore: vehicleStore,
		bookingStore: bookingStore,
		estimator:    estimator,
		cacheConfig:  cache.DefaultCacheConfig(),
	}
}

// SetCacheManager allows setting the cache manager for caching operations
func (s *AvailabilityService) SetCacheManager(cacheManager cache.CacheManager) {
	s.cacheManager = cacheManager
}

type AvailabilityFilter struct {
	CapacityRequired int
	PickupPincode    string
	Window           models.TimeWindow
	From             RidePoint
	To               RidePoint
	// EstimatedRideDurationHours overrides the estimator when the client
	// already computed a duration.
	EstimatedRideDurationHours float64
}

// FindAvailable returns vehicles matching the static filter that have no
// active booking overlapping the window, each annotated with the estimated
// ride duration. When the window is absent the overlap filter is skipped.
//
// One overlap query runs per candidate, so cost grows with fleet size times
// bookings per vehicle. Fine for small fleets; a known scalability limit.
func (s *AvailabilityService) FindAvailable(filter AvailabilityFilter) ([]models.AvailableVehicle, error) {
	cacheKey := s.buildCacheKey(filter)

	if s.cacheManager != nil {
		cached, err := s.cacheManager.GetAvailability(cacheKey)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			fmt.Printf("Cache error for FindAvailable: %v\n", err)
		}
	}

	candidates, err := s.vehicleStore.FindCandidates(filter.CapacityRequired, filter.PickupPincode)
	if err != nil {
		return nil, err
	}

	estimate := filter.EstimatedRideDurationHours
	if estimate <= 0 {
		estimate = s.estimator.Estimate(filter.From, filter.To)
	}

	available := []models.AvailableVehicle{}
	for _, vehicle := range candidates {
		if filter.Window.Valid() {
			overlapping, err := s.bookingStore.FindOverlapping(vehicle.ID, filter.Window)
			if err != nil {
				return nil, err
			}
			if overlapping != nil {
				continue
			}
		}
		available = append(available, models.AvailableVehicle{
			Vehicle:                    *vehicle,
			EstimatedRideDurationHours: estimate,
		})
	}

	if s.cacheManager != nil {
		ttl := s.cacheConfig.GetTTLForDataType("availability")
		if cacheErr := s.cacheManager.SetAvailability(cacheKey, available, ttl); cacheErr != nil {
			fmt.Printf("Failed to cache availability result: %v\n", cacheErr)
		}
	}

	return available, nil
}

func (s *AvailabilityService) buildCacheKey(filter AvailabilityFilter) string {
	return fmt.Sprintf("search_%d_%s_%d_%d",
		filter.CapacityRequired,
		filter.PickupPincode,
		filter.Window.Start.Unix(),
		filter.Window.End.Unix(),
	)
}
