package services

import (
	"errors"
	"fmt"
	"time"

	"rental-backend/internal/models"
	"rental-backend/internal/repository"
	"rental-backend/pkg/cache"
)

type VehicleService struct {
	vehicleStore VehicleStore
	bookingStore BookingStore
	cacheManager cache.CacheManager
	cacheConfig  cache.CacheConfig
}

func NewVehicleService(vehicleStore VehicleStore, bookingStore BookingStore) *VehicleService {
	return &VehicleService{
		vehicleStore: vehicleStore,
		bookingStore: bookingStore,
		cacheConfig:  cache.DefaultCacheConfig(),
	}
}

// SetCacheManager allows setting the cache manager for caching operations
func (s *VehicleService) SetCacheManager(cacheManager cache.CacheManager) {
	s.cacheManager = cacheManager
}

type CreateVehicleRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=100"`
	CapacityKg   int      `json:"capacityKg" validate:"required,min=1,max=1000000"`
	Tyres        int      `json:"tyres" validate:"required,min=1,max=6"`
	PricePerHour float64  `json:"pricePerHour" validate:"omitempty,min=0"`
	Pincode      string   `json:"pincode,omitempty" validate:"omitempty,len=6,numeric"`
	City         string   `json:"city,omitempty"`
	Features     []string `json:"features,omitempty"`
	Images       []string `json:"images,omitempty"`
}

type UpdateVehicleRequest struct {
	Name         string   `json:"name,omitempty" validate:"omitempty,max=100"`
	CapacityKg   int      `json:"capacityKg,omitempty" validate:"omitempty,min=1,max=1000000"`
	Tyres        int      `json:"tyres,omitempty" validate:"omitempty,min=1,max=6"`
	PricePerHour float64  `json:"pricePerHour,omitempty" validate:"omitempty,min=0"`
	Pincode      string   `json:"pincode,omitempty" validate:"omitempty,len=6,numeric"`
	City         string   `json:"city,omitempty"`
	Features     []string `json:"features,omitempty"`
	Images       []string `json:"images,omitempty"`
}

func (s *VehicleService) CreateVehicle(req *CreateVehicleRequest) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{
		Name:         req.Name,
		CapacityKg:   req.CapacityKg,
		Tyres:        req.Tyres,
		PricePerHour: req.PricePerHour,
		IsAvailable:  true,
		Location: models.VehicleLocation{
			Pincode: req.Pincode,
			City:    req.City,
		},
		Features:  req.Features,
		Images:    req.Images,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if vehicle.Features == nil {
		vehicle.Features = []string{}
	}
	if vehicle.Images == nil {
		vehicle.Images = []string{}
	}

	created, err := s.vehicleStore.Create(vehicle)
	if err != nil {
		return nil, err
	}

	s.invalidateAvailability()

	return created, nil
}

func (s *VehicleService) GetVehicleByID(id string) (*models.Vehicle, error) {
	if s.cacheManager != nil {
		cached, err := s.cacheManager.GetVehicle(id)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			fmt.Printf("Cache error for GetVehicleByID(%s): %v\n", id, err)
		}
	}

	vehicle, err := s.vehicleStore.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) || errors.Is(err, repository.ErrInvalidVehicleID) {
			return nil, &NotFoundError{Entity: "vehicle"}
		}
		return nil, err
	}

	if s.cacheManager != nil {
		ttl := s.cacheConfig.GetTTLForDataType("vehicle")
		if cacheErr := s.cacheManager.SetVehicle(id, vehicle, ttl); cacheErr != nil {
			fmt.Printf("Failed to cache vehicle %s: %v\n", id, cacheErr)
		}
	}

	return vehicle, nil
}

func (s *VehicleService) GetAllVehicles() ([]*models.Vehicle, error) {
	return s.vehicleStore.FindAll()
}

func (s *VehicleService) UpdateVehicle(id string, req *UpdateVehicleRequest) (*models.Vehicle, error) {
	vehicle, err := s.vehicleStore.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) || errors.Is(err, repository.ErrInvalidVehicleID) {
			return nil, &NotFoundError{Entity: "vehicle"}
		}
		return nil, err
	}

	if req.Name != "" {
		vehicle.Name = req.Name
	}
	if req.CapacityKg > 0 {
		vehicle.CapacityKg = req.CapacityKg
	}
	if req.Tyres > 0 {
		vehicle.Tyres = req.Tyres
	}
	if req.PricePerHour > 0 {
		vehicle.PricePerHour = req.PricePerHour
	}
	if req.Pincode != "" {
		vehicle.Location.Pincode = req.Pincode
	}
	if req.City != "" {
		vehicle.Location.City = req.City
	}
	if req.Features != nil {
		vehicle.Features = req.Features
	}
	if req.Images != nil {
		vehicle.Images = req.Images
	}
	vehicle.UpdatedAt = time.Now()

	updated, err := s.vehicleStore.Update(id, vehicle)
	if err != nil {
		return nil, err
	}

	if s.cacheManager != nil {
		if err := s.cacheManager.InvalidateVehicle(id); err != nil {
			fmt.Printf("Failed to invalidate vehicle cache for %s: %v\n", id, err)
		}
	}
	s.invalidateAvailability()

	return updated, nil
}

// DeleteVehicle removes a vehicle unless an active booking still claims it.
func (s *VehicleService) DeleteVehicle(id string) error {
	vehicle, err := s.vehicleStore.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) || errors.Is(err, repository.ErrInvalidVehicleID) {
			return &NotFoundError{Entity: "vehicle"}
		}
		return err
	}

	inUse, err := s.bookingStore.HasActiveForVehicle(vehicle.ID)
	if err != nil {
		return err
	}
	if inUse {
		return ErrVehicleInUse
	}

	if err := s.vehicleStore.Delete(id); err != nil {
		return err
	}

	if s.cacheManager != nil {
		if err := s.cacheManager.InvalidateVehicle(id); err != nil {
			fmt.Printf("Failed to invalidate vehicle cache for %s: %v\n", id, err)
		}
	}
	s.invalidateAvailability()

	return nil
}

func (s *VehicleService) invalidateAvailability() {
	if s.cacheManager == nil {
		return
	}
	if err := s.cacheManager.InvalidateAvailability(); err != nil {
		fmt.Printf("Failed to invalidate availability cache: %v\n", err)
	}
}
