package services

import (
	"sync"

	"rental-backend/internal/models"
	"rental-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory store fakes mirroring the Mongo repositories' observable
// behavior, including the overlap predicate and the sentinel errors.

type memVehicleStore struct {
	mu       sync.Mutex
	vehicles map[primitive.ObjectID]*models.Vehicle
}

func newMemVehicleStore() *memVehicleStore {
	return &memVehicleStore{vehicles: make(map[primitive.ObjectID]*models.Vehicle)}
}

func (s *memVehicleStore) Create(vehicle *models.Vehicle) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	copied := *vehicle
	s.vehicles[vehicle.ID] = &copied
	return vehicle, nil
}

func (s *memVehicleStore) FindByID(id string) (*models.Vehicle, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidVehicleID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, ok := s.vehicles[objectID]
	if !ok {
		return nil, repository.ErrVehicleNotFound
	}
	copied := *vehicle
	return &copied, nil
}

func (s *memVehicleStore) FindAll() ([]*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Vehicle
	for _, vehicle := range s.vehicles {
		copied := *vehicle
		result = append(result, &copied)
	}
	return result, nil
}

func (s *memVehicleStore) FindCandidates(capacityKg int, pincode string) ([]*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Vehicle
	for _, vehicle := range s.vehicles {
		if capacityKg > 0 && vehicle.CapacityKg < capacityKg {
			continue
		}
		if pincode != "" && vehicle.Location.Pincode != pincode {
			continue
		}
		copied := *vehicle
		result = append(result, &copied)
	}
	return result, nil
}

func (s *memVehicleStore) Update(id string, vehicle *models.Vehicle) (*models.Vehicle, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidVehicleID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[objectID]; !ok {
		return nil, repository.ErrVehicleNotFound
	}
	copied := *vehicle
	copied.ID = objectID
	s.vehicles[objectID] = &copied
	return vehicle, nil
}

func (s *memVehicleStore) UpdateAvailability(id string, available bool) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrInvalidVehicleID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, ok := s.vehicles[objectID]
	if !ok {
		return repository.ErrVehicleNotFound
	}
	vehicle.IsAvailable = available
	return nil
}

func (s *memVehicleStore) Delete(id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrInvalidVehicleID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[objectID]; !ok {
		return repository.ErrVehicleNotFound
	}
	delete(s.vehicles, objectID)
	return nil
}

type memBookingStore struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*models.Booking
}

func newMemBookingStore() *memBookingStore {
	return &memBookingStore{bookings: make(map[primitive.ObjectID]*models.Booking)}
}

func (s *memBookingStore) CreateIfNoOverlap(booking *models.Booking) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := booking.Window()
	for _, existing := range s.bookings {
		if existing.VehicleID != booking.VehicleID || !existing.IsActive() {
			continue
		}
		if existing.Window().Overlaps(window) {
			return nil, repository.ErrBookingOverlap
		}
	}

	booking.ID = primitive.NewObjectID()
	copied := *booking
	s.bookings[booking.ID] = &copied
	return booking, nil
}

func (s *memBookingStore) FindByID(id string) (*models.Booking, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidBookingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[objectID]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (s *memBookingStore) FindByCustomer(customerID string) ([]*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*models.Booking
	for _, booking := range s.bookings {
		if booking.CustomerID != customerID {
			continue
		}
		copied := *booking
		result = append(result, &copied)
	}
	return result, nil
}

func (s *memBookingStore) FindOverlapping(vehicleID primitive.ObjectID, window models.TimeWindow) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, booking := range s.bookings {
		if booking.VehicleID != vehicleID || !booking.IsActive() {
			continue
		}
		if booking.Window().Overlaps(window) {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memBookingStore) UpdateStatus(id string, status string) (*models.Booking, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidBookingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[objectID]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	booking.Status = status
	copied := *booking
	return &copied, nil
}

func (s *memBookingStore) HasActiveForVehicle(vehicleID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, booking := range s.bookings {
		if booking.VehicleID == vehicleID && booking.IsActive() {
			return true, nil
		}
	}
	return false, nil
}
