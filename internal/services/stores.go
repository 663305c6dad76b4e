package services

import (
	"rental-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleStore is the slice of the vehicle repository the services need.
// Satisfied by repository.VehicleRepository.
type VehicleStore interface {
	Create(vehicle *models.Vehicle) (*models.Vehicle, error)
	FindByID(id string) (*models.Vehicle, error)
	FindAll() ([]*models.Vehicle, error)
	FindCandidates(capacityKg int, pincode string) ([]*models.Vehicle, error)
	Update(id string, vehicle *models.Vehicle) (*models.Vehicle, error)
	UpdateAvailability(id string, available bool) error
	Delete(id string) error
}

// BookingStore is the slice of the booking repository the services need.
// Satisfied by repository.BookingRepository.
type BookingStore interface {
	CreateIfNoOverlap(booking *models.Booking) (*models.Booking, error)
	FindByID(id string) (*models.Booking, error)
	FindByCustomer(customerID string) ([]*models.Booking, error)
	FindOverlapping(vehicleID primitive.ObjectID, window models.TimeWindow) (*models.Booking, error)
	UpdateStatus(id string, status string) (*models.Booking, error)
	HasActiveForVehicle(vehicleID primitive.ObjectID) (bool, error)
}
