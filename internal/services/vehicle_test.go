package services

import (
	"testing"
	"time"

	"rental-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVehicleFixture(t *testing.T) (*VehicleService, *memVehicleStore, *memBookingStore) {
	t.Helper()

	vehicleStore := newMemVehicleStore()
	bookingStore := newMemBookingStore()
	return NewVehicleService(vehicleStore, bookingStore), vehicleStore, bookingStore
}

func TestVehicleCRUD(t *testing.T) {
	service, _, _ := newVehicleFixture(t)

	created, err := service.CreateVehicle(&CreateVehicleRequest{
		Name:         "Mahindra Bolero",
		CapacityKg:   1200,
		Tyres:        4,
		PricePerHour: 150,
		Pincode:      "110001",
		City:         "Delhi",
	})
	require.NoError(t, err)
	assert.True(t, created.IsAvailable)
	assert.NotNil(t, created.Features)
	assert.NotNil(t, created.Images)

	t.Run("GetByID", func(t *testing.T) {
		vehicle, err := service.GetVehicleByID(created.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, "Mahindra Bolero", vehicle.Name)
	})

	t.Run("Update", func(t *testing.T) {
		updated, err := service.UpdateVehicle(created.ID.Hex(), &UpdateVehicleRequest{
			PricePerHour: 180,
			City:         "Gurgaon",
		})
		require.NoError(t, err)
		assert.Equal(t, 180.0, updated.PricePerHour)
		assert.Equal(t, "Gurgaon", updated.Location.City)
		// Untouched fields survive a partial update
		assert.Equal(t, 1200, updated.CapacityKg)
	})

	t.Run("GetUnknown", func(t *testing.T) {
		_, err := service.GetVehicleByID("65f000000000000000000000")
		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})
}

func TestDeleteVehicle(t *testing.T) {
	t.Run("DeletesIdleVehicle", func(t *testing.T) {
		service, _, _ := newVehicleFixture(t)

		created, err := service.CreateVehicle(&CreateVehicleRequest{
			Name: "Idle Truck", CapacityKg: 1000, Tyres: 6,
		})
		require.NoError(t, err)

		require.NoError(t, service.DeleteVehicle(created.ID.Hex()))

		_, err = service.GetVehicleByID(created.ID.Hex())
		var notFoundErr *NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("BlockedByActiveBooking", func(t *testing.T) {
		service, _, bookingStore := newVehicleFixture(t)

		created, err := service.CreateVehicle(&CreateVehicleRequest{
			Name: "Busy Truck", CapacityKg: 1000, Tyres: 6,
		})
		require.NoError(t, err)

		_, err = bookingStore.CreateIfNoOverlap(&models.Booking{
			VehicleID:  created.ID,
			CustomerID: "customer-1",
			StartTime:  bookingBase,
			EndTime:    bookingBase.Add(time.Hour),
			Status:     models.BookingConfirmed,
		})
		require.NoError(t, err)

		err = service.DeleteVehicle(created.ID.Hex())
		assert.ErrorIs(t, err, ErrVehicleInUse)
	})

	t.Run("FinishedBookingDoesNotBlock", func(t *testing.T) {
		service, _, bookingStore := newVehicleFixture(t)

		created, err := service.CreateVehicle(&CreateVehicleRequest{
			Name: "Done Truck", CapacityKg: 1000, Tyres: 6,
		})
		require.NoError(t, err)

		_, err = bookingStore.CreateIfNoOverlap(&models.Booking{
			VehicleID:  created.ID,
			CustomerID: "customer-1",
			StartTime:  bookingBase,
			EndTime:    bookingBase.Add(time.Hour),
			Status:     models.BookingCompleted,
		})
		require.NoError(t, err)

		assert.NoError(t, service.DeleteVehicle(created.ID.Hex()))
	})
}

// TestReservationCycle walks the full customer journey: search, book, watch
// the vehicle disappear from search, cancel, watch it come back.
func TestReservationCycle(t *testing.T) {
	vehicleStore := newMemVehicleStore()
	bookingStore := newMemBookingStore()
	estimator := newTestEstimator()

	vehicleService := NewVehicleService(vehicleStore, bookingStore)
	availabilityService := NewAvailabilityService(vehicleStore, bookingStore, estimator)
	bookingService := NewBookingService(bookingStore, vehicleStore, estimator)

	vehicle, err := vehicleService.CreateVehicle(&CreateVehicleRequest{
		Name:         "Cycle Truck",
		CapacityKg:   2000,
		Tyres:        6,
		PricePerHour: 200,
		Pincode:      "110001",
	})
	require.NoError(t, err)

	window := models.TimeWindow{Start: bookingBase, End: bookingBase.Add(4 * time.Hour)}

	// Search finds the vehicle
	result, err := availabilityService.FindAvailable(AvailabilityFilter{Window: window})
	require.NoError(t, err)
	require.Len(t, result, 1)

	// Book it
	booking, err := bookingService.CreateBooking("customer-1", &CreateBookingRequest{
		VehicleID: vehicle.ID.Hex(),
		StartTime: rfc3339(window.Start),
		EndTime:   rfc3339(window.End),
	})
	require.NoError(t, err)

	// The window is now gone from search results
	result, err = availabilityService.FindAvailable(AvailabilityFilter{Window: window})
	require.NoError(t, err)
	assert.Empty(t, result)

	// A different window is still bookable
	result, err = availabilityService.FindAvailable(AvailabilityFilter{
		Window: models.TimeWindow{
			Start: bookingBase.Add(5 * time.Hour),
			End:   bookingBase.Add(6 * time.Hour),
		},
	})
	require.NoError(t, err)
	assert.Len(t, result, 1)

	// Cancelling frees the window again
	_, err = bookingService.CancelBooking(booking.ID.Hex(), "customer-1")
	require.NoError(t, err)

	result, err = availabilityService.FindAvailable(AvailabilityFilter{Window: window})
	require.NoError(t, err)
	assert.Len(t, result, 1)
}
