package services

import (
	"testing"
	"time"

	"rental-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingFixture(t *testing.T) (*BookingService, *memVehicleStore, *memBookingStore, *models.Vehicle) {
	t.Helper()

	vehicleStore := newMemVehicleStore()
	bookingStore := newMemBookingStore()
	service := NewBookingService(bookingStore, vehicleStore, newTestEstimator())

	vehicle, err := vehicleStore.Create(&models.Vehicle{
		Name:         "Tata Ace",
		CapacityKg:   750,
		Tyres:        4,
		PricePerHour: 120,
		IsAvailable:  true,
		Location:     models.VehicleLocation{Pincode: "110001", City: "Delhi"},
	})
	require.NoError(t, err)

	return service, vehicleStore, bookingStore, vehicle
}

func rfc3339(t time.Time) string {
	return t.Format(time.RFC3339)
}

var bookingBase = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestCreateBooking(t *testing.T) {
	t.Run("ExplicitWindow", func(t *testing.T) {
		service, vehicleStore, _, vehicle := newBookingFixture(t)

		booking, err := service.CreateBooking("customer-1", &CreateBookingRequest{
			VehicleID: vehicle.ID.Hex(),
			StartTime: rfc3339(bookingBase),
			EndTime:   rfc3339(bookingBase.Add(90 * time.Minute)),
		})
		require.NoError(t, err)

		assert.Equal(t, models.BookingPending, booking.Status)
		assert.Equal(t, models.PaymentPending, booking.PaymentStatus)
		assert.Equal(t, "customer-1", booking.CustomerID)
		// 1.5h window billed as 2 whole hours
		assert.Equal(t, 2.0, booking.TotalHours)
		assert.Equal(t, 240.0, booking.TotalPrice)

		stored, err := vehicleStore.FindByID(vehicle.ID.Hex())
		require.NoError(t, err)
		assert.False(t, stored.IsAvailable)
	})

	t.Run("EndDerivedFromPincodeRoute", func(t *testing.T) {
		service, _, _, vehicle := newBookingFixture(t)

		booking, err := service.CreateBooking("customer-1", &CreateBookingRequest{
			VehicleID:   vehicle.ID.Hex(),
			StartTime:   rfc3339(bookingBase),
			FromPincode: "110001",
			ToPincode:   "110002",
		})
		require.NoError(t, err)

		assert.Equal(t, 1.0, booking.EstimatedRideDurationHours)
		assert.Equal(t, bookingBase.Add(time.Hour), booking.EndTime)
		assert.Equal(t, 1.0, booking.TotalHours)
	})

	t.Run("ClientEstimateFloored", func(t *testing.T) {
		service, _, _, vehicle := newBookingFixture(t)

		booking, err := service.CreateBooking("customer-1", &CreateBookingRequest{
			VehicleID:                  vehicle.ID.Hex(),
			StartTime:                  rfc3339(bookingBase),
			EstimatedRideDurationHours: 0.1,
		})
		require.NoError(t, err)

		assert.Equal(t, 0.5, booking.EstimatedRideDurationHours)
		assert.Equal(t, bookingBase.Add(30*time.Minute), booking.EndTime)
		assert.Equal(t, 1.0, booking.TotalHours)
	})

	t.Run("CollectsAllFieldErrors", func(t *testing.T) {
		service, _, _, _ := newBookingFixture(t)

		_, err := service.CreateBooking("", &CreateBookingRequest{})

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "Vehicle ID is required")
		assert.Contains(t, validationErr.Fields, "Customer ID is required")
		assert.Contains(t, validationErr.Fields, "Start time is required")
		assert.Contains(t, validationErr.Fields, "Either an end time, an estimated ride duration or a route is required")
	})

	t.Run("BadPincodesReported", func(t *testing.T) {
		service, _, _, vehicle := newBookingFixture(t)

		_, err := service.CreateBooking("customer-1", &CreateBookingRequest{
			VehicleID:   vehicle.ID.Hex(),
			StartTime:   rfc3339(bookingBase),
			FromPincode: "12345",
			ToPincode:   "abcdef",
		})

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "From pincode must be a 6-digit number")
		assert.Contains(t, validationErr.Fields, "To pincode must be a 6-digit number")
	})

	t.Run("UnknownVehicle", func(t *testing.T) {
		service, _, _, _ := newBookingFixture(t)

		_, err := service.CreateBooking("customer-1", &CreateBookingRequest{
			VehicleID: "65f000000000000000000000",
			StartTime: rfc3339(bookingBase),
			EndTime:   rfc3339(bookingBase.Add(time.Hour)),
		})

		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, "vehicle", notFoundErr.Entity)
	})
}

func TestCreateBookingOverlap(t *testing.T) {
	service, _, _, vehicle := newBookingFixture(t)

	// Existing booking holds 10:00 to 11:30
	_, err := service.CreateBooking("customer-1", &CreateBookingRequest{
		VehicleID: vehicle.ID.Hex(),
		StartTime: rfc3339(bookingBase),
		EndTime:   rfc3339(bookingBase.Add(90 * time.Minute)),
	})
	require.NoError(t, err)

	t.Run("ContainedWindowRejected", func(t *testing.T) {
		_, err := service.CreateBooking("customer-2", &CreateBookingRequest{
			VehicleID: vehicle.ID.Hex(),
			StartTime: rfc3339(bookingBase.Add(time.Hour)),
			EndTime:   rfc3339(bookingBase.Add(2 * time.Hour)),
		})

		var conflictErr *ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, vehicle.ID.Hex(), conflictErr.VehicleID)
	})

	t.Run("TouchingWindowRejected", func(t *testing.T) {
		// Starts exactly when the existing booking ends; inclusive
		// boundaries treat that as overlap
		_, err := service.CreateBooking("customer-2", &CreateBookingRequest{
			VehicleID: vehicle.ID.Hex(),
			StartTime: rfc3339(bookingBase.Add(90 * time.Minute)),
			EndTime:   rfc3339(bookingBase.Add(150 * time.Minute)),
		})

		var conflictErr *ConflictError
		require.ErrorAs(t, err, &conflictErr)
	})

	t.Run("DisjointWindowAccepted", func(t *testing.T) {
		booking, err := service.CreateBooking("customer-2", &CreateBookingRequest{
			VehicleID: vehicle.ID.Hex(),
			StartTime: rfc3339(bookingBase.Add(91 * time.Minute)),
			EndTime:   rfc3339(bookingBase.Add(150 * time.Minute)),
		})
		require.NoError(t, err)
		assert.Equal(t, models.BookingPending, booking.Status)
	})
}

func TestCancelBooking(t *testing.T) {
	t.Run("OwnerCancelsPending", func(t *testing.T) {
		service, vehicleStore, _, vehicle := newBookingFixture(t)

		booking, err := service.CreateBooking("customer-1", &CreateBookingRequest{
			VehicleID: vehicle.ID.Hex(),
			StartTime: rfc3339(bookingBase),
			EndTime:   rfc3339(bookingBase.Add(time.Hour)),
		})
		require.NoError(t, err)

		cancelled, err := service.CancelBooking(booking.ID.Hex(), "customer-1")
		require.NoError(t, err)
		assert.Equal(t, models.BookingCancelled, cancelled.Status)

		// No active booking remains, so the flag is released
		stored, err := vehicleStore.FindByID(vehicle.ID.Hex())
		require.NoError(t, err)
		assert.True(t, stored.IsAvailable)
	})

	t.Run("NonOwnerRejected", func(t *testing.T) {
		service, _, _, vehicle := newBookingFixture(t)

		booking, err := service.CreateBooking("customer-1", &CreateBookingRequest{
			VehicleID: vehicle.ID.Hex(),
			StartTime: rfc3339(bookingBase),
			EndTime:   rfc3339(bookingBase.Add(time.Hour)),
		})
		require.NoError(t, err)

		_, err = service.CancelBooking(booking.ID.Hex(), "customer-2")
		assert.ErrorIs(t, err, ErrNotBookingOwner)
	})

	t.Run("CancelledBookingStaysCancelled", func(t *testing.T) {
		service, _, _, vehicle := newBookingFixture(t)

		booking, err := service.CreateBooking("customer-1", &CreateBookingRequest{
			VehicleID: vehicle.ID.Hex(),
			StartTime: rfc3339(bookingBase),
			EndTime:   rfc3339(bookingBase.Add(time.Hour)),
		})
		require.NoError(t, err)

		_, err = service.CancelBooking(booking.ID.Hex(), "customer-1")
		require.NoError(t, err)

		_, err = service.CancelBooking(booking.ID.Hex(), "customer-1")
		var transitionErr *InvalidTransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, models.BookingCancelled, transitionErr.From)
	})

	t.Run("InProgressCannotBeCancelled", func(t *testing.T) {
		service, _, _, vehicle := newBookingFixture(t)

		booking, err := service.CreateBooking("customer-1", &CreateBookingRequest{
			VehicleID: vehicle.ID.Hex(),
			StartTime: rfc3339(bookingBase),
			EndTime:   rfc3339(bookingBase.Add(time.Hour)),
		})
		require.NoError(t, err)

		_, err = service.UpdateStatus(booking.ID.Hex(), models.BookingConfirmed)
		require.NoError(t, err)
		_, err = service.UpdateStatus(booking.ID.Hex(), models.BookingInProgress)
		require.NoError(t, err)

		_, err = service.CancelBooking(booking.ID.Hex(), "customer-1")
		var transitionErr *InvalidTransitionError
		require.ErrorAs(t, err, &transitionErr)
	})

	t.Run("UnknownBooking", func(t *testing.T) {
		service, _, _, _ := newBookingFixture(t)

		_, err := service.CancelBooking("65f000000000000000000000", "customer-1")
		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, "booking", notFoundErr.Entity)
	})
}

func TestUpdateBookingStatus(t *testing.T) {
	t.Run("FullLifecycleReleasesFlag", func(t *testing.T) {
		service, vehicleStore, _, vehicle := newBookingFixture(t)

		booking, err := service.CreateBooking("customer-1", &CreateBookingRequest{
			VehicleID: vehicle.ID.Hex(),
			StartTime: rfc3339(bookingBase),
			EndTime:   rfc3339(bookingBase.Add(time.Hour)),
		})
		require.NoError(t, err)

		for _, status := range []string{models.BookingConfirmed, models.BookingInProgress, models.BookingCompleted} {
			updated, err := service.UpdateStatus(booking.ID.Hex(), status)
			require.NoError(t, err)
			assert.Equal(t, status, updated.Status)
		}

		stored, err := vehicleStore.FindByID(vehicle.ID.Hex())
		require.NoError(t, err)
		assert.True(t, stored.IsAvailable)
	})

	t.Run("SkippingStatesRejected", func(t *testing.T) {
		service, _, _, vehicle := newBookingFixture(t)

		booking, err := service.CreateBooking("customer-1", &CreateBookingRequest{
			VehicleID: vehicle.ID.Hex(),
			StartTime: rfc3339(bookingBase),
			EndTime:   rfc3339(bookingBase.Add(time.Hour)),
		})
		require.NoError(t, err)

		_, err = service.UpdateStatus(booking.ID.Hex(), models.BookingCompleted)
		var transitionErr *InvalidTransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, models.BookingPending, transitionErr.From)
		assert.Equal(t, models.BookingCompleted, transitionErr.To)
	})
}
