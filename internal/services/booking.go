package services

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"rental-backend/internal/models"
	"rental-backend/internal/repository"
	"rental-backend/pkg/cache"
)

var pincodePattern = regexp.MustCompile(`^\d{6}$`)

// BookingService is the write path: it validates a booking request, re-checks
// the overlap predicate at commit time and persists the reservation. The
// overlap re-check is mandatory even when the caller already ran an
// availability search, because time passes between read and write.
type BookingService struct {
	bookingStore BookingStore
	vehicleStore VehicleStore
	estimator    *RideEstimator
	cacheManager cache.CacheManager
}

func NewBookingService(bookingStore BookingStore, vehicleStore VehicleStore, estimator *RideEstimator) *BookingService {
	return &BookingService{
		bookingStore: bookingStore,
		vehicleStore: vehicleStore,
		estimator:    estimator,
	}
}

// SetCacheManager allows setting the cache manager for invalidation on writes
func (s *BookingService) SetCacheManager(cacheManager cache.CacheManager) {
	s.cacheManager = cacheManager
}

type CreateBookingRequest struct {
	VehicleID string `json:"vehicleId"`
	StartTime string `json:"startTime"`
	// EndTime is optional; when absent the end is derived from the estimated
	// ride duration.
	EndTime                    string                  `json:"endTime,omitempty"`
	EstimatedRideDurationHours float64                 `json:"estimatedRideDurationHours,omitempty"`
	FromPincode                string                  `json:"fromPincode,omitempty"`
	ToPincode                  string                  `json:"toPincode,omitempty"`
	PickupLocation             *models.BookingLocation `json:"pickupLocation,omitempty"`
	DropoffLocation            *models.BookingLocation `json:"dropoffLocation,omitempty"`
	Notes                      string                  `json:"notes,omitempty"`
}

// CreateBooking runs the scheduling sequence in order: validate, load the
// vehicle, resolve the window, re-check overlap at commit time, persist, then
// best-effort flip of the vehicle's availability cache flag.
func (s *BookingService) CreateBooking(customerID string, req *CreateBookingRequest) (*models.Booking, error) {
	start, end, fieldErrors := s.validate(customerID, req)
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	vehicle, err := s.vehicleStore.FindByID(req.VehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) || errors.Is(err, repository.ErrInvalidVehicleID) {
			return nil, &NotFoundError{Entity: "vehicle"}
		}
		return nil, err
	}

	estimated := s.resolveEstimate(req, start, end)

	if end.IsZero() {
		end = start.Add(time.Duration(estimated * float64(time.Hour)))
	}

	window := models.TimeWindow{Start: start, End: end}
	if !window.Valid() {
		return nil, &ValidationError{Fields: []string{"End time must be after start time"}}
	}

	// Ceiling policy: bill whole hours. Chosen globally over the exact-decimal
	// variant.
	totalHours := math.Ceil(window.Hours())

	booking := &models.Booking{
		VehicleID:                  vehicle.ID,
		CustomerID:                 customerID,
		StartTime:                  start,
		EndTime:                    end,
		TotalHours:                 totalHours,
		TotalPrice:                 totalHours * vehicle.PricePerHour,
		EstimatedRideDurationHours: estimated,
		Status:                     models.BookingPending,
		PaymentStatus:              models.PaymentPending,
		PickupLocation:             pickupLocation(req),
		DropoffLocation:            dropoffLocation(req),
		Notes:                      req.Notes,
		CreatedAt:                  time.Now(),
		UpdatedAt:                  time.Now(),
	}

	// Commit-time overlap re-check plus insert. No automatic retry on
	// conflict; the caller must re-search.
	created, err := s.bookingStore.CreateIfNoOverlap(booking)
	if err != nil {
		if errors.Is(err, repository.ErrBookingOverlap) {
			return nil, &ConflictError{VehicleID: req.VehicleID, Window: window}
		}
		return nil, err
	}

	// Best-effort cache flag flip. A failure here must not undo the booking.
	if err := s.vehicleStore.UpdateAvailability(req.VehicleID, false); err != nil {
		fmt.Printf("Failed to update availability flag for vehicle %s: %v\n", req.VehicleID, err)
	}

	s.invalidateCaches(req.VehicleID)

	return created, nil
}

// validate collects one message per violated field.
func (s *BookingService) validate(customerID string, req *CreateBookingRequest) (time.Time, time.Time, []string) {
	var fieldErrors []string
	var start, end time.Time

	if req.VehicleID == "" {
		fieldErrors = append(fieldErrors, "Vehicle ID is required")
	}
	if customerID == "" {
		fieldErrors = append(fieldErrors, "Customer ID is required")
	}

	if req.StartTime == "" {
		fieldErrors = append(fieldErrors, "Start time is required")
	} else {
		parsed, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			fieldErrors = append(fieldErrors, "Start time must be a valid date")
		} else {
			start = parsed
		}
	}

	if req.EndTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.EndTime)
		if err != nil {
			fieldErrors = append(fieldErrors, "End time must be a valid date")
		} else {
			end = parsed
			if !start.IsZero() && !end.After(start) {
				fieldErrors = append(fieldErrors, "End time must be after start time")
			}
		}
	}

	if req.FromPincode != "" && !pincodePattern.MatchString(req.FromPincode) {
		fieldErrors = append(fieldErrors, "From pincode must be a 6-digit number")
	}
	if req.ToPincode != "" && !pincodePattern.MatchString(req.ToPincode) {
		fieldErrors = append(fieldErrors, "To pincode must be a 6-digit number")
	}

	if req.EndTime == "" && req.EstimatedRideDurationHours <= 0 && !s.hasRoutePoints(req) {
		fieldErrors = append(fieldErrors, "Either an end time, an estimated ride duration or a route is required")
	}

	return start, end, fieldErrors
}

func (s *BookingService) hasRoutePoints(req *CreateBookingRequest) bool {
	if req.FromPincode != "" && req.ToPincode != "" {
		return true
	}
	return req.PickupLocation != nil && req.DropoffLocation != nil &&
		req.PickupLocation.Lat != 0 && req.DropoffLocation.Lat != 0
}

// resolveEstimate fixes the estimated ride duration at creation. Client
// values are accepted, otherwise the estimator runs on the supplied route;
// with an explicit window and no route the window length itself is used.
// The configured floor applies regardless of the source.
func (s *BookingService) resolveEstimate(req *CreateBookingRequest, start, end time.Time) float64 {
	estimated := req.EstimatedRideDurationHours

	if estimated <= 0 && s.hasRoutePoints(req) {
		estimated = s.estimator.Estimate(s.fromPoint(req), s.toPoint(req))
	}
	if estimated <= 0 && !end.IsZero() {
		estimated = end.Sub(start).Hours()
	}

	if estimated < s.estimator.config.MinimumHours {
		estimated = s.estimator.config.MinimumHours
	}

	return estimated
}

func (s *BookingService) fromPoint(req *CreateBookingRequest) RidePoint {
	if req.FromPincode != "" {
		return PincodePoint(req.FromPincode)
	}
	if req.PickupLocation != nil {
		return GeoRidePoint(req.PickupLocation.Lat, req.PickupLocation.Lon)
	}
	return RidePoint{}
}

func (s *BookingService) toPoint(req *CreateBookingRequest) RidePoint {
	if req.ToPincode != "" {
		return PincodePoint(req.ToPincode)
	}
	if req.DropoffLocation != nil {
		return GeoRidePoint(req.DropoffLocation.Lat, req.DropoffLocation.Lon)
	}
	return RidePoint{}
}

func pickupLocation(req *CreateBookingRequest) *models.BookingLocation {
	if req.PickupLocation != nil {
		return req.PickupLocation
	}
	if req.FromPincode != "" {
		return &models.BookingLocation{Pincode: req.FromPincode}
	}
	return nil
}

func dropoffLocation(req *CreateBookingRequest) *models.BookingLocation {
	if req.DropoffLocation != nil {
		return req.DropoffLocation
	}
	if req.ToPincode != "" {
		return &models.BookingLocation{Pincode: req.ToPincode}
	}
	return nil
}

// CancelBooking cancels a booking owned by the requester. Finished and
// cancelled bookings are rejected; cancelling an in_progress booking is also
// rejected, the stricter of the two observed policies.
func (s *BookingService) CancelBooking(bookingID, customerID string) (*models.Booking, error) {
	booking, err := s.bookingStore.FindByID(bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) || errors.Is(err, repository.ErrInvalidBookingID) {
			return nil, &NotFoundError{Entity: "booking"}
		}
		return nil, err
	}

	if booking.CustomerID != customerID {
		return nil, ErrNotBookingOwner
	}

	if !models.CanTransition(booking.Status, models.BookingCancelled) {
		return nil, &InvalidTransitionError{From: booking.Status, To: models.BookingCancelled}
	}

	cancelled, err := s.bookingStore.UpdateStatus(bookingID, models.BookingCancelled)
	if err != nil {
		return nil, err
	}

	s.releaseAvailabilityFlag(cancelled.VehicleID.Hex(), cancelled)
	s.invalidateCaches(cancelled.VehicleID.Hex())

	return cancelled, nil
}

// UpdateStatus drives the confirm/start/finish transitions of the lifecycle.
func (s *BookingService) UpdateStatus(bookingID, status string) (*models.Booking, error) {
	booking, err := s.bookingStore.FindByID(bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) || errors.Is(err, repository.ErrInvalidBookingID) {
			return nil, &NotFoundError{Entity: "booking"}
		}
		return nil, err
	}

	if !models.CanTransition(booking.Status, status) {
		return nil, &InvalidTransitionError{From: booking.Status, To: status}
	}

	updated, err := s.bookingStore.UpdateStatus(bookingID, status)
	if err != nil {
		return nil, err
	}

	if status == models.BookingCompleted {
		s.releaseAvailabilityFlag(updated.VehicleID.Hex(), updated)
	}
	s.invalidateCaches(updated.VehicleID.Hex())

	return updated, nil
}

func (s *BookingService) GetBookingsByCustomer(customerID string) ([]*models.Booking, error) {
	return s.bookingStore.FindByCustomer(customerID)
}

// releaseAvailabilityFlag flips the cached flag back on, but only when no
// other active booking still claims the vehicle. Best-effort: failures are
// logged and swallowed since the flag is never the source of truth.
func (s *BookingService) releaseAvailabilityFlag(vehicleID string, booking *models.Booking) {
	stillActive, err := s.bookingStore.HasActiveForVehicle(booking.VehicleID)
	if err != nil {
		fmt.Printf("Failed to check active bookings for vehicle %s: %v\n", vehicleID, err)
		return
	}
	if stillActive {
		return
	}
	if err := s.vehicleStore.UpdateAvailability(vehicleID, true); err != nil {
		fmt.Printf("Failed to release availability flag for vehicle %s: %v\n", vehicleID, err)
	}
}

func (s *BookingService) invalidateCaches(vehicleID string) {
	if s.cacheManager == nil {
		return
	}
	if err := s.cacheManager.InvalidateVehicle(vehicleID); err != nil {
		fmt.Printf("Failed to invalidate vehicle cache for %s: %v\n", vehicleID, err)
	}
	if err := s.cacheManager.InvalidateAvailability(); err != nil {
		fmt.Printf("Failed to invalidate availability cache: %v\n", err)
	}
}
