package reconcile

import (
	"log"
	"time"

	"rental-backend/internal/models"
	"rental-backend/internal/repository"
)

// Reconciler is the periodic sweep that repairs drift between bookings and the
// cached is_available flag. The flag is flipped on a best-effort basis during
// booking writes, so a failed flip or a crashed process can leave a vehicle
// marked unavailable with no active booking holding it. The sweep also closes
// out in_progress bookings whose window has already ended.
type Reconciler struct {
	vehicleRepo *repository.VehicleRepository
	bookingRepo *repository.BookingRepository
	interval    time.Duration
	stopChan    chan bool
}

func NewReconciler(vehicleRepo *repository.VehicleRepository, bookingRepo *repository.BookingRepository, interval time.Duration) *Reconciler {
	return &Reconciler{
		vehicleRepo: vehicleRepo,
		bookingRepo: bookingRepo,
		interval:    interval,
		stopChan:    make(chan bool),
	}
}

// Start begins the reconciliation loop
func (s *Reconciler) Start() {
	log.Printf("Starting booking reconciler (interval: %v)", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run a sweep immediately on start
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopChan:
			log.Println("Stopping booking reconciler")
			return
		}
	}
}

// Stop stops the reconciler
func (s *Reconciler) Stop() {
	s.stopChan <- true
}

func (s *Reconciler) sweep() {
	s.completeOverdueBookings()
	s.releaseStaleFlags()
}

// completeOverdueBookings moves in_progress bookings past their end time to
// completed.
func (s *Reconciler) completeOverdueBookings() {
	overdue, err := s.bookingRepo.FindOverdueInProgress(time.Now())
	if err != nil {
		log.Printf("Error finding overdue bookings: %v", err)
		return
	}

	completed := 0
	for _, booking := range overdue {
		if _, err := s.bookingRepo.UpdateStatus(booking.ID.Hex(), models.BookingCompleted); err != nil {
			log.Printf("Error completing overdue booking %s: %v", booking.ID.Hex(), err)
			continue
		}
		completed++
	}

	if completed > 0 {
		log.Printf("Completed %d overdue bookings", completed)
	}
}

// releaseStaleFlags re-marks vehicles as available when no active booking
// still claims them.
func (s *Reconciler) releaseStaleFlags() {
	vehicles, err := s.vehicleRepo.FindUnavailable()
	if err != nil {
		log.Printf("Error finding unavailable vehicles: %v", err)
		return
	}

	released := 0
	for _, vehicle := range vehicles {
		active, err := s.bookingRepo.HasActiveForVehicle(vehicle.ID)
		if err != nil {
			log.Printf("Error checking active bookings for vehicle %s: %v", vehicle.ID.Hex(), err)
			continue
		}
		if active {
			continue
		}

		if err := s.vehicleRepo.UpdateAvailability(vehicle.ID.Hex(), true); err != nil {
			log.Printf("Error releasing availability flag for vehicle %s: %v", vehicle.ID.Hex(), err)
			continue
		}
		released++
	}

	if released > 0 {
		log.Printf("Released availability flag on %d vehicles", released)
	}
}
