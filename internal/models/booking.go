package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking status lifecycle:
// pending -> confirmed -> in_progress -> completed
// pending/confirmed -> cancelled
// completed and cancelled are terminal.
const (
	BookingPending    = "pending"
	BookingConfirmed  = "confirmed"
	BookingInProgress = "in_progress"
	BookingCompleted  = "completed"
	BookingCancelled  = "cancelled"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// ActiveStatuses are the statuses that hold a vehicle's time window.
var ActiveStatuses = []string{BookingPending, BookingConfirmed, BookingInProgress}

var statusTransitions = map[string][]string{
	BookingPending:    {BookingConfirmed, BookingCancelled},
	BookingConfirmed:  {BookingInProgress, BookingCancelled},
	BookingInProgress: {BookingCompleted},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Booking struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID  primitive.ObjectID `bson:"vehicle_id" json:"vehicleId"`
	CustomerID string             `bson:"customer_id" json:"customerId"`
	StartTime  time.Time          `bson:"start_time" json:"startTime"`
	EndTime    time.Time          `bson:"end_time" json:"endTime"`
	TotalHours float64            `bson:"total_hours" json:"totalHours"`
	TotalPrice float64            `bson:"total_price" json:"totalPrice"`
	// EstimatedRideDurationHours is fixed at creation and never recomputed.
	EstimatedRideDurationHours float64          `bson:"estimated_ride_duration_hours" json:"estimatedRideDurationHours"`
	Status                     string           `bson:"status" json:"status"`
	PaymentStatus              string           `bson:"payment_status" json:"paymentStatus"`
	PickupLocation             *BookingLocation `bson:"pickup_location,omitempty" json:"pickupLocation,omitempty"`
	DropoffLocation            *BookingLocation `bson:"dropoff_location,omitempty" json:"dropoffLocation,omitempty"`
	Notes                      string           `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt                  time.Time        `bson:"created_at" json:"createdAt"`
	UpdatedAt                  time.Time        `bson:"updated_at" json:"updatedAt"`
}

// BookingLocation is a point descriptor. Deployments use either the
// pincode+city shape or the name+lat/lon shape; both are valid.
type BookingLocation struct {
	Name    string  `bson:"name,omitempty" json:"name,omitempty"`
	Pincode string  `bson:"pincode,omitempty" json:"pincode,omitempty"`
	City    string  `bson:"city,omitempty" json:"city,omitempty"`
	Address string  `bson:"address,omitempty" json:"address,omitempty"`
	Lat     float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Lon     float64 `bson:"lon,omitempty" json:"lon,omitempty"`
}

// IsActive reports whether the booking currently holds its time window.
func (b *Booking) IsActive() bool {
	for _, s := range ActiveStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

// TimeWindow is a [start, end] claim on a vehicle.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps uses inclusive boundaries: windows that merely touch count as
// overlapping. This matches the store query predicate and is intentional.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return !w.Start.After(other.End) && !w.End.Before(other.Start)
}

// Valid reports whether the window is well formed (start strictly before end).
func (w TimeWindow) Valid() bool {
	return w.Start.Before(w.End)
}

// Hours returns the window length in decimal hours.
func (w TimeWindow) Hours() float64 {
	return w.End.Sub(w.Start).Hours()
}

// Window returns the booking's claimed time window.
func (b *Booking) Window() TimeWindow {
	return TimeWindow{Start: b.StartTime, End: b.EndTime}
}
