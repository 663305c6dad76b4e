package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Vehicle struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name" validate:"required,max=100"`
	CapacityKg   int                `bson:"capacity_kg" json:"capacityKg" validate:"required,min=1,max=1000000"`
	Tyres        int                `bson:"tyres" json:"tyres" validate:"required,min=1,max=6"`
	PricePerHour float64            `bson:"price_per_hour" json:"pricePerHour"`
	// IsAvailable is a cached hint only. The authoritative availability state
	// is "no active booking with an overlapping window".
	IsAvailable bool            `bson:"is_available" json:"isAvailable"`
	Location    VehicleLocation `bson:"location" json:"location"`
	Features    []string        `bson:"features" json:"features"`
	Images      []string        `bson:"images" json:"images"`
	CreatedAt   time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updated_at" json:"updatedAt"`
}

type VehicleLocation struct {
	Pincode string `bson:"pincode" json:"pincode"`
	City    string `bson:"city" json:"city"`
}

// AvailableVehicle is a vehicle that survived the overlap filter, annotated
// with the estimated ride duration for the searched route.
type AvailableVehicle struct {
	Vehicle
	EstimatedRideDurationHours float64 `bson:"-" json:"estimatedRideDurationHours"`
}
