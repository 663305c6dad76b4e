package services

import (
	"math"
	"strconv"
)

// Ride duration estimation. Pure computation, no I/O: given two route points
// the estimator derives an expected trip length in hours. Two point shapes
// exist across deployments, a 6-digit pincode and a lat/lon pair; the
// estimator picks the formula by which shape both endpoints carry.

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RidePoint is a tagged route endpoint: pincode or geo coordinates.
type RidePoint struct {
	Pincode string
	Geo     *GeoPoint
}

func PincodePoint(pincode string) RidePoint {
	return RidePoint{Pincode: pincode}
}

func GeoRidePoint(lat, lon float64) RidePoint {
	return RidePoint{Geo: &GeoPoint{Lat: lat, Lon: lon}}
}

func (p RidePoint) hasPincode() bool {
	return p.Pincode != ""
}

// hasGeo treats zero coordinates as degenerate, matching the upstream
// geocoder which never returns exact zeros for a real place.
func (p RidePoint) hasGeo() bool {
	return p.Geo != nil && p.Geo.Lat != 0 && p.Geo.Lon != 0
}

type EstimatorConfig struct {
	// AverageSpeedKmph is the assumed cruising speed for a logistics vehicle.
	AverageSpeedKmph float64
	// RoadPaddingFactor converts straight-line distance to estimated road distance.
	RoadPaddingFactor float64
	// FallbackHours is returned when a usable point pair is missing.
	FallbackHours float64
	// MinimumHours is the floor applied to every estimate.
	MinimumHours float64
}

func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		AverageSpeedKmph:  50,
		RoadPaddingFactor: 1.4,
		FallbackHours:     8,
		MinimumHours:      0.5,
	}
}

type RideEstimator struct {
	config EstimatorConfig
}

func NewRideEstimator(config EstimatorConfig) *RideEstimator {
	return &RideEstimator{config: config}
}

// Estimate selects the formula by point shape. Pincode pairs use the modular
// pincode distance; geo pairs use haversine. Anything else falls back to the
// configured default duration rather than failing.
func (e *RideEstimator) Estimate(from, to RidePoint) float64 {
	if from.hasPincode() && to.hasPincode() {
		return e.EstimateByPincode(from.Pincode, to.Pincode)
	}
	if from.hasGeo() && to.hasGeo() {
		return e.EstimateByGeo(from.Geo, to.Geo)
	}
	return e.config.FallbackHours
}

// EstimateByPincode derives hours from the absolute pincode difference,
// wrapped modulo 24. An exact multiple of 24 means a full day, not zero.
func (e *RideEstimator) EstimateByPincode(fromPincode, toPincode string) float64 {
	from, err := strconv.Atoi(fromPincode)
	if err != nil {
		return e.config.FallbackHours
	}
	to, err := strconv.Atoi(toPincode)
	if err != nil {
		return e.config.FallbackHours
	}

	raw := from - to
	if raw < 0 {
		raw = -raw
	}

	hours := float64(raw % 24)
	if hours == 0 && raw != 0 {
		hours = 24
	}
	if hours < e.config.MinimumHours {
		hours = e.config.MinimumHours
	}

	return hours
}

// EstimateByGeo estimates road travel time between two coordinates: haversine
// distance padded to road distance, divided by average speed, rounded up to
// whole hours. Missing or degenerate points yield the fallback duration.
func (e *RideEstimator) EstimateByGeo(from, to *GeoPoint) float64 {
	if !(RidePoint{Geo: from}).hasGeo() || !(RidePoint{Geo: to}).hasGeo() {
		return e.config.FallbackHours
	}

	distanceKm := haversineKm(*from, *to)
	roadKm := distanceKm * e.config.RoadPaddingFactor

	return math.Ceil(roadKm / e.config.AverageSpeedKmph)
}

const earthRadiusKm = 6371.0

func haversineKm(a, b GeoPoint) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
