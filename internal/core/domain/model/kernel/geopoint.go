package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// MinLatitude is the southernmost valid latitude in degrees.
	MinLatitude float64 = -90
	// MaxLatitude is the northernmost valid latitude in degrees.
	MaxLatitude float64 = 90
	// MinLongitude is the westernmost valid longitude in degrees.
	MinLongitude float64 = -180
	// MaxLongitude is the easternmost valid longitude in degrees.
	MaxLongitude float64 = 180

	// earthRadiusKm is the mean Earth radius used for great-circle distances.
	earthRadiusKm = 6371.0
)

// ErrGeoPointIsNotConstructed is returned when attempting to use an
// improperly initialized GeoPoint. GeoPoints must be created via NewGeoPoint
// to guarantee their coordinates are within valid bounds.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint constructor")

// GeoPoint is an immutable value object representing a position on the
// Earth's surface in decimal degrees. The zero value is invalid and fails
// validation; use NewGeoPoint to create instances.
//
// Example:
//
//	pickup, err := kernel.NewGeoPoint(40.7128, -74.0060)
//	if err != nil {
//	    // handle validation error
//	}
//	fmt.Println(pickup) // GeoPoint(40.712800,-74.006000)
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint creates a GeoPoint with the given latitude and longitude.
// Latitude must be within [MinLatitude, MaxLatitude] and longitude within
// [MinLongitude, MaxLongitude]. Returns an aggregated validation error if
// either coordinate is out of bounds.
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	p := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(p.setLat(lat), p.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

// Validate checks that the GeoPoint was created via NewGeoPoint.
// The zero value fails with ErrGeoPointIsNotConstructed.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Latitude returns the latitude in decimal degrees.
func (p GeoPoint) Latitude() float64 {
	return p.lat
}

// Longitude returns the longitude in decimal degrees.
func (p GeoPoint) Longitude() float64 {
	return p.lng
}

// String implements fmt.Stringer with the format "GeoPoint(lat,lng)".
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%f,%f)", p.lat, p.lng)
}

// IsEqual compares two points for coordinate equality. Both points must be
// properly constructed for the comparison to succeed.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return p.lat == other.lat && p.lng == other.lng, nil
}

// DistanceKm calculates the great-circle (haversine) distance between two
// points in kilometers. Both points must be properly constructed.
//
// The haversine formula assumes a spherical Earth with mean radius 6371 km,
// which is accurate to well under one percent for courier-scale distances.
func (p GeoPoint) DistanceKm(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := toRadians(p.lat)
	lat2 := toRadians(other.lat)
	dLat := toRadians(other.lat - p.lat)
	dLng := toRadians(other.lng - p.lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c, nil
}

// setLat sets the latitude with bounds validation.
// Pointer receiver is intentional: private setters enable self-encapsulated
// validation during construction.
func (p *GeoPoint) setLat(lat float64) error {
	if lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", lat, MinLatitude, MaxLatitude)
	}

	p.lat = lat
	return nil
}

// setLng sets the longitude with bounds validation.
func (p *GeoPoint) setLng(lng float64) error {
	if lng < MinLongitude || lng > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", lng, MinLongitude, MaxLongitude)
	}

	p.lng = lng
	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
