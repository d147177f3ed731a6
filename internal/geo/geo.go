package geo

import (
	"fmt"
	"math"

	"github.com/tripcast/api/internal/models"
)

// earthRadiusMiles is the mean Earth radius used for great-circle distances.
const earthRadiusMiles = 3959.0

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Constraints are the limits a candidate must satisfy to be admitted.
type Constraints struct {
	Budget      float64
	MaxDistance float64 // miles
}

// ValidationError reports a coordinate that cannot take part in distance
// math. Non-finite inputs are rejected up front instead of silently failing
// every comparison downstream.
type ValidationError struct {
	Field string
	Value float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be a finite coordinate, got %v", e.Field, e.Value)
}

// Validate checks that a latitude/longitude pair is finite.
func Validate(field string, lat, lng float64) error {
	if !finite(lat) {
		return &ValidationError{Field: field + ".lat", Value: lat}
	}
	if !finite(lng) {
		return &ValidationError{Field: field + ".lng", Value: lng}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Distance returns the great-circle distance between a and b in miles,
// computed with the haversine formula.
func Distance(a, b Coordinate) (float64, error) {
	if err := Validate("a", a.Lat, a.Lng); err != nil {
		return 0, err
	}
	if err := Validate("b", b.Lat, b.Lng); err != nil {
		return 0, err
	}

	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMiles * c, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Matches reports whether the candidate is both within reach of the origin
// and within budget. A candidate with no price counts as free.
func Matches(origin Coordinate, candidate models.Activity, limits Constraints) (bool, error) {
	d, err := Distance(origin, Coordinate{Lat: candidate.Lat, Lng: candidate.Lng})
	if err != nil {
		return false, err
	}
	return d <= limits.MaxDistance && candidate.Price <= limits.Budget, nil
}

// Filter returns the candidates admitted by Matches, in their original
// order. The first non-finite coordinate aborts the whole filter.
func Filter(origin Coordinate, candidates []models.Activity, limits Constraints) ([]models.Activity, error) {
	admitted := make([]models.Activity, 0, len(candidates))
	for _, c := range candidates {
		ok, err := Matches(origin, c, limits)
		if err != nil {
			return nil, err
		}
		if ok {
			admitted = append(admitted, c)
		}
	}
	return admitted, nil
}
