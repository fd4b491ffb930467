// Package geo validates and normalises WGS-84 (EPSG:4326) coordinates and
// search distances. Latitude is accepted in [-90, 90] and longitude in
// [-180, 180); the upper longitude bound is exclusive per ISO 6709:2008.
package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/wildwatch/sightings/internal/errors"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0 // exclusive

	// MaxDistanceKm is half the equatorial circumference. A radius this large
	// already covers the whole globe.
	MaxDistanceKm = 20037.5
)

// decimalPattern matches plain decimal notation with an optional exponent.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

var (
	ErrInvalidCoordinateFormat = errors.NewStd("invalid coordinate format")
	ErrCoordinateOutOfRange    = errors.NewStd("coordinate out of range")
	ErrInvalidDistance         = errors.NewStd("invalid distance")
)

// Point is a validated geographic position in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.Latitude, p.Longitude)
}

// ValidateCoordinates parses lat and lon and checks their ranges. Inputs may
// be strings, any Go numeric type or json.Number; NaN and infinities are
// treated as unparseable.
func ValidateCoordinates(lat, lon any) (Point, error) {
	latitude, err := parseFloat(lat)
	if err != nil {
		return Point{}, formatError("latitude", lat, err)
	}
	longitude, err := parseFloat(lon)
	if err != nil {
		return Point{}, formatError("longitude", lon, err)
	}

	if latitude < MinLatitude || latitude > MaxLatitude {
		return Point{}, rangeError("latitude", latitude, "must be between -90 and 90")
	}
	if longitude < MinLongitude || longitude >= MaxLongitude {
		return Point{}, rangeError("longitude", longitude, "must be in [-180, 180)")
	}

	return Point{Latitude: latitude, Longitude: longitude}, nil
}

// Validate re-checks an existing point.
func (p Point) Validate() error {
	_, err := ValidateCoordinates(p.Latitude, p.Longitude)
	return err
}

// ValidateDistance parses a search radius in kilometres. It must be finite
// and strictly positive; values above MaxDistanceKm are capped.
func ValidateDistance(d any) (float64, error) {
	km, err := parseFloat(d)
	if err != nil {
		return 0, errors.New(fmt.Errorf("%w: %v", ErrInvalidDistance, err)).
			Component("geo").
			Category(errors.CategoryValidation).
			Context("field", "distance").
			Context("constraint", "number").
			Build()
	}
	if km <= 0 {
		return 0, errors.New(fmt.Errorf("%w: distance must be greater than 0 km, got %g", ErrInvalidDistance, km)).
			Component("geo").
			Category(errors.CategoryValidation).
			Context("field", "distance").
			Context("constraint", "positive").
			Build()
	}
	return min(km, MaxDistanceKm), nil
}

// KilometresToMetres converts a validated radius for geography queries.
func KilometresToMetres(km float64) float64 {
	return km * 1000
}

func formatError(field string, value any, cause error) error {
	return errors.New(fmt.Errorf("%w: %s %v: %v", ErrInvalidCoordinateFormat, field, value, cause)).
		Component("geo").
		Category(errors.CategoryValidation).
		Context("field", field).
		Context("constraint", "number").
		Build()
}

func rangeError(field string, value float64, constraint string) error {
	return errors.New(fmt.Errorf("%w: %s %g %s", ErrCoordinateOutOfRange, field, value, constraint)).
		Component("geo").
		Category(errors.CategoryValidation).
		Context("field", field).
		Context("constraint", constraint).
		Build()
}

// parseFloat accepts the shapes coordinates arrive in from JSON bodies and
// query strings. Text must be plain decimal notation.
func parseFloat(v any) (float64, error) {
	var f float64

	switch n := v.(type) {
	case nil:
		return 0, errors.NewStd("value is missing")
	case bool:
		return 0, errors.NewStd("unsupported type bool")
	case json.Number:
		parsed, err := parseDecimal(string(n))
		if err != nil {
			return 0, err
		}
		f = parsed
	case string:
		parsed, err := parseDecimal(n)
		if err != nil {
			return 0, err
		}
		f = parsed
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		parsed, err := cast.ToFloat64E(n)
		if err != nil {
			return 0, err
		}
		f = parsed
	default:
		return 0, errors.NewStd(fmt.Sprintf("unsupported type %T", v))
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.NewStd("not a finite number")
	}
	return f, nil
}

func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.NewStd("value is empty")
	}
	if !decimalPattern.MatchString(s) {
		return 0, errors.NewStd("not a number")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// overflow past the float64 range
		return 0, errors.NewStd("not a finite number")
	}
	return f, nil
}
