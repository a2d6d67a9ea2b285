package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidationKind names the rule a query failed.
type ValidationKind string

const (
	KindEmptyLocation      ValidationKind = "EmptyLocation"
	KindInvalidLocation    ValidationKind = "InvalidLocation"
	KindInvalidCoordinates ValidationKind = "InvalidCoordinates"
)

// Sentinel errors matched with errors.Is against a *ValidationError.
var (
	ErrEmptyLocation      = errors.New("empty location")
	ErrInvalidLocation    = errors.New("invalid location")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// ValidationError is returned when a query is rejected before synthesis.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel for the failed rule.
func (e *ValidationError) Unwrap() error {
	switch e.Kind {
	case KindEmptyLocation:
		return ErrEmptyLocation
	case KindInvalidLocation:
		return ErrInvalidLocation
	case KindInvalidCoordinates:
		return ErrInvalidCoordinates
	default:
		return nil
	}
}

// minPlaceNameLength is the shortest location accepted when it has no comma.
const minPlaceNameLength = 3

// reservedLocations always fail validation so callers can exercise error paths.
var reservedLocations = map[string]struct{}{
	"error":   {},
	"invalid": {},
}

// Validate checks a location and date before synthesis. The location is
// echoed verbatim in the result; trimming only affects the checks.
func Validate(location string, date time.Time) (ValidatedInput, error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return ValidatedInput{}, &ValidationError{
			Kind:    KindEmptyLocation,
			Message: "Please enter a valid location.",
		}
	}

	hasComma := strings.Contains(trimmed, ",")
	if !hasComma && utf8.RuneCountInString(trimmed) < minPlaceNameLength {
		return ValidatedInput{}, &ValidationError{
			Kind:    KindInvalidLocation,
			Message: "Location must be at least 3 characters or a \"latitude, longitude\" pair.",
		}
	}

	in := ValidatedInput{Location: location, Date: date}

	if lat, lon, ok := parseCoordinates(trimmed); ok {
		if !inRange(lat, -90, 90) || !inRange(lon, -180, 180) {
			return ValidatedInput{}, &ValidationError{
				Kind:    KindInvalidCoordinates,
				Message: "Coordinates out of range: latitude must be between -90 and 90, longitude between -180 and 180.",
			}
		}
		in.Coordinates = &Geo{Lat: lat, Lon: lon}
		return in, nil
	}

	if _, reserved := reservedLocations[strings.ToLower(trimmed)]; reserved {
		return ValidatedInput{}, &ValidationError{
			Kind:    KindInvalidLocation,
			Message: "Could not fetch weather data for the specified location.",
		}
	}

	return in, nil
}

// parseCoordinates splits "lat, lon" on its single comma. It reports false
// unless there are exactly two tokens and both parse as numbers.
func parseCoordinates(location string) (lat, lon float64, ok bool) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}

	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// inRange is false for NaN.
func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}
