package validation

import (
	"errors"
	"strings"
	"unicode"
)

// ErrCityEmpty is returned when the city query is empty or whitespace-only after trim.
var ErrCityEmpty = errors.New("city is required")

// ErrCityTooLong is returned when the city query exceeds the maximum length.
var ErrCityTooLong = errors.New("city too long")

// ErrCityInvalidChars is returned when the city query contains disallowed characters.
var ErrCityInvalidChars = errors.New("city contains invalid characters")

// ErrLatitudeRange is returned when latitude is outside [-90, 90].
var ErrLatitudeRange = errors.New("latitude must be between -90 and 90")

// ErrLongitudeRange is returned when longitude is outside [-180, 180].
var ErrLongitudeRange = errors.New("longitude must be between -180 and 180")

// ErrInvalidUnits is returned when units is not metric, imperial or standard.
var ErrInvalidUnits = errors.New("units must be metric, imperial or standard")

const maxCityLen = 100

// ValidateCity trims the input, enforces a length bound, and restricts to
// allowed characters: letters (Unicode), digits, space, comma, period,
// apostrophe, hyphen. Returns the trimmed string or an error suitable for
// 400 responses.
func ValidateCity(input string) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	if len(r) == 0 {
		return "", ErrCityEmpty
	}
	if len(r) > maxCityLen {
		return "", ErrCityTooLong
	}
	for _, c := range r {
		if !isAllowedCityRune(c) {
			return "", ErrCityInvalidChars
		}
	}
	return s, nil
}

// isAllowedCityRune returns true for letters (Unicode), digits, space, comma,
// period, apostrophe, hyphen.
func isAllowedCityRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', ',', '.', '\'', '-':
		return true
	}
	return false
}

// ValidateCoordinates enforces the WGS84 ranges.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return ErrLatitudeRange
	}
	if lon < -180 || lon > 180 {
		return ErrLongitudeRange
	}
	return nil
}

// ValidateUnits normalizes and checks the unit system; empty defaults to
// metric.
func ValidateUnits(units string) (string, error) {
	u := strings.ToLower(strings.TrimSpace(units))
	if u == "" {
		return "metric", nil
	}
	switch u {
	case "metric", "imperial", "standard":
		return u, nil
	}
	return "", ErrInvalidUnits
}
