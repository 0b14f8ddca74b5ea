package domain

import (
	"math"
	"regexp"
)

// Validation Helpers

var originRegex = regexp.MustCompile(`^https?://[A-Za-z0-9.\-]+(:[0-9]{1,5})?$`)

// IsValidCoordinate checks that lat/lng are finite and within WGS84 bounds
func IsValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// IsValidOrigin checks if the string is a bare scheme://host[:port] browser origin
func IsValidOrigin(origin string) bool {
	return originRegex.MatchString(origin)
}
