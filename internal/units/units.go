// Package units provides shared constants and conversions for cursor speed units.
package units

import "strings"

// Unit constants
const (
	PxPerMs  = "px_ms"  // pixels per millisecond, the analysis unit
	PxPerSec = "px_s"   // pixels per second, the unit the study protocol is written in
	PxPerMs2 = "px_ms2" // pixels per millisecond squared (acceleration)
)

// ValidSpeedUnits contains all valid speed unit values
var ValidSpeedUnits = []string{PxPerMs, PxPerSec}

// IsValid checks if the given unit is a valid speed unit
func IsValid(unit string) bool {
	for _, validUnit := range ValidSpeedUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidSpeedUnits, ", ")
}

// ConvertSpeed converts a speed from px/ms to the target units.
// Analysis results are always stored in px/ms.
func ConvertSpeed(speedPxPerMs float64, targetUnits string) float64 {
	switch targetUnits {
	case PxPerSec:
		return speedPxPerMs * 1000
	default:
		return speedPxPerMs
	}
}

// ToPxPerMs converts a speed expressed in the given units back to px/ms.
// Unknown units are treated as px/ms.
func ToPxPerMs(speed float64, fromUnits string) float64 {
	switch fromUnits {
	case PxPerSec:
		return speed / 1000
	default:
		return speed
	}
}

// SampleRateHz returns the sampling frequency of a uniform grid with the given
// step in milliseconds. A non-positive step yields 0.
func SampleRateHz(dtMs float64) float64 {
	if dtMs <= 0 {
		return 0
	}
	return 1000 / dtMs
}
