package units

// Altitude unit constants
const (
	Meters     = "m"
	Feet       = "ft"
	Kilometers = "km"
)

// ValidAltitudeUnits contains all valid altitude unit values
var ValidAltitudeUnits = []string{Meters, Feet, Kilometers}

const metersPerFoot = 0.3048

// IsValidAltitude checks if the given unit is a valid altitude unit
func IsValidAltitude(unit string) bool {
	return isOneOf(unit, ValidAltitudeUnits)
}

// ValidAltitudeUnitsString returns the valid altitude units for error messages
func ValidAltitudeUnitsString() string {
	return joinUnits(ValidAltitudeUnits)
}

// ConvertAltitude converts meters to the target units.
func ConvertAltitude(meters float64, targetUnits string) float64 {
	switch targetUnits {
	case Feet:
		return meters / metersPerFoot
	case Kilometers:
		return meters / 1000
	default:
		return meters
	}
}

// AltitudeToMeters converts an altitude in the given units to meters.
func AltitudeToMeters(altitude float64, fromUnits string) float64 {
	switch fromUnits {
	case Feet:
		return altitude * metersPerFoot
	case Kilometers:
		return altitude * 1000
	default:
		return altitude
	}
}
