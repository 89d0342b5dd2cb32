package units

// Speed unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
	KT   = "kt"
)

// ValidUnits contains all valid speed unit values
var ValidUnits = []string{MPS, MPH, KMPH, KPH, KT}

// IsValid checks if the given unit is a valid speed unit
func IsValid(unit string) bool {
	return isOneOf(unit, ValidUnits)
}

// GetValidUnitsString returns a comma-separated string of valid speed units for error messages
func GetValidUnitsString() string {
	return joinUnits(ValidUnits)
}

// ConvertSpeed converts a speed from meters per second to the target units.
// Unknown units are returned as m/s.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return speedMPS * 3.6
	case KT:
		return speedMPS / 0.514444
	default:
		return speedMPS
	}
}

// SpeedToMPS converts a speed in the given units back to meters per second.
func SpeedToMPS(speed float64, fromUnits string) float64 {
	switch fromUnits {
	case MPH:
		return speed / 2.2369362920544
	case KMPH, KPH:
		return speed / 3.6
	case KT:
		return speed * 0.514444
	default:
		return speed
	}
}
