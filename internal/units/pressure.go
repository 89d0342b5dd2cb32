package units

// Pressure unit constants
const (
	Pascal      = "pa"
	Hectopascal = "hpa"
	Kilopascal  = "kpa"
	Millibar    = "mbar"
	InchesHg    = "inhg"
	PSI         = "psi"
	Atmosphere  = "atm"
)

// ValidPressureUnits contains all valid pressure unit values
var ValidPressureUnits = []string{Pascal, Hectopascal, Kilopascal, Millibar, InchesHg, PSI, Atmosphere}

// pascalsPer holds the size of one unit in pascals.
var pascalsPer = map[string]float64{
	Pascal:      1,
	Hectopascal: 100,
	Kilopascal:  1000,
	Millibar:    100,
	InchesHg:    3386.389,
	PSI:         6894.757,
	Atmosphere:  101325,
}

// IsValidPressure checks if the given unit is a valid pressure unit
func IsValidPressure(unit string) bool {
	return isOneOf(unit, ValidPressureUnits)
}

// ValidPressureUnitsString returns the valid pressure units for error messages
func ValidPressureUnitsString() string {
	return joinUnits(ValidPressureUnits)
}

// ConvertPressure converts pascals to the target units. Unknown units are
// returned as pascals.
func ConvertPressure(pascals float64, targetUnits string) float64 {
	if f, ok := pascalsPer[targetUnits]; ok {
		return pascals / f
	}
	return pascals
}

// PressureToPascals converts a pressure in the given units to pascals.
func PressureToPascals(pressure float64, fromUnits string) float64 {
	if f, ok := pascalsPer[fromUnits]; ok {
		return pressure * f
	}
	return pressure
}
