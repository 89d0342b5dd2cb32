package units

// Temperature unit constants
const (
	Kelvin     = "k"
	Celsius    = "c"
	Fahrenheit = "f"
)

// ValidTemperatureUnits contains all valid temperature unit values
var ValidTemperatureUnits = []string{Kelvin, Celsius, Fahrenheit}

const zeroCelsius = 273.15

// IsValidTemperature checks if the given unit is a valid temperature unit
func IsValidTemperature(unit string) bool {
	return isOneOf(unit, ValidTemperatureUnits)
}

// ValidTemperatureUnitsString returns the valid temperature units for error messages
func ValidTemperatureUnitsString() string {
	return joinUnits(ValidTemperatureUnits)
}

// ConvertTemperature converts kelvin to the target units.
func ConvertTemperature(kelvin float64, targetUnits string) float64 {
	switch targetUnits {
	case Celsius:
		return kelvin - zeroCelsius
	case Fahrenheit:
		return (kelvin-zeroCelsius)*9/5 + 32
	default:
		return kelvin
	}
}

// TemperatureToKelvin converts a temperature in the given units to kelvin.
func TemperatureToKelvin(temp float64, fromUnits string) float64 {
	switch fromUnits {
	case Celsius:
		return temp + zeroCelsius
	case Fahrenheit:
		return (temp-32)*5/9 + zeroCelsius
	default:
		return temp
	}
}
