package units

// Density unit constants
const (
	KgPerM3    = "kgm3"
	SlugPerFt3 = "slugft3"
)

// ValidDensityUnits contains all valid density unit values
var ValidDensityUnits = []string{KgPerM3, SlugPerFt3}

const kgM3PerSlugFt3 = 515.378818

// IsValidDensity checks if the given unit is a valid density unit
func IsValidDensity(unit string) bool {
	return isOneOf(unit, ValidDensityUnits)
}

// ValidDensityUnitsString returns the valid density units for error messages
func ValidDensityUnitsString() string {
	return joinUnits(ValidDensityUnits)
}

// ConvertDensity converts kg/m^3 to the target units.
func ConvertDensity(kgM3 float64, targetUnits string) float64 {
	if targetUnits == SlugPerFt3 {
		return kgM3 / kgM3PerSlugFt3
	}
	return kgM3
}
