package units

import "fmt"

// Display is the unit chosen for each reported quantity. Values are
// computed in SI and converted on the way out.
type Display struct {
	Altitude    string `json:"altitude"`
	Temperature string `json:"temperature"`
	Pressure    string `json:"pressure"`
	Density     string `json:"density"`
	Speed       string `json:"speed"`
}

// SI returns the display set that leaves every value unchanged.
func SI() Display {
	return Display{
		Altitude:    Meters,
		Temperature: Kelvin,
		Pressure:    Pascal,
		Density:     KgPerM3,
		Speed:       MPS,
	}
}

// Validate reports the first unit that is not recognised.
func (d Display) Validate() error {
	checks := []struct {
		name, unit string
		ok         func(string) bool
		valid      func() string
	}{
		{"altitude", d.Altitude, IsValidAltitude, ValidAltitudeUnitsString},
		{"temperature", d.Temperature, IsValidTemperature, ValidTemperatureUnitsString},
		{"pressure", d.Pressure, IsValidPressure, ValidPressureUnitsString},
		{"density", d.Density, IsValidDensity, ValidDensityUnitsString},
		{"speed", d.Speed, IsValid, GetValidUnitsString},
	}
	for _, c := range checks {
		if !c.ok(c.unit) {
			return fmt.Errorf("invalid %s units %q: must be one of %s", c.name, c.unit, c.valid())
		}
	}
	return nil
}

// Unit returns the display unit for a quantity name as produced by
// atmosphere.Quantity.String. Unknown names return "".
func (d Display) Unit(quantity string) string {
	switch quantity {
	case "temperature":
		return d.Temperature
	case "pressure":
		return d.Pressure
	case "density":
		return d.Density
	case "speed_of_sound":
		return d.Speed
	case "altitude":
		return d.Altitude
	}
	return ""
}

// WithUnit returns a copy of d with the named quantity's unit replaced.
// Unknown quantities leave d unchanged.
func (d Display) WithUnit(quantity, unit string) Display {
	switch quantity {
	case "temperature":
		d.Temperature = unit
	case "pressure":
		d.Pressure = unit
	case "density":
		d.Density = unit
	case "speed_of_sound":
		d.Speed = unit
	case "altitude":
		d.Altitude = unit
	}
	return d
}

// Convert converts an SI value of the named quantity into its display unit.
// Unknown quantities pass through unchanged.
func (d Display) Convert(quantity string, si float64) float64 {
	switch quantity {
	case "temperature":
		return ConvertTemperature(si, d.Temperature)
	case "pressure":
		return ConvertPressure(si, d.Pressure)
	case "density":
		return ConvertDensity(si, d.Density)
	case "speed_of_sound":
		return ConvertSpeed(si, d.Speed)
	case "altitude":
		return ConvertAltitude(si, d.Altitude)
	}
	return si
}
