package atmosphere

import (
	"fmt"
	"math"
)

// Reference holds the sea-level state and physical constants a Model is
// built from. All values are SI.
type Reference struct {
	T0    float64 `json:"t0_k"`     // sea-level temperature
	P0    float64 `json:"p0_pa"`    // sea-level pressure
	G0    float64 `json:"g0_m_s2"`  // standard gravity
	R     float64 `json:"r_j_kg_k"` // specific gas constant for dry air
	Gamma float64 `json:"gamma"`    // ratio of specific heats
}

// StandardReference returns the ISA sea-level reference.
func StandardReference() Reference {
	return Reference{
		T0:    288.15,
		P0:    101325,
		G0:    9.80665,
		R:     287.058,
		Gamma: 1.4,
	}
}

// Validate checks that every constant is finite and positive.
func (r Reference) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"T0", r.T0},
		{"P0", r.P0},
		{"g0", r.G0},
		{"R", r.R},
		{"gamma", r.Gamma},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v <= 0 {
			return fmt.Errorf("%w: %s must be finite and positive, got %g", ErrInvalidReference, f.name, f.v)
		}
	}
	return nil
}

// SeaLevelDensity returns P0 / (R * T0), about 1.225 kg/m^3 for ISA.
func (r Reference) SeaLevelDensity() float64 {
	return r.P0 / (r.R * r.T0)
}
