package atmosphere

import (
	"fmt"
	"iter"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Quantity selects which atmospheric property a profile samples.
type Quantity int

const (
	QuantityTemperature Quantity = iota
	QuantityPressure
	QuantityDensity
	QuantitySpeedOfSound
)

// Quantities lists every Quantity in display order.
var Quantities = []Quantity{QuantityTemperature, QuantityPressure, QuantityDensity, QuantitySpeedOfSound}

func (q Quantity) String() string {
	switch q {
	case QuantityTemperature:
		return "temperature"
	case QuantityPressure:
		return "pressure"
	case QuantityDensity:
		return "density"
	case QuantitySpeedOfSound:
		return "speed_of_sound"
	default:
		return fmt.Sprintf("Quantity(%d)", int(q))
	}
}

// Unit returns the SI unit symbol values of q are reported in.
func (q Quantity) Unit() string {
	switch q {
	case QuantityTemperature:
		return "K"
	case QuantityPressure:
		return "Pa"
	case QuantityDensity:
		return "kg/m³"
	case QuantitySpeedOfSound:
		return "m/s"
	default:
		return ""
	}
}

// ParseQuantity accepts the String form of a Quantity and a few short aliases.
func ParseQuantity(s string) (Quantity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "temperature", "temp", "t":
		return QuantityTemperature, nil
	case "pressure", "p":
		return QuantityPressure, nil
	case "density", "rho":
		return QuantityDensity, nil
	case "speed_of_sound", "speed-of-sound", "sound", "a":
		return QuantitySpeedOfSound, nil
	}
	return 0, fmt.Errorf("%w: unknown quantity %q", ErrInvalidProfile, s)
}

// ProfilePoint is one sample of a profile.
type ProfilePoint struct {
	Altitude float64 `json:"altitude_m"`
	Value    float64 `json:"value"`
}

// Value evaluates quantity q at altitude.
func (m *Model) Value(q Quantity, altitude float64) (float64, error) {
	switch q {
	case QuantityTemperature:
		return m.Temperature(altitude)
	case QuantityPressure:
		return m.Pressure(altitude)
	case QuantityDensity:
		return m.Density(altitude)
	case QuantitySpeedOfSound:
		return m.SpeedOfSound(altitude)
	}
	return 0, fmt.Errorf("%w: unknown quantity %d", ErrInvalidProfile, int(q))
}

// SampleProfile evaluates q at count evenly spaced altitudes from 0 to
// maxAltitude inclusive. A count of 1 samples sea level only.
func (m *Model) SampleProfile(q Quantity, maxAltitude float64, count int) ([]ProfilePoint, error) {
	alts, err := profileAltitudes(maxAltitude, count)
	if err != nil {
		return nil, err
	}
	points := make([]ProfilePoint, len(alts))
	for i, h := range alts {
		v, err := m.Value(q, h)
		if err != nil {
			return nil, err
		}
		points[i] = ProfilePoint{Altitude: h, Value: v}
	}
	return points, nil
}

// Profile is the lazy form of SampleProfile. Each range over the returned
// sequence starts again from sea level. An invalid request yields nothing;
// call SampleProfile to get the error.
func (m *Model) Profile(q Quantity, maxAltitude float64, count int) iter.Seq2[float64, float64] {
	return func(yield func(float64, float64) bool) {
		alts, err := profileAltitudes(maxAltitude, count)
		if err != nil {
			return
		}
		for _, h := range alts {
			v, err := m.Value(q, h)
			if err != nil || !yield(h, v) {
				return
			}
		}
	}
}

// MaxProfileSamples is the largest sample count a profile may request.
const MaxProfileSamples = 100000

// CheckProfile returns the error SampleProfile would report for
// maxAltitude and count, or nil if they are acceptable.
func CheckProfile(maxAltitude float64, count int) error {
	if count < 1 || count > MaxProfileSamples {
		return fmt.Errorf("%w: count must be between 1 and %d, got %d", ErrInvalidProfile, MaxProfileSamples, count)
	}
	if math.IsNaN(maxAltitude) || math.IsInf(maxAltitude, 0) || maxAltitude < 0 {
		return fmt.Errorf("%w: max altitude must be finite and non-negative, got %g", ErrInvalidProfile, maxAltitude)
	}
	return nil
}

func profileAltitudes(maxAltitude float64, count int) ([]float64, error) {
	if err := CheckProfile(maxAltitude, count); err != nil {
		return nil, err
	}
	if count == 1 {
		return []float64{0}, nil
	}
	alts := floats.Span(make([]float64, count), 0, maxAltitude)
	alts[count-1] = maxAltitude
	return alts, nil
}
