package atmosphere

import (
	"math"
	"sort"
)

// PressureAltitude returns the altitude at which the model pressure equals
// p pascals. Pressures below the ceiling value invert the extrapolated last
// layer, matching Pressure. p must be in (0, P0].
func (m *Model) PressureAltitude(p float64) (float64, error) {
	if math.IsNaN(p) || p <= 0 || p > m.ref.P0 {
		return 0, &OutOfRangeError{Input: "pressure", Value: p, Reason: "must be above 0 Pa and at most the sea-level pressure"}
	}
	// Base pressures strictly decrease; pick the highest base still at or above p.
	i := sort.Search(len(m.bases), func(i int) bool {
		return m.bases[i].Pressure < p
	}) - 1
	l := m.layers.layers[i]
	b := m.bases[i]
	if l.LapseRate == 0 {
		return l.BaseAltitude - m.ref.R*b.Temperature/m.ref.G0*math.Log(p/b.Pressure), nil
	}
	t := b.Temperature * math.Pow(p/b.Pressure, -l.LapseRate*m.ref.R/m.ref.G0)
	return l.BaseAltitude + (t-b.Temperature)/l.LapseRate, nil
}

// Mach returns the Mach number of trueAirspeed (m/s) at altitude.
func (m *Model) Mach(altitude, trueAirspeed float64) (float64, error) {
	if math.IsNaN(trueAirspeed) || trueAirspeed < 0 {
		return 0, &OutOfRangeError{Input: "airspeed", Value: trueAirspeed, Reason: "must be non-negative"}
	}
	a, err := m.SpeedOfSound(altitude)
	if err != nil {
		return 0, err
	}
	return trueAirspeed / a, nil
}

// TrueAirspeed converts an equivalent airspeed (m/s) to true airspeed at
// altitude: TAS = EAS / sqrt(sigma).
func (m *Model) TrueAirspeed(altitude, equivalentAirspeed float64) (float64, error) {
	sigma, err := m.densityRatio(altitude, equivalentAirspeed)
	if err != nil {
		return 0, err
	}
	return equivalentAirspeed / math.Sqrt(sigma), nil
}

// EquivalentAirspeed converts a true airspeed (m/s) to equivalent airspeed.
func (m *Model) EquivalentAirspeed(altitude, trueAirspeed float64) (float64, error) {
	sigma, err := m.densityRatio(altitude, trueAirspeed)
	if err != nil {
		return 0, err
	}
	return trueAirspeed * math.Sqrt(sigma), nil
}

func (m *Model) densityRatio(altitude, airspeed float64) (float64, error) {
	if math.IsNaN(airspeed) || airspeed < 0 {
		return 0, &OutOfRangeError{Input: "airspeed", Value: airspeed, Reason: "must be non-negative"}
	}
	rho, err := m.Density(altitude)
	if err != nil {
		return 0, err
	}
	if rho <= 0 {
		return 0, &OutOfRangeError{Input: "altitude", Value: altitude, Reason: "density is zero at this altitude"}
	}
	return rho / m.rho0, nil
}

// Airspeeds is one airspeed expressed as true airspeed, equivalent
// airspeed and Mach number at a given altitude.
type Airspeeds struct {
	TrueAirspeed       float64 `json:"tas_m_s"`
	EquivalentAirspeed float64 `json:"eas_m_s"`
	Mach               float64 `json:"mach"`
}

// AirspeedsFromTAS resolves the equivalent airspeed and Mach number of a
// true airspeed (m/s) at altitude.
func (m *Model) AirspeedsFromTAS(altitude, tas float64) (Airspeeds, error) {
	eas, err := m.EquivalentAirspeed(altitude, tas)
	if err != nil {
		return Airspeeds{}, err
	}
	mach, err := m.Mach(altitude, tas)
	if err != nil {
		return Airspeeds{}, err
	}
	return Airspeeds{TrueAirspeed: tas, EquivalentAirspeed: eas, Mach: mach}, nil
}

// AirspeedsFromEAS resolves the true airspeed and Mach number of an
// equivalent airspeed (m/s) at altitude.
func (m *Model) AirspeedsFromEAS(altitude, eas float64) (Airspeeds, error) {
	tas, err := m.TrueAirspeed(altitude, eas)
	if err != nil {
		return Airspeeds{}, err
	}
	mach, err := m.Mach(altitude, tas)
	if err != nil {
		return Airspeeds{}, err
	}
	return Airspeeds{TrueAirspeed: tas, EquivalentAirspeed: eas, Mach: mach}, nil
}
