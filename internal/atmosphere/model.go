package atmosphere

import (
	"fmt"
	"math"
)

// Model answers atmosphere queries for one layer table and reference.
// It is immutable after New returns and safe for concurrent use.
type Model struct {
	layers LayerTable
	ref    Reference
	bases  []BaseState
	rho0   float64
}

// Conditions is the full atmospheric state at one altitude.
type Conditions struct {
	Altitude     float64 `json:"altitude_m"`
	Layer        int     `json:"layer"`
	LayerName    string  `json:"layer_name"`
	Extrapolated bool    `json:"extrapolated"`
	Temperature  float64 `json:"temperature_k"`
	Pressure     float64 `json:"pressure_pa"`
	Density      float64 `json:"density_kg_m3"`
	SpeedOfSound float64 `json:"speed_of_sound_m_s"`

	// Ratios to the sea-level reference (theta, delta, sigma).
	TemperatureRatio float64 `json:"temperature_ratio"`
	PressureRatio    float64 `json:"pressure_ratio"`
	DensityRatio     float64 `json:"density_ratio"`
}

// New validates the table and reference and resolves every layer's base
// state. The reference sea-level temperature must match the first layer.
func New(layers LayerTable, ref Reference) (*Model, error) {
	if err := layers.Validate(); err != nil {
		return nil, err
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if first := layers.layers[0].BaseTemperature; math.Abs(first-ref.T0) > baseTemperatureTolerance*ref.T0 {
		return nil, fmt.Errorf("%w: T0 %g does not match first layer base temperature %g", ErrInvalidReference, ref.T0, first)
	}
	return &Model{
		layers: NewLayerTable(layers.layers...),
		ref:    ref,
		bases:  resolveBaseStates(layers, ref),
		rho0:   ref.SeaLevelDensity(),
	}, nil
}

// MustNew is like New but panics on a malformed table or reference.
func MustNew(layers LayerTable, ref Reference) *Model {
	m, err := New(layers, ref)
	if err != nil {
		panic(err)
	}
	return m
}

var standard = MustNew(StandardLayers(), StandardReference())

// Standard returns the shared ISA model.
func Standard() *Model {
	return standard
}

// Layers returns the model's layer table.
func (m *Model) Layers() LayerTable {
	return m.layers
}

// Reference returns the model's sea-level reference.
func (m *Model) Reference() Reference {
	return m.ref
}

// BaseStates returns a copy of the resolved state at each layer base.
func (m *Model) BaseStates() []BaseState {
	return append([]BaseState(nil), m.bases...)
}

// BaseState returns the resolved state at the base of layer i.
func (m *Model) BaseState(i int) BaseState {
	return m.bases[i]
}

// Temperature returns the temperature in kelvin at altitude meters.
// Above the ceiling it holds the last layer's base temperature.
func (m *Model) Temperature(altitude float64) (float64, error) {
	i, err := m.layers.FindLayer(altitude)
	if err != nil {
		return 0, err
	}
	return m.temperatureIn(i, altitude), nil
}

// Pressure returns the pressure in pascals at altitude meters. Above the
// ceiling the last layer's formula is continued, so pressure keeps falling.
func (m *Model) Pressure(altitude float64) (float64, error) {
	i, err := m.layers.FindLayer(altitude)
	if err != nil {
		return 0, err
	}
	return m.pressureIn(i, altitude), nil
}

// Density returns the density in kg/m^3 from the ideal gas law.
func (m *Model) Density(altitude float64) (float64, error) {
	i, err := m.layers.FindLayer(altitude)
	if err != nil {
		return 0, err
	}
	return m.pressureIn(i, altitude) / (m.ref.R * m.temperatureIn(i, altitude)), nil
}

// SpeedOfSound returns sqrt(gamma*R*T) in m/s.
func (m *Model) SpeedOfSound(altitude float64) (float64, error) {
	t, err := m.Temperature(altitude)
	if err != nil {
		return 0, err
	}
	return m.soundSpeed(t), nil
}

// Conditions evaluates every quantity at altitude.
func (m *Model) Conditions(altitude float64) (Conditions, error) {
	i, err := m.layers.FindLayer(altitude)
	if err != nil {
		return Conditions{}, err
	}
	t := m.temperatureIn(i, altitude)
	p := m.pressureIn(i, altitude)
	rho := p / (m.ref.R * t)
	return Conditions{
		Altitude:         altitude,
		Layer:            i,
		LayerName:        m.layers.layers[i].Name,
		Extrapolated:     altitude > m.layers.Ceiling(),
		Temperature:      t,
		Pressure:         p,
		Density:          rho,
		SpeedOfSound:     m.soundSpeed(t),
		TemperatureRatio: t / m.ref.T0,
		PressureRatio:    p / m.ref.P0,
		DensityRatio:     rho / m.rho0,
	}, nil
}

func (m *Model) temperatureIn(i int, altitude float64) float64 {
	l := m.layers.layers[i]
	if altitude > l.TopAltitude {
		return m.bases[i].Temperature
	}
	return m.bases[i].Temperature + l.LapseRate*(altitude-l.BaseAltitude)
}

// pressureIn applies layer i's formula from its base. FindLayer only
// returns an index whose top is below altitude for the last layer, where
// the full distance is used to extrapolate.
func (m *Model) pressureIn(i int, altitude float64) float64 {
	l := m.layers.layers[i]
	h := altitude - l.BaseAltitude
	if i < len(m.layers.layers)-1 {
		h = math.Min(altitude, l.TopAltitude) - l.BaseAltitude
	}
	return m.ref.advance(l, m.bases[i], h).Pressure
}

func (m *Model) soundSpeed(t float64) float64 {
	return math.Sqrt(m.ref.Gamma * m.ref.R * t)
}

// Temperature queries the standard model.
func Temperature(altitude float64) (float64, error) {
	return standard.Temperature(altitude)
}

// Pressure queries the standard model.
func Pressure(altitude float64) (float64, error) {
	return standard.Pressure(altitude)
}

// Density queries the standard model.
func Density(altitude float64) (float64, error) {
	return standard.Density(altitude)
}

// SpeedOfSound queries the standard model.
func SpeedOfSound(altitude float64) (float64, error) {
	return standard.SpeedOfSound(altitude)
}
