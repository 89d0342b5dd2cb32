package atmosphere

import "math"

// BaseState is the temperature (K) and pressure (Pa) at the base of a layer.
type BaseState struct {
	Temperature float64 `json:"temperature_k"`
	Pressure    float64 `json:"pressure_pa"`
}

// advance carries a base state h meters up through layer l.
//
// Gradient layers use P = Pb * (T/Tb)^(-g0/(L*R)); isothermal layers use
// P = Pb * exp(-g0*h/(R*Tb)). A gradient continued past absolute zero has
// no pressure left, so the result is clamped to the zero state.
func (r Reference) advance(l Layer, base BaseState, h float64) BaseState {
	if l.LapseRate == 0 {
		return BaseState{
			Temperature: base.Temperature,
			Pressure:    base.Pressure * math.Exp(-r.G0*h/(r.R*base.Temperature)),
		}
	}
	t := base.Temperature + l.LapseRate*h
	if t <= 0 {
		return BaseState{}
	}
	return BaseState{
		Temperature: t,
		Pressure:    base.Pressure * math.Pow(t/base.Temperature, -r.G0/(l.LapseRate*r.R)),
	}
}

// resolveBaseStates folds the table from sea level upward. Entry 0 is the
// reference state; entry i is layer i-1 integrated over its full height,
// so each entry depends on every entry below it.
func resolveBaseStates(t LayerTable, r Reference) []BaseState {
	states := make([]BaseState, len(t.layers))
	if len(states) == 0 {
		return states
	}
	states[0] = BaseState{Temperature: r.T0, Pressure: r.P0}
	for i := 1; i < len(states); i++ {
		below := t.layers[i-1]
		states[i] = r.advance(below, states[i-1], below.Height())
	}
	return states
}
