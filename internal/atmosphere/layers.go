// Package atmosphere implements the layered International Standard
// Atmosphere (ISA): temperature, pressure, density and speed of sound as a
// function of geopotential altitude up to the top of the mesosphere.
//
// A Model is built once from a LayerTable and a Reference. Construction
// resolves the temperature and pressure at the base of every layer by
// integrating upward from sea level; every query afterwards touches a
// single layer and is safe for concurrent use.
package atmosphere

import (
	"fmt"
	"math"
	"sort"
)

// baseTemperatureTolerance bounds the mismatch between a layer's stated base
// temperature and the temperature reached at the top of the layer below.
const baseTemperatureTolerance = 1e-9

// Layer is one band of the atmosphere with a constant lapse rate.
type Layer struct {
	Name            string  `json:"name"`
	BaseAltitude    float64 `json:"base_altitude_m"`
	TopAltitude     float64 `json:"top_altitude_m"`
	BaseTemperature float64 `json:"base_temperature_k"`
	LapseRate       float64 `json:"lapse_rate_k_per_m"` // 0 means isothermal
}

// Height returns the thickness of the layer in meters.
func (l Layer) Height() float64 {
	return l.TopAltitude - l.BaseAltitude
}

// Isothermal reports whether temperature is constant through the layer.
func (l Layer) Isothermal() bool {
	return l.LapseRate == 0
}

// LayerTable is an ordered, immutable sequence of contiguous layers
// starting at sea level. The zero value is an empty (invalid) table.
type LayerTable struct {
	layers []Layer
}

// NewLayerTable copies layers into a table. The table is not validated
// until it is passed to New or Validate is called.
func NewLayerTable(layers ...Layer) LayerTable {
	return LayerTable{layers: append([]Layer(nil), layers...)}
}

// StandardLayers returns the seven ISA layers from sea level to 84 852 m.
func StandardLayers() LayerTable {
	return NewLayerTable(
		Layer{Name: "Troposphere", BaseAltitude: 0, TopAltitude: 11000, BaseTemperature: 288.15, LapseRate: -0.0065},
		Layer{Name: "Tropopause", BaseAltitude: 11000, TopAltitude: 20000, BaseTemperature: 216.65, LapseRate: 0},
		Layer{Name: "Stratosphere", BaseAltitude: 20000, TopAltitude: 32000, BaseTemperature: 216.65, LapseRate: 0.001},
		Layer{Name: "Stratosphere 2", BaseAltitude: 32000, TopAltitude: 47000, BaseTemperature: 228.65, LapseRate: 0.0028},
		Layer{Name: "Stratopause", BaseAltitude: 47000, TopAltitude: 51000, BaseTemperature: 270.65, LapseRate: 0},
		Layer{Name: "Mesosphere", BaseAltitude: 51000, TopAltitude: 71000, BaseTemperature: 270.65, LapseRate: -0.0028},
		Layer{Name: "Mesosphere 2", BaseAltitude: 71000, TopAltitude: 84852, BaseTemperature: 214.65, LapseRate: -0.002},
	)
}

// Len returns the number of layers.
func (t LayerTable) Len() int {
	return len(t.layers)
}

// Layer returns the i-th layer. It panics if i is out of bounds.
func (t LayerTable) Layer(i int) Layer {
	return t.layers[i]
}

// Layers returns a copy of the layers in altitude order.
func (t LayerTable) Layers() []Layer {
	return append([]Layer(nil), t.layers...)
}

// Ceiling returns the top altitude of the last layer, or 0 for an empty table.
func (t LayerTable) Ceiling() float64 {
	if len(t.layers) == 0 {
		return 0
	}
	return t.layers[len(t.layers)-1].TopAltitude
}

// Validate checks that the table starts at sea level, that every layer has
// positive thickness, that layers are contiguous, and that each stated base
// temperature matches the temperature at the top of the layer below.
func (t LayerTable) Validate() error {
	if len(t.layers) == 0 {
		return fmt.Errorf("%w: no layers", ErrInvalidLayerTable)
	}
	if t.layers[0].BaseAltitude != 0 {
		return fmt.Errorf("%w: first layer must start at 0 m, got %g", ErrInvalidLayerTable, t.layers[0].BaseAltitude)
	}
	for i, l := range t.layers {
		for _, v := range []float64{l.BaseAltitude, l.TopAltitude, l.BaseTemperature, l.LapseRate} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: layer %d (%s) has a non-finite value", ErrInvalidLayerTable, i, l.Name)
			}
		}
		if l.TopAltitude <= l.BaseAltitude {
			return fmt.Errorf("%w: layer %d (%s) top %g must be above base %g",
				ErrInvalidLayerTable, i, l.Name, l.TopAltitude, l.BaseAltitude)
		}
		if l.BaseTemperature <= 0 {
			return fmt.Errorf("%w: layer %d (%s) base temperature must be positive, got %g",
				ErrInvalidLayerTable, i, l.Name, l.BaseTemperature)
		}
		if top := l.BaseTemperature + l.LapseRate*l.Height(); top <= 0 {
			return fmt.Errorf("%w: layer %d (%s) cools below 0 K at its top", ErrInvalidLayerTable, i, l.Name)
		}
		if i == 0 {
			continue
		}
		prev := t.layers[i-1]
		if prev.TopAltitude != l.BaseAltitude {
			return fmt.Errorf("%w: gap between layer %d top %g and layer %d base %g",
				ErrInvalidLayerTable, i-1, prev.TopAltitude, i, l.BaseAltitude)
		}
		reached := prev.BaseTemperature + prev.LapseRate*prev.Height()
		if math.Abs(reached-l.BaseTemperature) > baseTemperatureTolerance*math.Max(1, l.BaseTemperature) {
			return fmt.Errorf("%w: layer %d (%s) base temperature %g does not match %g reached by layer %d",
				ErrInvalidLayerTable, i, l.Name, l.BaseTemperature, reached, i-1)
		}
	}
	return nil
}

// FindLayer returns the index of the layer containing altitude. Layers are
// half-open [base, top), so an altitude on a boundary belongs to the upper
// layer. Altitudes at or above the ceiling map to the last layer. Negative
// or NaN altitudes return an error matching ErrOutOfRange.
func (t LayerTable) FindLayer(altitude float64) (int, error) {
	if math.IsNaN(altitude) || altitude < 0 {
		return 0, altitudeOutOfRange(altitude)
	}
	if len(t.layers) == 0 {
		return 0, fmt.Errorf("%w: no layers", ErrInvalidLayerTable)
	}
	i := sort.Search(len(t.layers), func(i int) bool {
		return t.layers[i].TopAltitude > altitude
	})
	if i == len(t.layers) {
		i = len(t.layers) - 1
	}
	return i, nil
}
