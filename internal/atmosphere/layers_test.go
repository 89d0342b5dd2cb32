package atmosphere

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardLayersValidate(t *testing.T) {
	table := StandardLayers()
	require.NoError(t, table.Validate())
	assert.Equal(t, 7, table.Len())
	assert.Equal(t, 84852.0, table.Ceiling())
	assert.Equal(t, "Troposphere", table.Layer(0).Name)
	assert.True(t, table.Layer(1).Isothermal())
	assert.False(t, table.Layer(2).Isothermal())
}

func TestLayersReturnsCopy(t *testing.T) {
	table := StandardLayers()
	layers := table.Layers()
	layers[0].BaseTemperature = 1

	if diff := cmp.Diff(StandardLayers().Layers(), table.Layers()); diff != "" {
		t.Errorf("table mutated through Layers() (-want +got):\n%s", diff)
	}
}

func TestLayerTableValidate_Invalid(t *testing.T) {
	std := StandardLayers().Layers()

	mutate := func(f func(l []Layer) []Layer) LayerTable {
		l := append([]Layer(nil), std...)
		return NewLayerTable(f(l)...)
	}

	tests := []struct {
		name  string
		table LayerTable
	}{
		{"empty", LayerTable{}},
		{"not at sea level", mutate(func(l []Layer) []Layer { l[0].BaseAltitude = 10; return l })},
		{"gap between layers", mutate(func(l []Layer) []Layer { l[1].BaseAltitude = 11500; return l })},
		{"overlapping layers", mutate(func(l []Layer) []Layer { l[2].BaseAltitude = 19000; return l })},
		{"zero thickness", mutate(func(l []Layer) []Layer { l[1].TopAltitude = l[1].BaseAltitude; return l })},
		{"out of order", mutate(func(l []Layer) []Layer { l[1], l[2] = l[2], l[1]; return l })},
		{"non-finite lapse", mutate(func(l []Layer) []Layer { l[3].LapseRate = math.NaN(); return l })},
		{"non-positive temperature", mutate(func(l []Layer) []Layer { l[0].BaseTemperature = 0; return l })},
		{"inconsistent base temperature", mutate(func(l []Layer) []Layer { l[2].BaseTemperature = 220; return l })},
		{"cools below absolute zero", NewLayerTable(Layer{Name: "cold", TopAltitude: 1000, BaseTemperature: 1, LapseRate: -0.01})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidLayerTable), "got %v", err)
		})
	}
}

func TestFindLayer(t *testing.T) {
	table := StandardLayers()

	tests := []struct {
		name     string
		altitude float64
		want     int
	}{
		{"sea level", 0, 0},
		{"mid troposphere", 5000, 0},
		{"just below tropopause", 10999.999, 0},
		{"tropopause boundary goes up", 11000, 1},
		{"stratosphere boundary", 20000, 2},
		{"stratosphere 2 boundary", 32000, 3},
		{"stratopause boundary", 47000, 4},
		{"mesosphere boundary", 51000, 5},
		{"mesosphere 2 boundary", 71000, 6},
		{"ceiling is closed", 84852, 6},
		{"above ceiling", 90000, 6},
		{"infinity", math.Inf(1), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.FindLayer(tt.altitude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindLayer_OutOfRange(t *testing.T) {
	table := StandardLayers()
	for _, alt := range []float64{-1, -0.0001, math.Inf(-1), math.NaN()} {
		_, err := table.FindLayer(alt)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOutOfRange)

		var oor *OutOfRangeError
		require.ErrorAs(t, err, &oor)
		assert.Equal(t, "altitude", oor.Input)
	}
}

func TestReferenceValidate(t *testing.T) {
	require.NoError(t, StandardReference().Validate())
	assert.InEpsilon(t, 1.225, StandardReference().SeaLevelDensity(), 1e-3)

	bad := StandardReference()
	bad.R = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidReference)

	bad = StandardReference()
	bad.G0 = math.Inf(1)
	assert.ErrorIs(t, bad.Validate(), ErrInvalidReference)
}
