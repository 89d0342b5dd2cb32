package atmosphere

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleProfile(t *testing.T) {
	m := Standard()

	points, err := m.SampleProfile(QuantityTemperature, 80000, 5)
	require.NoError(t, err)
	require.Len(t, points, 5)

	wantAlts := []float64{0, 20000, 40000, 60000, 80000}
	for i, p := range points {
		assert.InDelta(t, wantAlts[i], p.Altitude, 1e-9)
		v, err := m.Temperature(p.Altitude)
		require.NoError(t, err)
		assert.Equal(t, v, p.Value)
	}
	assert.Equal(t, 80000.0, points[4].Altitude)
}

func TestSampleProfile_EveryQuantity(t *testing.T) {
	m := Standard()
	for _, q := range Quantities {
		t.Run(q.String(), func(t *testing.T) {
			points, err := m.SampleProfile(q, 84852, 200)
			require.NoError(t, err)
			require.Len(t, points, 200)
			for _, p := range points {
				want, err := m.Value(q, p.Altitude)
				require.NoError(t, err)
				assert.Equal(t, want, p.Value)
				assert.Greater(t, p.Value, 0.0)
			}
		})
	}
}

func TestSampleProfile_SinglePoint(t *testing.T) {
	points, err := Standard().SampleProfile(QuantityPressure, 50000, 1)
	require.NoError(t, err)
	assert.Equal(t, []ProfilePoint{{Altitude: 0, Value: 101325}}, points)
}

func TestSampleProfile_Invalid(t *testing.T) {
	m := Standard()
	tests := []struct {
		name  string
		q     Quantity
		max   float64
		count int
	}{
		{"zero count", QuantityPressure, 1000, 0},
		{"negative count", QuantityPressure, 1000, -3},
		{"negative max", QuantityPressure, -1, 10},
		{"unknown quantity", Quantity(42), 1000, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.SampleProfile(tt.q, tt.max, tt.count)
			assert.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestProfileSequence(t *testing.T) {
	m := Standard()
	seq := m.Profile(QuantitySpeedOfSound, 30000, 31)

	collect := func() []ProfilePoint {
		var out []ProfilePoint
		for h, v := range seq {
			out = append(out, ProfilePoint{Altitude: h, Value: v})
		}
		return out
	}

	first := collect()
	second := collect()
	require.Len(t, first, 31)
	assert.Equal(t, first, second, "sequence must be restartable")

	sampled, err := m.SampleProfile(QuantitySpeedOfSound, 30000, 31)
	require.NoError(t, err)
	assert.Equal(t, sampled, first)

	n := 0
	for range seq {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)

	for range m.Profile(QuantityDensity, -5, 10) {
		t.Fatal("invalid profile must yield nothing")
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want Quantity
	}{
		{"temperature", QuantityTemperature},
		{"T", QuantityTemperature},
		{"pressure", QuantityPressure},
		{" Density ", QuantityDensity},
		{"rho", QuantityDensity},
		{"speed_of_sound", QuantitySpeedOfSound},
		{"speed-of-sound", QuantitySpeedOfSound},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, q := range Quantities {
		got, err := ParseQuantity(q.String())
		require.NoError(t, err)
		assert.Equal(t, q, got)
		assert.NotEmpty(t, q.Unit())
	}

	_, err := ParseQuantity("humidity")
	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.Equal(t, "Quantity(9)", Quantity(9).String())
}

func TestCheckProfile(t *testing.T) {
	assert.NoError(t, CheckProfile(0, 1))
	assert.NoError(t, CheckProfile(84852, 500))
	assert.ErrorIs(t, CheckProfile(1000, 0), ErrInvalidProfile)
	assert.NoError(t, CheckProfile(1000, MaxProfileSamples))
	assert.ErrorIs(t, CheckProfile(1000, MaxProfileSamples+1), ErrInvalidProfile)
	assert.ErrorIs(t, CheckProfile(1000, math.MaxInt), ErrInvalidProfile)
	assert.ErrorIs(t, CheckProfile(math.Inf(1), 10), ErrInvalidProfile)
	assert.ErrorIs(t, CheckProfile(math.NaN(), 10), ErrInvalidProfile)
}
