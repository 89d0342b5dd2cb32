package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/atmosphere/internal/atmosphere"
	"github.com/banshee-data/atmosphere/internal/db"
	"github.com/banshee-data/atmosphere/internal/testutil"
	"github.com/banshee-data/atmosphere/internal/units"
	"github.com/banshee-data/atmosphere/internal/version"
)

func TestShowConditions(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rec := testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, "/api/conditions?altitude=11"+"&altitude_units=km"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var got conditionsResponse
	testutil.DecodeJSON(t, rec, &got)
	assert.InDelta(t, 11000, got.Altitude, 1e-9)
	assert.Equal(t, 1, got.Layer, "11 km belongs to the upper layer")
	assert.Equal(t, "Tropopause", got.LayerName)
	assert.InDelta(t, 216.65, got.Temperature, 1e-9)
	assert.InDelta(t, 22632, got.Pressure, 2)
	assert.Equal(t, units.SI(), got.Units)
	assert.InDelta(t, got.Pressure, got.Display["pressure"], 1e-9)
}

func TestShowConditions_Airspeeds(t *testing.T) {
	h := newTestServer(t, false).Handler()
	m := atmosphere.Standard()

	rec := testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, "/api/conditions?altitude=11000&eas=100"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var got conditionsResponse
	testutil.DecodeJSON(t, rec, &got)
	require.NotNil(t, got.Airspeeds)
	want, err := m.AirspeedsFromEAS(11000, 100)
	require.NoError(t, err)
	assert.InDelta(t, want.TrueAirspeed, got.Airspeeds.TrueAirspeed, 1e-9)
	assert.InDelta(t, want.Mach, got.Airspeeds.Mach, 1e-12)
	assert.InDelta(t, 100, got.Display["eas"], 1e-9)

	rec = testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, "/api/conditions?altitude=0&tas=100&speed_units=kt"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	got = conditionsResponse{}
	testutil.DecodeJSON(t, rec, &got)
	require.NotNil(t, got.Airspeeds)
	assert.InDelta(t, 51.4444, got.Airspeeds.TrueAirspeed, 1e-3)
	assert.InDelta(t, got.Airspeeds.TrueAirspeed, got.Airspeeds.EquivalentAirspeed, 1e-9)

	rec = testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, "/api/conditions?altitude=0"))
	got = conditionsResponse{}
	testutil.DecodeJSON(t, rec, &got)
	assert.Nil(t, got.Airspeeds)

	for _, path := range []string{
		"/api/conditions?altitude=0&tas=100&eas=100",
		"/api/conditions?altitude=0&tas=fast",
		"/api/conditions?altitude=0&tas=100&speed_units=warp",
		"/api/conditions?altitude=0&tas=-10",
	} {
		t.Run(path, func(t *testing.T) {
			rec := testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, path))
			testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
		})
	}
}

func TestShowConditions_Errors(t *testing.T) {
	h := newTestServer(t, false).Handler()

	tests := []struct {
		name string
		path string
		want int
	}{
		{"missing altitude", "/api/conditions", http.StatusBadRequest},
		{"not a number", "/api/conditions?altitude=high", http.StatusBadRequest},
		{"negative", "/api/conditions?altitude=-5", http.StatusBadRequest},
		{"bad units", "/api/conditions?altitude=5&altitude_units=leagues", http.StatusBadRequest},
		{"infinite", "/api/conditions?altitude=Inf", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, tt.path))
			testutil.AssertStatusCode(t, rec.Code, tt.want)
			var body map[string]string
			testutil.DecodeJSON(t, rec, &body)
			assert.NotEmpty(t, body["error"])
		})
	}

	rec := testutil.Serve(h, testutil.NewTestRequest(http.MethodPost, "/api/conditions?altitude=5"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestListLayers(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rec := testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, "/api/layers"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var got []layerResponse
	testutil.DecodeJSON(t, rec, &got)
	require.Len(t, got, atmosphere.StandardLayers().Len())
	assert.Equal(t, 101325.0, got[0].BasePressure)
	for i := 1; i < len(got); i++ {
		assert.InDelta(t, got[i-1].TopPressure, got[i].BasePressure, 1e-6*got[i].BasePressure,
			"pressure continuous at %s", got[i].Name)
	}
}

func TestShowProfile(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rec := testutil.Serve(h, testutil.NewTestRequest(http.MethodGet,
		"/api/profile?quantity=temperature&max_altitude=10&max_altitude_units=km&count=3&units=c"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var got profileResponse
	testutil.DecodeJSON(t, rec, &got)
	assert.Equal(t, "temperature", got.Quantity)
	assert.Equal(t, units.Celsius, got.Units)
	assert.Equal(t, 10000.0, got.MaxAltitude)
	require.Len(t, got.Samples, 3)
	assert.InDelta(t, 15.0, got.Samples[0].Value, 1e-9)
	assert.InDelta(t, 5000.0, got.Samples[1].Altitude, 1e-9)
	assert.InDelta(t, -17.5, got.Samples[1].Value, 1e-9)
	assert.InDelta(t, -50.0, got.Samples[2].Value, 1e-9)
}

func TestShowProfile_Defaults(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rec := testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, "/api/profile?quantity=p"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var got profileResponse
	testutil.DecodeJSON(t, rec, &got)
	assert.Equal(t, "pressure", got.Quantity)
	assert.Equal(t, "pa", got.Units)
	assert.Equal(t, 20000.0, got.MaxAltitude)
	assert.Len(t, got.Samples, 5)
}

func TestShowProfile_Errors(t *testing.T) {
	h := newTestServer(t, false).Handler()

	for _, path := range []string{
		"/api/profile",
		"/api/profile?quantity=humidity",
		"/api/profile?quantity=pressure&count=0",
		"/api/profile?quantity=pressure&count=many",
		"/api/profile?quantity=pressure&count=1000000000000000",
		"/api/profile?quantity=pressure&max_altitude=-1",
		"/api/profile?quantity=pressure&units=kelvin",
	} {
		t.Run(path, func(t *testing.T) {
			rec := testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, path))
			testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
		})
	}
}

func TestShowPressureAltitude(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rec := testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, "/api/pressure_altitude?pressure=1013.25&units=hpa"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)

	var got map[string]float64
	testutil.DecodeJSON(t, rec, &got)
	assert.InDelta(t, 101325, got["pressure_pa"], 1e-6)
	assert.InDelta(t, 0, got["altitude_m"], 1e-6)

	for _, path := range []string{
		"/api/pressure_altitude",
		"/api/pressure_altitude?pressure=200000",
		"/api/pressure_altitude?pressure=1000&units=bar",
	} {
		rec := testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, path))
		testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
	}
}

func TestProfiles_NoStore(t *testing.T) {
	h := newTestServer(t, false).Handler()

	for _, path := range []string{"/api/profiles", "/api/profiles/abc"} {
		rec := testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, path))
		testutil.AssertStatusCode(t, rec.Code, http.StatusServiceUnavailable)
	}
}

func TestProfiles_Lifecycle(t *testing.T) {
	h := newTestServer(t, true).Handler()

	rec := testutil.Serve(h, testutil.NewJSONRequest(http.MethodPost, "/api/profiles",
		`{"quantity":"pressure","max_altitude_m":11000,"count":4,"units":"hpa","note":"troposphere"}`))
	testutil.AssertStatusCode(t, rec.Code, http.StatusCreated)

	var saved db.ProfileRun
	testutil.DecodeJSON(t, rec, &saved)
	require.NotEmpty(t, saved.RunID)
	assert.Equal(t, "hpa", saved.Units)
	assert.Equal(t, 4, saved.SampleCount)
	assert.InDelta(t, 1013.25, saved.Samples[0].Value, 1e-9)

	rec = testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, "/api/profiles"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var list []db.ProfileRun
	testutil.DecodeJSON(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, saved.RunID, list[0].RunID)
	assert.Empty(t, list[0].Samples)

	rec = testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, "/api/profiles/"+saved.RunID))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var got db.ProfileRun
	testutil.DecodeJSON(t, rec, &got)
	assert.Equal(t, saved.Samples, got.Samples)
	assert.Equal(t, "troposphere", got.Note)

	rec = testutil.Serve(h, testutil.NewTestRequest(http.MethodDelete, "/api/profiles/"+saved.RunID))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNoContent)

	rec = testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, "/api/profiles/"+saved.RunID))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)

	rec = testutil.Serve(h, testutil.NewTestRequest(http.MethodDelete, "/api/profiles/"+saved.RunID))
	testutil.AssertStatusCode(t, rec.Code, http.StatusNotFound)
}

func TestSaveProfile_BadRequests(t *testing.T) {
	h := newTestServer(t, true).Handler()

	for _, body := range []string{
		`not json`,
		`{"quantity":"pressure","bogus":1}`,
		`{"quantity":"humidity"}`,
		`{"quantity":"pressure","count":-3}`,
		`{"quantity":"pressure","count":1000000000000000}`,
		`{"quantity":"pressure","units":"furlongs"}`,
	} {
		t.Run(body, func(t *testing.T) {
			rec := testutil.Serve(h, testutil.NewJSONRequest(http.MethodPost, "/api/profiles", body))
			testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
		})
	}

	rec := testutil.Serve(h, testutil.NewTestRequest(http.MethodPut, "/api/profiles"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestShowConfigAndVersion(t *testing.T) {
	h := newTestServer(t, true).Handler()

	rec := testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, "/api/config"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var cfg map[string]interface{}
	testutil.DecodeJSON(t, rec, &cfg)
	assert.Equal(t, true, cfg["store_enabled"])
	assert.Equal(t, 20000.0, cfg["max_altitude_m"])

	rec = testutil.Serve(h, testutil.NewTestRequest(http.MethodGet, "/api/version"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var v version.Info
	testutil.DecodeJSON(t, rec, &v)
	assert.Equal(t, version.Current(), v)
}

func ExampleServer_ServeMux() {
	s := NewServer(atmosphere.Standard(), Options{})
	rec := testutil.Serve(s.ServeMux(), testutil.NewTestRequest(http.MethodGet, "/api/conditions?altitude=0"))
	fmt.Println(rec.Code)
	// Output: 200
}
