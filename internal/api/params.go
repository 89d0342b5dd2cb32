package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/banshee-data/atmosphere/internal/atmosphere"
	"github.com/banshee-data/atmosphere/internal/units"
)

// floatParam parses the named query parameter. Missing parameters return
// def; non-finite values are rejected.
func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("invalid '%s' parameter", name)
	}
	return v, nil
}

func requiredFloatParam(r *http.Request, name string) (float64, error) {
	if r.URL.Query().Get(name) == "" {
		return 0, fmt.Errorf("missing '%s' parameter", name)
	}
	return floatParam(r, name, 0)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid '%s' parameter", name)
	}
	return v, nil
}

// altitudeParam reads an altitude and its optional unit, returning metres.
func (s *Server) altitudeParam(r *http.Request, name string, def float64) (float64, error) {
	unit := r.URL.Query().Get(name + "_units")
	if unit == "" {
		unit = s.display.Altitude
	}
	if !units.IsValidAltitude(unit) {
		return 0, fmt.Errorf("invalid '%s_units' parameter: must be one of %s", name, units.ValidAltitudeUnitsString())
	}
	v, err := floatParam(r, name, math.NaN())
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) {
		return def, nil
	}
	return units.AltitudeToMeters(v, unit), nil
}

// airspeedParam reads an optional 'tas' or 'eas' speed and its
// 'speed_units', returning metres per second. ok is false when neither is
// present.
func (s *Server) airspeedParam(r *http.Request) (speed float64, equivalent, ok bool, err error) {
	q := r.URL.Query()
	tasRaw, easRaw := q.Get("tas"), q.Get("eas")
	if tasRaw == "" && easRaw == "" {
		return 0, false, false, nil
	}
	if tasRaw != "" && easRaw != "" {
		return 0, false, false, fmt.Errorf("pass only one of 'tas' or 'eas'")
	}
	unit := q.Get("speed_units")
	if unit == "" {
		unit = s.display.Speed
	}
	if !units.IsValid(unit) {
		return 0, false, false, fmt.Errorf("invalid 'speed_units' parameter: must be one of %s", units.GetValidUnitsString())
	}
	name := "tas"
	if easRaw != "" {
		name, equivalent = "eas", true
	}
	v, err := floatParam(r, name, 0)
	if err != nil {
		return 0, false, false, err
	}
	return units.SpeedToMPS(v, unit), equivalent, true, nil
}

// profileParams reads quantity, max_altitude, count and units.
func (s *Server) profileParams(r *http.Request) (atmosphere.Quantity, float64, int, units.Display, error) {
	q, err := atmosphere.ParseQuantity(r.URL.Query().Get("quantity"))
	if err != nil {
		return 0, 0, 0, units.Display{}, err
	}
	maxAlt, err := s.altitudeParam(r, "max_altitude", s.maxAltitude)
	if err != nil {
		return 0, 0, 0, units.Display{}, err
	}
	count, err := intParam(r, "count", s.count)
	if err != nil {
		return 0, 0, 0, units.Display{}, err
	}
	d := s.display
	if u := r.URL.Query().Get("units"); u != "" {
		d = d.WithUnit(q.String(), u)
		if err := d.Validate(); err != nil {
			return 0, 0, 0, units.Display{}, err
		}
	}
	return q, maxAlt, count, d, nil
}
