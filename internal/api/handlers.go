package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/banshee-data/atmosphere/internal/atmosphere"
	"github.com/banshee-data/atmosphere/internal/db"
	"github.com/banshee-data/atmosphere/internal/httputil"
	"github.com/banshee-data/atmosphere/internal/units"
	"github.com/banshee-data/atmosphere/internal/version"
)

// conditionsResponse carries SI values alongside the same values in the
// server's display units.
type conditionsResponse struct {
	atmosphere.Conditions
	Airspeeds *atmosphere.Airspeeds `json:"airspeeds,omitempty"`
	Units     units.Display         `json:"units"`
	Display   map[string]float64    `json:"display"`
}

func (s *Server) showConditions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if r.URL.Query().Get("altitude") == "" {
		httputil.BadRequest(w, "missing 'altitude' parameter")
		return
	}
	alt, err := s.altitudeParam(r, "altitude", 0)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	speed, equivalent, hasSpeed, err := s.airspeedParam(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	c, err := s.model.Conditions(alt)
	if err != nil {
		httputil.WriteModelError(w, err)
		return
	}
	resp := conditionsResponse{
		Conditions: c,
		Units:      s.display,
		Display: map[string]float64{
			"altitude":       s.display.Convert("altitude", c.Altitude),
			"temperature":    s.display.Convert("temperature", c.Temperature),
			"pressure":       s.display.Convert("pressure", c.Pressure),
			"density":        s.display.Convert("density", c.Density),
			"speed_of_sound": s.display.Convert("speed_of_sound", c.SpeedOfSound),
		},
	}
	if hasSpeed {
		var a atmosphere.Airspeeds
		if equivalent {
			a, err = s.model.AirspeedsFromEAS(alt, speed)
		} else {
			a, err = s.model.AirspeedsFromTAS(alt, speed)
		}
		if err != nil {
			httputil.WriteModelError(w, err)
			return
		}
		resp.Airspeeds = &a
		resp.Display["tas"] = units.ConvertSpeed(a.TrueAirspeed, s.display.Speed)
		resp.Display["eas"] = units.ConvertSpeed(a.EquivalentAirspeed, s.display.Speed)
	}
	httputil.WriteJSONOK(w, resp)
}

type layerResponse struct {
	atmosphere.Layer
	BasePressure float64 `json:"base_pressure_pa"`
	TopPressure  float64 `json:"top_pressure_pa"`
}

func (s *Server) listLayers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	layers := s.model.Layers().Layers()
	out := make([]layerResponse, len(layers))
	for i, l := range layers {
		top, err := s.model.Pressure(l.TopAltitude)
		if err != nil {
			httputil.WriteModelError(w, err)
			return
		}
		out[i] = layerResponse{Layer: l, BasePressure: s.model.BaseState(i).Pressure, TopPressure: top}
	}
	httputil.WriteJSONOK(w, out)
}

type profileResponse struct {
	Quantity    string                    `json:"quantity"`
	Units       string                    `json:"units"`
	MaxAltitude float64                   `json:"max_altitude_m"`
	Samples     []atmosphere.ProfilePoint `json:"samples"`
}

// sample returns q's profile with values converted to d.
func (s *Server) sample(q atmosphere.Quantity, maxAlt float64, count int, d units.Display) ([]atmosphere.ProfilePoint, error) {
	points, err := s.model.SampleProfile(q, maxAlt, count)
	if err != nil {
		return nil, err
	}
	for i := range points {
		points[i].Value = d.Convert(q.String(), points[i].Value)
	}
	return points, nil
}

func (s *Server) showProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	q, maxAlt, count, d, err := s.profileParams(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	points, err := s.sample(q, maxAlt, count, d)
	if err != nil {
		httputil.WriteModelError(w, err)
		return
	}
	httputil.WriteJSONOK(w, profileResponse{
		Quantity:    q.String(),
		Units:       d.Unit(q.String()),
		MaxAltitude: maxAlt,
		Samples:     points,
	})
}

func (s *Server) showPressureAltitude(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	p, err := requiredFloatParam(r, "pressure")
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	unit := r.URL.Query().Get("units")
	if unit == "" {
		unit = s.display.Pressure
	}
	if !units.IsValidPressure(unit) {
		httputil.BadRequest(w, "invalid 'units' parameter: must be one of "+units.ValidPressureUnitsString())
		return
	}

	pa := units.PressureToPascals(p, unit)
	alt, err := s.model.PressureAltitude(pa)
	if err != nil {
		httputil.WriteModelError(w, err)
		return
	}
	httputil.WriteJSONOK(w, map[string]float64{
		"pressure_pa": pa,
		"altitude_m":  alt,
		"altitude":    s.display.Convert("altitude", alt),
	})
}

// saveProfileRequest is the body of POST /api/profiles.
type saveProfileRequest struct {
	Quantity    string  `json:"quantity"`
	MaxAltitude float64 `json:"max_altitude_m"`
	Count       int     `json:"count"`
	Units       string  `json:"units"`
	Note        string  `json:"note"`
}

func (s *Server) profilesHandler(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "profile store not configured")
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.listProfiles(w, r)
	case http.MethodPost:
		s.saveProfile(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) listProfiles(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 50)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	runs, err := s.db.ListProfiles(r.Context(), limit)
	if err != nil {
		httputil.InternalServerError(w, "failed to list profiles: "+err.Error())
		return
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *Server) saveProfile(w http.ResponseWriter, r *http.Request) {
	var req saveProfileRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	q, err := atmosphere.ParseQuantity(req.Quantity)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if req.MaxAltitude == 0 {
		req.MaxAltitude = s.maxAltitude
	}
	if req.Count == 0 {
		req.Count = s.count
	}
	d := s.display
	if req.Units != "" {
		d = d.WithUnit(q.String(), req.Units)
		if err := d.Validate(); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
	}

	points, err := s.sample(q, req.MaxAltitude, req.Count, d)
	if err != nil {
		httputil.WriteModelError(w, err)
		return
	}
	run := &db.ProfileRun{
		Quantity:    q.String(),
		Units:       d.Unit(q.String()),
		MaxAltitude: req.MaxAltitude,
		Note:        req.Note,
		Samples:     points,
	}
	if err := s.db.SaveProfile(r.Context(), run); err != nil {
		httputil.InternalServerError(w, "failed to save profile: "+err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, run)
}

func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "profile store not configured")
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))

	switch r.Method {
	case http.MethodGet:
		run, err := s.db.GetProfile(r.Context(), id)
		if errors.Is(err, db.ErrProfileNotFound) {
			httputil.NotFound(w, err.Error())
			return
		}
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, run)
	case http.MethodDelete:
		err := s.db.DeleteProfile(r.Context(), id)
		if errors.Is(err, db.ErrProfileNotFound) {
			httputil.NotFound(w, err.Error())
			return
		}
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"units":          s.display,
		"max_altitude_m": s.maxAltitude,
		"sample_count":   s.count,
		"reference":      s.model.Reference(),
		"store_enabled":  s.db != nil,
	})
}

func (s *Server) showVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, version.Current())
}
