package api

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/banshee-data/atmosphere/internal/atmosphere"
	"github.com/banshee-data/atmosphere/internal/httputil"
	"github.com/banshee-data/atmosphere/internal/profileplot"
)

func writeHTML(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) profileChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	q, maxAlt, count, _, err := s.profileParams(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := s.charts.RenderProfile(&buf, q, maxAlt, count); err != nil {
		httputil.WriteModelError(w, err)
		return
	}
	writeHTML(w, &buf)
}

func (s *Server) layersChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	var buf bytes.Buffer
	if err := s.charts.RenderLayers(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
		return
	}
	writeHTML(w, &buf)
}

func (s *Server) dashboardChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	var buf bytes.Buffer
	if err := s.charts.RenderDashboard(&buf, s.maxAltitude, s.count); err != nil {
		httputil.WriteModelError(w, err)
		return
	}
	writeHTML(w, &buf)
}

// profilePlot serves /plots/profile.png and /plots/profile.svg. The
// sampling range and count are the server's configured defaults.
func (s *Server) profilePlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	q, err := atmosphere.ParseQuantity(r.URL.Query().Get("quantity"))
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	format := strings.TrimPrefix(path.Ext(r.URL.Path), ".")
	var buf bytes.Buffer
	if err := s.plotter.Render(&buf, q, format); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
		return
	}

	contentType := "image/png"
	if format == profileplot.FormatSVG {
		contentType = "image/svg+xml"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(buf.Bytes())
}
