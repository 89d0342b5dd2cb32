// Package api serves the atmosphere model, stored profiles and rendered
// charts over HTTP/JSON.
package api

import (
	"net/http"
	"strconv"

	"github.com/banshee-data/atmosphere/internal/atmosphere"
	"github.com/banshee-data/atmosphere/internal/db"
	"github.com/banshee-data/atmosphere/internal/htmlcharts"
	"github.com/banshee-data/atmosphere/internal/monitoring"
	"github.com/banshee-data/atmosphere/internal/profileplot"
	"github.com/banshee-data/atmosphere/internal/timeutil"
	"github.com/banshee-data/atmosphere/internal/units"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

var logf = monitoring.Tagf("api")

// Options configures a Server. Zero fields take defaults.
type Options struct {
	// DB stores profiles; nil disables the /api/profiles routes.
	DB          *db.DB
	Display     units.Display
	MaxAltitude float64
	SampleCount int
	Clock       timeutil.Clock
}

type Server struct {
	model       *atmosphere.Model
	db          *db.DB
	display     units.Display
	maxAltitude float64
	count       int
	clock       timeutil.Clock
	plotter     *profileplot.ProfilePlotter
	charts      *htmlcharts.Renderer
}

func NewServer(m *atmosphere.Model, opts Options) *Server {
	s := &Server{
		model:       m,
		db:          opts.DB,
		display:     opts.Display,
		maxAltitude: opts.MaxAltitude,
		count:       opts.SampleCount,
		clock:       opts.Clock,
	}
	if s.display == (units.Display{}) {
		s.display = units.SI()
	}
	if s.maxAltitude <= 0 {
		s.maxAltitude = m.Layers().Ceiling()
	}
	if s.count <= 0 {
		s.count = 200
	}
	if s.clock == nil {
		s.clock = timeutil.RealClock{}
	}
	s.plotter = profileplot.NewProfilePlotter(m, profileplot.Options{
		Display:     s.display,
		MaxAltitude: s.maxAltitude,
		Count:       s.count,
	})
	s.charts = htmlcharts.NewRenderer(m, s.display)
	return s
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return loggingMiddleware(timeutil.RealClock{}, next)
}

func loggingMiddleware(clock timeutil.Clock, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := clock.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(clock.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the API routes. Callers add admin routes and wrap the
// result in LoggingMiddleware.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/conditions", s.showConditions)
	mux.HandleFunc("/api/layers", s.listLayers)
	mux.HandleFunc("/api/profile", s.showProfile)
	mux.HandleFunc("/api/pressure_altitude", s.showPressureAltitude)
	mux.HandleFunc("/api/profiles", s.profilesHandler)
	mux.HandleFunc("/api/profiles/{id}", s.profileHandler)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/api/version", s.showVersion)
	mux.HandleFunc("/charts/profile", s.profileChart)
	mux.HandleFunc("/charts/layers", s.layersChart)
	mux.HandleFunc("/charts/dashboard", s.dashboardChart)
	mux.HandleFunc("/plots/profile.png", s.profilePlot)
	mux.HandleFunc("/plots/profile.svg", s.profilePlot)
	return mux
}

// Handler returns ServeMux wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return loggingMiddleware(s.clock, s.ServeMux())
}
