package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/atmosphere/internal/atmosphere"
	"github.com/banshee-data/atmosphere/internal/units"
)

// DefaultConfigPath is the path to the canonical profile defaults file.
const DefaultConfigPath = "config/profile.defaults.json"

// ProfileConfig controls how the atmosphere model is sampled, displayed and
// served. The layer table and physical constants are not configurable.
type ProfileConfig struct {
	// Sampling
	MaxAltitude *float64 `json:"max_altitude_m,omitempty"`
	SampleCount *int     `json:"sample_count,omitempty"`

	// Display units
	AltitudeUnits    *string `json:"altitude_units,omitempty"`
	TemperatureUnits *string `json:"temperature_units,omitempty"`
	PressureUnits    *string `json:"pressure_units,omitempty"`
	DensityUnits     *string `json:"density_units,omitempty"`
	SpeedUnits       *string `json:"speed_units,omitempty"`

	// Plot output
	PlotWidthCm  *float64 `json:"plot_width_cm,omitempty"`
	PlotHeightCm *float64 `json:"plot_height_cm,omitempty"`
	OutputDir    *string  `json:"output_dir,omitempty"`

	// Serving
	Listen          *string `json:"listen,omitempty"`
	GRPCListen      *string `json:"grpc_listen,omitempty"`
	DBPath          *string `json:"db_path,omitempty"`
	ShutdownTimeout *string `json:"shutdown_timeout,omitempty"` // duration string like "5s"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyProfileConfig returns a ProfileConfig with all fields set to nil, so
// every Get* method reports its built-in default.
func EmptyProfileConfig() *ProfileConfig {
	return &ProfileConfig{}
}

// LoadProfileConfig loads a ProfileConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file keep their defaults, so partial configs are safe.
func LoadProfileConfig(path string) (*ProfileConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyProfileConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching from the current
// directory up towards the repository root. Panics if the file cannot be
// loaded, intended for test setup.
func MustLoadDefaultConfig() *ProfileConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/isa/ and deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadProfileConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are usable.
func (c *ProfileConfig) Validate() error {
	if c.MaxAltitude != nil {
		if v := *c.MaxAltitude; math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("max_altitude_m must be positive, got %f", v)
		}
	}

	if c.SampleCount != nil {
		if *c.SampleCount < 1 || *c.SampleCount > atmosphere.MaxProfileSamples {
			return fmt.Errorf("sample_count must be between 1 and %d, got %d", atmosphere.MaxProfileSamples, *c.SampleCount)
		}
	}

	unitChecks := []struct {
		field string
		value *string
		valid func(string) bool
		list  func() string
	}{
		{"altitude_units", c.AltitudeUnits, units.IsValidAltitude, units.ValidAltitudeUnitsString},
		{"temperature_units", c.TemperatureUnits, units.IsValidTemperature, units.ValidTemperatureUnitsString},
		{"pressure_units", c.PressureUnits, units.IsValidPressure, units.ValidPressureUnitsString},
		{"density_units", c.DensityUnits, units.IsValidDensity, units.ValidDensityUnitsString},
		{"speed_units", c.SpeedUnits, units.IsValid, units.GetValidUnitsString},
	}
	for _, u := range unitChecks {
		if u.value != nil && !u.valid(*u.value) {
			return fmt.Errorf("invalid %s '%s': must be one of %s", u.field, *u.value, u.list())
		}
	}

	for name, v := range map[string]*float64{"plot_width_cm": c.PlotWidthCm, "plot_height_cm": c.PlotHeightCm} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}

	if c.ShutdownTimeout != nil && *c.ShutdownTimeout != "" {
		if _, err := time.ParseDuration(*c.ShutdownTimeout); err != nil {
			return fmt.Errorf("invalid shutdown_timeout '%s': %w", *c.ShutdownTimeout, err)
		}
	}

	return nil
}

// GetMaxAltitude returns max_altitude_m or the default of 85 km.
func (c *ProfileConfig) GetMaxAltitude() float64 {
	if c.MaxAltitude == nil {
		return 85000
	}
	return *c.MaxAltitude
}

// GetSampleCount returns sample_count or the default.
func (c *ProfileConfig) GetSampleCount() int {
	if c.SampleCount == nil {
		return 200
	}
	return *c.SampleCount
}

// GetAltitudeUnits returns altitude_units or the default.
func (c *ProfileConfig) GetAltitudeUnits() string {
	return stringOr(c.AltitudeUnits, units.Meters)
}

// GetTemperatureUnits returns temperature_units or the default.
func (c *ProfileConfig) GetTemperatureUnits() string {
	return stringOr(c.TemperatureUnits, units.Kelvin)
}

// GetPressureUnits returns pressure_units or the default.
func (c *ProfileConfig) GetPressureUnits() string {
	return stringOr(c.PressureUnits, units.Pascal)
}

// GetDensityUnits returns density_units or the default.
func (c *ProfileConfig) GetDensityUnits() string {
	return stringOr(c.DensityUnits, units.KgPerM3)
}

// GetSpeedUnits returns speed_units or the default.
func (c *ProfileConfig) GetSpeedUnits() string {
	return stringOr(c.SpeedUnits, units.MPS)
}

// GetPlotWidthCm returns plot_width_cm or the default.
func (c *ProfileConfig) GetPlotWidthCm() float64 {
	if c.PlotWidthCm == nil {
		return 16
	}
	return *c.PlotWidthCm
}

// GetPlotHeightCm returns plot_height_cm or the default.
func (c *ProfileConfig) GetPlotHeightCm() float64 {
	if c.PlotHeightCm == nil {
		return 20
	}
	return *c.PlotHeightCm
}

// GetOutputDir returns output_dir or the default.
func (c *ProfileConfig) GetOutputDir() string {
	return stringOr(c.OutputDir, "plots")
}

// GetListen returns listen or the default.
func (c *ProfileConfig) GetListen() string {
	return stringOr(c.Listen, ":8080")
}

// GetGRPCListen returns grpc_listen or the default. An empty value
// disables the gRPC listener.
func (c *ProfileConfig) GetGRPCListen() string {
	if c.GRPCListen == nil {
		return ":9090"
	}
	return *c.GRPCListen
}

// GetDBPath returns db_path or the default.
func (c *ProfileConfig) GetDBPath() string {
	return stringOr(c.DBPath, "atmosphere.db")
}

// GetShutdownTimeout parses and returns ShutdownTimeout as a time.Duration.
func (c *ProfileConfig) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == nil || *c.ShutdownTimeout == "" {
		return 5 * time.Second // default
	}
	d, err := time.ParseDuration(*c.ShutdownTimeout)
	if err != nil {
		return 5 * time.Second // default on parse error
	}
	return d
}

// DisplayUnits returns the configured unit for each reported quantity.
func (c *ProfileConfig) DisplayUnits() units.Display {
	return units.Display{
		Altitude:    c.GetAltitudeUnits(),
		Temperature: c.GetTemperatureUnits(),
		Pressure:    c.GetPressureUnits(),
		Density:     c.GetDensityUnits(),
		Speed:       c.GetSpeedUnits(),
	}
}

func stringOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}
