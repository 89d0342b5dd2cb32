package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/atmosphere/internal/atmosphere"
	"github.com/banshee-data/atmosphere/internal/fsutil"
	"github.com/banshee-data/atmosphere/internal/monitoring"
	"github.com/banshee-data/atmosphere/internal/rpc"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func useMemoryFS(t *testing.T) *fsutil.MemoryFileSystem {
	t.Helper()
	mem := fsutil.NewMemoryFileSystem()
	old := outputFS
	outputFS = mem
	t.Cleanup(func() { outputFS = old })
	return mem
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage: isa <command>")

	code, _, stderr = runCLI(t, "bogus")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Unknown command: bogus")

	code, stdout, _ := runCLI(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "pressure-altitude")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "atmosphere "), stdout)
}

func TestRun_Conditions(t *testing.T) {
	code, stdout, stderr := runCLI(t, "conditions", "--altitude", "5000")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Troposphere")
	assert.Contains(t, stdout, "255.65")

	code, stdout, stderr = runCLI(t, "conditions", "--altitude", "36089.24", "--altitude-units", "ft", "--json")
	require.Equal(t, 0, code, stderr)
	var c atmosphere.Conditions
	require.NoError(t, json.Unmarshal([]byte(stdout), &c))
	assert.InDelta(t, 11000, c.Altitude, 0.01)
	assert.InDelta(t, 216.65, c.Temperature, 0.01)
}

func TestRun_ConditionsAirspeeds(t *testing.T) {
	code, stdout, stderr := runCLI(t, "conditions", "--altitude", "0", "--tas", "340.294")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "mach")
	assert.Contains(t, stdout, "1.0000")

	code, stdout, stderr = runCLI(t, "conditions", "--altitude", "11000", "--eas", "100", "--json")
	require.Equal(t, 0, code, stderr)
	var got struct {
		Airspeeds *atmosphere.Airspeeds `json:"airspeeds"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.NotNil(t, got.Airspeeds)
	assert.InDelta(t, 100, got.Airspeeds.EquivalentAirspeed, 1e-9)
	assert.Greater(t, got.Airspeeds.TrueAirspeed, 100.0)

	code, _, stderr = runCLI(t, "conditions", "--tas", "10", "--eas", "10")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "only one of")

	code, _, _ = runCLI(t, "conditions", "--tas", "-10")
	assert.Equal(t, 1, code)

	code, _, _ = runCLI(t, "conditions", "--tas", "10", "--speed-units", "warp")
	assert.Equal(t, 1, code)
}

func TestRun_ConditionsErrors(t *testing.T) {
	code, _, stderr := runCLI(t, "conditions", "--altitude", "-1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "isa conditions:")

	code, _, stderr = runCLI(t, "conditions", "--altitude-units", "furlong")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid altitude units")

	code, _, _ = runCLI(t, "conditions", "-h")
	assert.Equal(t, 0, code)
}

func TestRun_Table(t *testing.T) {
	code, stdout, stderr := runCLI(t, "table")
	require.Equal(t, 0, code, stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 8)
	assert.Contains(t, lines[1], "Troposphere")
	assert.Contains(t, lines[1], "101325")
}

func TestRun_ProfileCSV(t *testing.T) {
	code, stdout, stderr := runCLI(t, "profile", "--quantity", "temperature", "--max", "20000", "--count", "3")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "altitude_m,temperature_k\n0,288.15\n10000,223.15\n20000,216.65\n", stdout)
}

func TestRun_ProfileJSONToFile(t *testing.T) {
	mem := useMemoryFS(t)
	code, _, stderr := runCLI(t, "profile", "--quantity", "pressure", "--count", "5", "--format", "json", "--out", "pressure.json")
	require.Equal(t, 0, code, stderr)

	data, err := mem.ReadFile("pressure.json")
	require.NoError(t, err)
	var got struct {
		Quantity string                    `json:"quantity"`
		Units    string                    `json:"units"`
		Samples  []atmosphere.ProfilePoint `json:"samples"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "pressure", got.Quantity)
	assert.Equal(t, "pa", got.Units)
	require.Len(t, got.Samples, 5)
	assert.Equal(t, 85000.0, got.Samples[4].Altitude)
}

func TestRun_ProfileErrors(t *testing.T) {
	code, _, stderr := runCLI(t, "profile", "--quantity", "humidity")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "humidity")

	code, _, _ = runCLI(t, "profile", "--format", "xml")
	assert.Equal(t, 1, code)

	code, _, _ = runCLI(t, "profile", "--max", "-5")
	assert.Equal(t, 1, code)
}

func TestRun_PressureAltitude(t *testing.T) {
	code, stdout, stderr := runCLI(t, "pressure-altitude", "--pressure", "1013.25", "--units", "hpa")
	require.Equal(t, 0, code, stderr)
	fields := strings.Fields(stdout)
	require.Len(t, fields, 2)
	v, err := strconv.ParseFloat(fields[0], 64)
	require.NoError(t, err)
	assert.InDelta(t, 0, v, 0.1)
	assert.Equal(t, "m", fields[1])

	code, _, _ = runCLI(t, "pressure-altitude", "--pressure", "0")
	assert.Equal(t, 1, code)
}

func TestRun_PlotAndChart(t *testing.T) {
	mem := useMemoryFS(t)

	code, stdout, stderr := runCLI(t, "plot", "--out", "plots", "--format", "svg", "--count", "20")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "wrote 4 plots")
	assert.Len(t, mem.Files("plots"), len(atmosphere.Quantities))

	code, _, stderr = runCLI(t, "plot", "--out", "single", "--all=false", "--quantity", "density", "--count", "20")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, []string{filepath.Join("single", "density.png")}, mem.Files("single"))

	code, _, stderr = runCLI(t, "chart", "--out", "dash.html", "--count", "20")
	require.Equal(t, 0, code, stderr)
	html, err := mem.ReadFile("dash.html")
	require.NoError(t, err)
	assert.Contains(t, string(html), "echarts")
}

func TestRun_Migrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atmosphere.db")

	code, stdout, stderr := runCLI(t, "migrate", "--db", path, "up")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "schema version 2 (dirty=false)")

	code, stdout, stderr = runCLI(t, "migrate", "--db", path, "down")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "schema version 1")

	code, _, _ = runCLI(t, "migrate", "--db", path, "sideways")
	assert.Equal(t, 1, code)

	code, _, _ = runCLI(t, "migrate", "--db", path)
	assert.Equal(t, 1, code)
}

func TestRun_Remote(t *testing.T) {
	old := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = old })

	l, err := rpc.Listen("127.0.0.1:0", rpc.NewServer(atmosphere.Standard(), 85000, 10))
	require.NoError(t, err)
	t.Cleanup(l.Stop)
	addr := l.Addr().String()

	code, stdout, stderr := runCLI(t, "remote", "--addr", addr, "--altitude", "11000")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "216.65")

	code, stdout, stderr = runCLI(t, "remote", "--addr", addr, "--stream", "--quantity", "temperature", "--max", "20000", "--count", "3")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "altitude_m,temperature_k\n0,288.15\n10000,223.15\n20000,216.65\n", stdout)

	code, _, stderr = runCLI(t, "remote", "--addr", addr, "--altitude", "-3")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "isa remote:")
}
