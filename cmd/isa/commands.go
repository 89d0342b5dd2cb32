package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/atmosphere/internal/atmosphere"
	"github.com/banshee-data/atmosphere/internal/db"
	"github.com/banshee-data/atmosphere/internal/fsutil"
	"github.com/banshee-data/atmosphere/internal/htmlcharts"
	"github.com/banshee-data/atmosphere/internal/profileplot"
	"github.com/banshee-data/atmosphere/internal/rpc"
	"github.com/banshee-data/atmosphere/internal/units"
)

// outputFS is where plot, chart and profile files are written.
var outputFS fsutil.FileSystem = fsutil.OSFileSystem{}

func handleConditions(args []string, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("conditions")
	altitude := fs.Float64("altitude", 0, "Geometric altitude")
	altUnits := fs.String("altitude-units", "", "Units of --altitude (m, ft, km); defaults to the configured altitude units")
	tas := fs.Float64("tas", 0, "True airspeed; also prints equivalent airspeed and Mach")
	eas := fs.Float64("eas", 0, "Equivalent airspeed; also prints true airspeed and Mach")
	speedUnits := fs.String("speed-units", "", "Units of --tas/--eas; defaults to the configured speed units")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["tas"] && set["eas"] {
		return errors.New("pass only one of --tas or --eas")
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	d := cfg.DisplayUnits()
	if *altUnits == "" {
		*altUnits = d.Altitude
	}
	if !units.IsValidAltitude(*altUnits) {
		return fmt.Errorf("invalid altitude units %q: must be one of %s", *altUnits, units.ValidAltitudeUnitsString())
	}
	if *speedUnits == "" {
		*speedUnits = d.Speed
	}
	if !units.IsValid(*speedUnits) {
		return fmt.Errorf("invalid speed units %q: must be one of %s", *speedUnits, units.GetValidUnitsString())
	}

	m := atmosphere.Standard()
	alt := units.AltitudeToMeters(*altitude, *altUnits)
	c, err := m.Conditions(alt)
	if err != nil {
		return err
	}

	var speeds *atmosphere.Airspeeds
	if set["tas"] || set["eas"] {
		var a atmosphere.Airspeeds
		if set["eas"] {
			a, err = m.AirspeedsFromEAS(alt, units.SpeedToMPS(*eas, *speedUnits))
		} else {
			a, err = m.AirspeedsFromTAS(alt, units.SpeedToMPS(*tas, *speedUnits))
		}
		if err != nil {
			return err
		}
		speeds = &a
	}

	if *asJSON {
		return writeJSON(stdout, struct {
			atmosphere.Conditions
			Airspeeds *atmosphere.Airspeeds `json:"airspeeds,omitempty"`
		}{c, speeds})
	}
	if err := printConditions(stdout, c, d); err != nil {
		return err
	}
	if speeds != nil {
		return printAirspeeds(stdout, *speeds, d)
	}
	return nil
}

func printAirspeeds(w io.Writer, a atmosphere.Airspeeds, d units.Display) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "tas\t%s\t%s\n", strconv.FormatFloat(units.ConvertSpeed(a.TrueAirspeed, d.Speed), 'g', 8, 64), d.Speed)
	fmt.Fprintf(tw, "eas\t%s\t%s\n", strconv.FormatFloat(units.ConvertSpeed(a.EquivalentAirspeed, d.Speed), 'g', 8, 64), d.Speed)
	fmt.Fprintf(tw, "mach\t%s\t\n", strconv.FormatFloat(a.Mach, 'f', 4, 64))
	return tw.Flush()
}

func printConditions(w io.Writer, c atmosphere.Conditions, d units.Display) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	layer := c.LayerName
	if c.Extrapolated {
		layer += " (extrapolated)"
	}
	rows := []struct {
		label string
		value float64
		unit  string
	}{
		{"altitude", d.Convert("altitude", c.Altitude), d.Altitude},
		{"temperature", d.Convert("temperature", c.Temperature), d.Temperature},
		{"pressure", d.Convert("pressure", c.Pressure), d.Pressure},
		{"density", d.Convert("density", c.Density), d.Density},
		{"speed of sound", d.Convert("speed_of_sound", c.SpeedOfSound), d.Speed},
		{"theta", c.TemperatureRatio, ""},
		{"delta", c.PressureRatio, ""},
		{"sigma", c.DensityRatio, ""},
	}
	fmt.Fprintf(tw, "layer\t%s\t\n", layer)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.label, strconv.FormatFloat(r.value, 'g', 8, 64), r.unit)
	}
	return tw.Flush()
}

func handleTable(args []string, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	d := cfg.DisplayUnits()
	m := atmosphere.Standard()

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tlayer\tbase (%s)\ttop (%s)\tlapse (K/km)\tbase T (%s)\tbase P (%s)\n",
		d.Altitude, d.Altitude, d.Temperature, d.Pressure)
	for i, l := range m.Layers().Layers() {
		b := m.BaseState(i)
		fmt.Fprintf(tw, "%d\t%s\t%.0f\t%.0f\t%.1f\t%.2f\t%.6g\n",
			i, l.Name,
			d.Convert("altitude", l.BaseAltitude), d.Convert("altitude", l.TopAltitude),
			l.LapseRate*1000,
			d.Convert("temperature", b.Temperature), d.Convert("pressure", b.Pressure))
	}
	return tw.Flush()
}

type profileFlags struct {
	quantity *string
	max      *float64
	count    *int
}

func addProfileFlags(fs *flag.FlagSet) profileFlags {
	return profileFlags{
		quantity: fs.String("quantity", "temperature", "Quantity: temperature, pressure, density, speed_of_sound"),
		max:      fs.Float64("max", 0, "Maximum altitude in metres (default from config)"),
		count:    fs.Int("count", 0, "Number of samples (default from config)"),
	}
}

func (p profileFlags) resolve(maxDefault float64, countDefault int) (float64, int) {
	maxAlt, count := *p.max, *p.count
	if maxAlt == 0 {
		maxAlt = maxDefault
	}
	if count == 0 {
		count = countDefault
	}
	return maxAlt, count
}

func handleProfile(args []string, stdout io.Writer) (err error) {
	fs, cfgPath := newFlagSet("profile")
	pf := addProfileFlags(fs)
	format := fs.String("format", "csv", "Output format: csv or json")
	out := fs.String("out", "", "Write to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	q, err := atmosphere.ParseQuantity(*pf.quantity)
	if err != nil {
		return err
	}
	maxAlt, count := pf.resolve(cfg.GetMaxAltitude(), cfg.GetSampleCount())
	d := cfg.DisplayUnits()

	points, err := atmosphere.Standard().SampleProfile(q, maxAlt, count)
	if err != nil {
		return err
	}

	w := stdout
	if *out != "" {
		f, createErr := outputFS.Create(*out)
		if createErr != nil {
			return createErr
		}
		defer func() { err = errors.Join(err, f.Close()) }()
		w = f
	}

	switch *format {
	case "csv":
		return writeProfileCSV(w, q, points, d)
	case "json":
		for i := range points {
			points[i].Value = d.Convert(q.String(), points[i].Value)
		}
		return writeJSON(w, map[string]interface{}{
			"quantity": q.String(),
			"units":    d.Unit(q.String()),
			"samples":  points,
		})
	default:
		return fmt.Errorf("unknown format %q: must be csv or json", *format)
	}
}

func writeProfileCSV(w io.Writer, q atmosphere.Quantity, points []atmosphere.ProfilePoint, d units.Display) error {
	cw := csv.NewWriter(w)
	name := q.String()
	if err := cw.Write([]string{"altitude_" + d.Altitude, name + "_" + d.Unit(name)}); err != nil {
		return err
	}
	for _, p := range points {
		if err := cw.Write([]string{
			strconv.FormatFloat(d.Convert("altitude", p.Altitude), 'f', -1, 64),
			strconv.FormatFloat(d.Convert(name, p.Value), 'g', 10, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func handlePressureAltitude(args []string, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("pressure-altitude")
	pressure := fs.Float64("pressure", 0, "Static pressure")
	pUnits := fs.String("units", "", "Units of --pressure; defaults to the configured pressure units")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	d := cfg.DisplayUnits()
	if *pUnits == "" {
		*pUnits = d.Pressure
	}
	if !units.IsValidPressure(*pUnits) {
		return fmt.Errorf("invalid pressure units %q: must be one of %s", *pUnits, units.ValidPressureUnitsString())
	}

	alt, err := atmosphere.Standard().PressureAltitude(units.PressureToPascals(*pressure, *pUnits))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s %s\n", strconv.FormatFloat(d.Convert("altitude", alt), 'f', 1, 64), d.Altitude)
	return nil
}

func handlePlot(args []string, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("plot")
	pf := addProfileFlags(fs)
	dir := fs.String("out", "", "Output directory (default from config)")
	format := fs.String("format", profileplot.FormatPNG, "Image format: png or svg")
	all := fs.Bool("all", true, "Plot every quantity; set false to plot only --quantity")
	noLayers := fs.Bool("no-layers", false, "Omit layer boundary guide lines")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *dir == "" {
		*dir = cfg.GetOutputDir()
	}
	maxAlt, count := pf.resolve(cfg.GetMaxAltitude(), cfg.GetSampleCount())

	p := profileplot.NewProfilePlotter(atmosphere.Standard(), profileplot.Options{
		FS:          outputFS,
		Display:     cfg.DisplayUnits(),
		MaxAltitude: maxAlt,
		Count:       count,
		WidthCm:     cfg.GetPlotWidthCm(),
		HeightCm:    cfg.GetPlotHeightCm(),
		HideLayers:  *noLayers,
	})

	if *all {
		n, err := p.GeneratePlots(*dir, *format)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %d plots to %s\n", n, *dir)
		return nil
	}

	q, err := atmosphere.ParseQuantity(*pf.quantity)
	if err != nil {
		return err
	}
	if err := outputFS.MkdirAll(*dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(*dir, fmt.Sprintf("%s.%s", q, *format))
	if err := p.Save(path, q); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return nil
}

func handleChart(args []string, stdout io.Writer) (err error) {
	fs, cfgPath := newFlagSet("chart")
	pf := addProfileFlags(fs)
	out := fs.String("out", "atmosphere.html", "Output HTML file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	maxAlt, count := pf.resolve(cfg.GetMaxAltitude(), cfg.GetSampleCount())

	f, err := outputFS.Create(*out)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	r := htmlcharts.NewRenderer(atmosphere.Standard(), cfg.DisplayUnits())
	if err := r.RenderDashboard(f, maxAlt, count); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s\n", *out)
	return nil
}

func handleMigrate(args []string, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("migrate")
	dbPath := fs.String("db", "", "Database path (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: isa migrate [--db path] up|down|version")
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *dbPath == "" {
		*dbPath = cfg.GetDBPath()
	}

	database, err := db.OpenDB(*dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	switch action := fs.Arg(0); action {
	case "up":
		err = database.MigrateUp()
	case "down":
		err = database.MigrateDown()
	case "version":
	default:
		return fmt.Errorf("unknown migrate action %q", action)
	}
	if err != nil {
		return err
	}

	v, dirty, err := database.MigrateVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "schema version %d (dirty=%t)\n", v, dirty)
	return nil
}

func handleRemote(args []string, stdout io.Writer) error {
	fs, cfgPath := newFlagSet("remote")
	addr := fs.String("addr", "", "gRPC address of a running isa serve (default from config)")
	altitude := fs.Float64("altitude", 0, "Altitude in metres")
	stream := fs.Bool("stream", false, "Stream a profile instead of querying one altitude")
	pf := addProfileFlags(fs)
	timeout := fs.Duration("timeout", 5*time.Second, "Call timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *addr == "" {
		*addr = cfg.GetGRPCListen()
	}
	if *addr == "" {
		return errors.New("no gRPC address: pass --addr")
	}

	client, conn, err := rpc.Dial(*addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	d := cfg.DisplayUnits()
	if *stream {
		q, err := atmosphere.ParseQuantity(*pf.quantity)
		if err != nil {
			return err
		}
		maxAlt, count := pf.resolve(cfg.GetMaxAltitude(), cfg.GetSampleCount())
		return streamProfileCSV(ctx, client, stdout, q, maxAlt, count, d)
	}

	c, err := client.Conditions(ctx, *altitude)
	if err != nil {
		return err
	}
	return printConditions(stdout, c, d)
}

func streamProfileCSV(ctx context.Context, client *rpc.Client, w io.Writer, q atmosphere.Quantity, maxAlt float64, count int, d units.Display) error {
	var points []atmosphere.ProfilePoint
	err := client.StreamProfile(ctx, q, maxAlt, count, func(p atmosphere.ProfilePoint) error {
		points = append(points, p)
		return nil
	})
	if err != nil {
		return err
	}
	return writeProfileCSV(w, q, points, d)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
