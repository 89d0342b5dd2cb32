// Package profileplot renders atmosphere profiles to PNG or SVG with
// gonum/plot. Altitude is drawn on the vertical axis in kilometres and
// layer boundaries appear as dashed guide lines.
package profileplot

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/atmosphere/internal/atmosphere"
	"github.com/banshee-data/atmosphere/internal/fsutil"
	"github.com/banshee-data/atmosphere/internal/monitoring"
	"github.com/banshee-data/atmosphere/internal/units"
)

// Supported output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

var logf = monitoring.Tagf("plot")

// Options configures a ProfilePlotter. Zero fields take defaults.
type Options struct {
	FS          fsutil.FileSystem
	Display     units.Display
	MaxAltitude float64 // metres
	Count       int
	WidthCm     float64
	HeightCm    float64
	// HideLayers suppresses the layer boundary guide lines.
	HideLayers bool
}

// ProfilePlotter draws quantity-vs-altitude charts for one model.
type ProfilePlotter struct {
	model       *atmosphere.Model
	fs          fsutil.FileSystem
	display     units.Display
	maxAltitude float64
	count       int
	width       vg.Length
	height      vg.Length
	showLayers  bool
	colors      []color.Color
}

// NewProfilePlotter creates a plotter for m.
func NewProfilePlotter(m *atmosphere.Model, opts Options) *ProfilePlotter {
	p := &ProfilePlotter{
		model:       m,
		fs:          opts.FS,
		display:     opts.Display,
		maxAltitude: opts.MaxAltitude,
		count:       opts.Count,
		width:       vg.Length(opts.WidthCm) * vg.Centimeter,
		height:      vg.Length(opts.HeightCm) * vg.Centimeter,
		showLayers:  !opts.HideLayers,
		colors:      generateColors(len(atmosphere.Quantities)),
	}
	if p.fs == nil {
		p.fs = fsutil.OSFileSystem{}
	}
	if p.display == (units.Display{}) {
		p.display = units.SI()
	}
	if p.maxAltitude <= 0 {
		p.maxAltitude = m.Layers().Ceiling()
	}
	if p.count <= 0 {
		p.count = 200
	}
	if opts.WidthCm <= 0 {
		p.width = 16 * vg.Centimeter
	}
	if opts.HeightCm <= 0 {
		p.height = 20 * vg.Centimeter
	}
	return p
}

// logFloors maps the quantities drawn on a log10 axis to the SI value
// their samples are clamped to.
var logFloors = map[atmosphere.Quantity]float64{
	atmosphere.QuantityPressure: 1,    // Pa
	atmosphere.QuantityDensity:  1e-6, // kg/m^3
}

// Plot builds the chart for q without rendering it. Pressure and density
// use a log10 value axis.
func (p *ProfilePlotter) Plot(q atmosphere.Quantity) (*plot.Plot, error) {
	points, err := p.model.SampleProfile(q, p.maxAltitude, p.count)
	if err != nil {
		return nil, err
	}

	name := q.String()
	unit := p.display.Unit(name)
	floor, logScale := logFloors[q]

	pts := make(plotter.XYs, len(points))
	for i, pt := range points {
		v := pt.Value
		if logScale {
			v = math.Max(v, floor)
		}
		pts[i] = plotter.XY{
			X: p.display.Convert(name, v),
			Y: units.ConvertAltitude(pt.Altitude, units.Kilometers),
		}
	}

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("ISA %s profile", strings.ReplaceAll(name, "_", " "))
	pl.X.Label.Text = fmt.Sprintf("%s (%s)", title(name), unit)
	pl.Y.Label.Text = "Altitude (km)"
	pl.Add(plotter.NewGrid())
	if logScale {
		pl.X.Scale = plot.LogScale{}
		pl.X.Tick.Marker = plot.LogTicks{}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("build %s line: %w", name, err)
	}
	line.Color = p.colors[int(q)%len(p.colors)]
	line.Width = vg.Points(1.5)
	pl.Add(line)
	pl.Legend.Add(name, line)

	if p.showLayers {
		if _, err := p.addLayerGuides(pl, pts); err != nil {
			return nil, err
		}
	}

	pl.Legend.Top = true
	pl.Legend.Left = false
	pl.Legend.XOffs = -10
	pl.Legend.YOffs = -10
	return pl, nil
}

// addLayerGuides draws a dashed horizontal line at every layer base inside
// the plotted altitude range, spanning the data's x extent. It returns the
// number of guides drawn.
func (p *ProfilePlotter) addLayerGuides(pl *plot.Plot, pts plotter.XYs) (int, error) {
	xmin, xmax, _, _ := plotter.XYRange(pts)
	guide := color.RGBA{R: 128, G: 128, B: 128, A: 255}

	n := 0
	for _, l := range p.model.Layers().Layers()[1:] {
		if l.BaseAltitude > p.maxAltitude {
			break
		}
		y := units.ConvertAltitude(l.BaseAltitude, units.Kilometers)
		g, err := plotter.NewLine(plotter.XYs{{X: xmin, Y: y}, {X: xmax, Y: y}})
		if err != nil {
			return n, fmt.Errorf("build guide for %s: %w", l.Name, err)
		}
		g.Color = guide
		g.Width = vg.Points(0.5)
		g.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		pl.Add(g)
		if n == 0 {
			pl.Legend.Add("layer boundary", g)
		}
		n++
	}
	return n, nil
}

// Render writes q's chart to w in the given format.
func (p *ProfilePlotter) Render(w io.Writer, q atmosphere.Quantity, format string) error {
	if format != FormatPNG && format != FormatSVG {
		return fmt.Errorf("unsupported plot format %q: must be %s or %s", format, FormatPNG, FormatSVG)
	}
	pl, err := p.Plot(q)
	if err != nil {
		return err
	}
	wt, err := pl.WriterTo(p.width, p.height, format)
	if err != nil {
		return fmt.Errorf("render %s plot: %w", q, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save renders q to path, taking the format from the file extension.
func (p *ProfilePlotter) Save(path string, q atmosphere.Quantity) (err error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	f, err := p.fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return p.Render(f, q, format)
}

// GeneratePlots writes one file per quantity into dir and returns how many
// were written.
func (p *ProfilePlotter) GeneratePlots(dir, format string) (int, error) {
	if err := p.fs.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	written := 0
	for _, q := range atmosphere.Quantities {
		path := filepath.Join(dir, fmt.Sprintf("%s.%s", q, format))
		if err := p.Save(path, q); err != nil {
			return written, err
		}
		written++
	}
	logf("wrote %d %s plots to %s", written, format, dir)
	return written, nil
}

func title(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
