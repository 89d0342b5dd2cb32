// Package htmlcharts renders interactive go-echarts pages of atmosphere
// profiles and the layer table.
package htmlcharts

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/atmosphere/internal/atmosphere"
	"github.com/banshee-data/atmosphere/internal/units"
)

// DefaultAssetsHost serves the echarts javascript bundles.
const DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// Renderer builds charts for one model in fixed display units.
type Renderer struct {
	Model      *atmosphere.Model
	Display    units.Display
	AssetsHost string
}

// NewRenderer returns a Renderer using the default assets host.
func NewRenderer(m *atmosphere.Model, d units.Display) *Renderer {
	return &Renderer{Model: m, Display: d, AssetsHost: DefaultAssetsHost}
}

func (r *Renderer) initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle:  title,
		Width:      "100%",
		Height:     "640px",
		AssetsHost: r.AssetsHost,
	})
}

// ProfileChart samples q from ground to maxAltitude and returns it as a
// line chart with altitude along the x axis.
func (r *Renderer) ProfileChart(q atmosphere.Quantity, maxAltitude float64, count int) (*charts.Line, error) {
	points, err := r.Model.SampleProfile(q, maxAltitude, count)
	if err != nil {
		return nil, err
	}

	name := q.String()
	x := make([]string, len(points))
	y := make([]opts.LineData, len(points))
	for i, pt := range points {
		alt := r.Display.Convert("altitude", pt.Altitude)
		x[i] = strconv.FormatFloat(alt, 'f', 0, 64)
		y[i] = opts.LineData{Value: r.Display.Convert(name, pt.Value)}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		r.initOpts("ISA "+name),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("ISA %s", name),
			Subtitle: fmt.Sprintf("0 to %.0f %s, %d samples", r.Display.Convert("altitude", maxAltitude), r.Display.Altitude, len(points)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: fmt.Sprintf("Altitude (%s)", r.Display.Altitude), NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("%s (%s)", name, r.Display.Unit(name)), Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	line.SetXAxis(x).AddSeries(name, y,
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false), ShowSymbol: opts.Bool(false)}),
	)
	return line, nil
}

// LayersChart returns a bar chart of each layer's thickness, labelled with
// its lapse rate in K/km.
func (r *Renderer) LayersChart() *charts.Bar {
	layers := r.Model.Layers().Layers()

	x := make([]string, len(layers))
	y := make([]opts.BarData, len(layers))
	for i, l := range layers {
		x[i] = l.Name
		y[i] = opts.BarData{
			Name:  fmt.Sprintf("%.1f K/km", l.LapseRate*1000),
			Value: r.Display.Convert("altitude", l.Height()),
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		r.initOpts("ISA layers"),
		charts.WithTitleOpts(opts.Title{Title: "ISA layers", Subtitle: fmt.Sprintf("%d layers, ceiling %.0f m", len(layers), r.Model.Layers().Ceiling())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("Thickness (%s)", r.Display.Altitude)}),
	)
	bar.SetXAxis(x).
		AddSeries("thickness", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// RenderProfile writes a standalone page holding q's profile chart.
func (r *Renderer) RenderProfile(w io.Writer, q atmosphere.Quantity, maxAltitude float64, count int) error {
	line, err := r.ProfileChart(q, maxAltitude, count)
	if err != nil {
		return err
	}
	return r.renderPage(w, line)
}

// RenderLayers writes a standalone page holding the layer chart.
func (r *Renderer) RenderLayers(w io.Writer) error {
	return r.renderPage(w, r.LayersChart())
}

// RenderDashboard writes one page with every quantity's profile followed
// by the layer chart.
func (r *Renderer) RenderDashboard(w io.Writer, maxAltitude float64, count int) error {
	cs := make([]components.Charter, 0, len(atmosphere.Quantities)+1)
	for _, q := range atmosphere.Quantities {
		line, err := r.ProfileChart(q, maxAltitude, count)
		if err != nil {
			return err
		}
		cs = append(cs, line)
	}
	cs = append(cs, r.LayersChart())
	return r.renderPage(w, cs...)
}

func (r *Renderer) renderPage(w io.Writer, cs ...components.Charter) error {
	page := components.NewPage()
	page.SetAssetsHost(r.AssetsHost)
	page.AddCharts(cs...)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}
