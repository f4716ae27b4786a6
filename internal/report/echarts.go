// Package report renders a labeled trace as a chart: interactive HTML via
// go-echarts or a static PNG via gonum/plot. Reporting consumes the
// segmentation output; it never feeds back into it.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/cycle.report/internal/phase"
)

// phaseColors maps each phase to a stable chart colour.
var phaseColors = map[phase.Phase]string{
	phase.PhaseIdle:    "#4e79a7",
	phase.PhaseWashing: "#59a14f",
	phase.PhaseRinse:   "#f28e2b",
	phase.PhaseSpin:    "#e15759",
}

// RenderHTML writes a standalone HTML page with the raw and smoothed power
// lines and one scatter series per phase overlaid on the smoothed trace.
func RenderHTML(w io.Writer, lt *phase.LabeledTrace, title string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Theme:     "dark",
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("samples=%d duration=%.1fmin", lt.Len(), lt.Duration()/60),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "time (s)", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "power (W)"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	raw := make([]opts.LineData, 0, lt.Len())
	smoothed := make([]opts.LineData, 0, lt.Len())
	for i := 0; i < lt.Len(); i++ {
		t := lt.Samples[i].TimeSeconds
		raw = append(raw, opts.LineData{Value: []interface{}{t, lt.Samples[i].Power}})
		smoothed = append(smoothed, opts.LineData{Value: []interface{}{t, lt.Smoothed[i]}})
	}
	line.AddSeries("power", raw)
	line.AddSeries("power_smooth", smoothed)

	for _, p := range phase.Phases {
		scatter := charts.NewScatter()
		data := make([]opts.ScatterData, 0)
		for i := 0; i < lt.Len(); i++ {
			if lt.Phases[i] != p {
				continue
			}
			data = append(data, opts.ScatterData{
				Value: []interface{}{lt.Samples[i].TimeSeconds, lt.Smoothed[i]},
			})
		}
		scatter.AddSeries(string(p), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: phaseColors[p]}),
		)
		line.Overlap(scatter)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
