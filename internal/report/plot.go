package report

import (
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/cycle.report/internal/phase"
)

var phaseRGBA = map[phase.Phase]color.RGBA{
	phase.PhaseIdle:    {R: 78, G: 121, B: 167, A: 255},
	phase.PhaseWashing: {R: 89, G: 161, B: 79, A: 255},
	phase.PhaseRinse:   {R: 242, G: 142, B: 43, A: 255},
	phase.PhaseSpin:    {R: 225, G: 87, B: 89, A: 255},
}

// RenderPNG saves a static plot of the labeled trace: the smoothed power
// line with one coloured scatter per phase.
func RenderPNG(path string, lt *phase.LabeledTrace, title string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "power (W)"

	lineXYs := make(plotter.XYs, lt.Len())
	for i := 0; i < lt.Len(); i++ {
		lineXYs[i].X = lt.Samples[i].TimeSeconds
		lineXYs[i].Y = lt.Smoothed[i]
	}
	line, err := plotter.NewLine(lineXYs)
	if err != nil {
		return fmt.Errorf("failed to build power line: %w", err)
	}
	line.Color = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	p.Add(line)
	p.Legend.Add("power_smooth", line)

	for _, ph := range phase.Phases {
		xys := make(plotter.XYs, 0)
		for i := 0; i < lt.Len(); i++ {
			if lt.Phases[i] != ph {
				continue
			}
			xys = append(xys, plotter.XY{X: lt.Samples[i].TimeSeconds, Y: lt.Smoothed[i]})
		}
		if len(xys) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("failed to build %s scatter: %w", ph, err)
		}
		scatter.GlyphStyle.Color = phaseRGBA[ph]
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(scatter)
		p.Legend.Add(string(ph), scatter)
	}

	if err := p.Save(12*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

// Render writes the chart whose format is chosen by the output extension:
// .html for the interactive chart, .png for the static plot.
func Render(path string, lt *phase.LabeledTrace, title string) error {
	switch {
	case strings.HasSuffix(path, ".html"):
		return renderHTMLFile(path, lt, title)
	case strings.HasSuffix(path, ".png"):
		return RenderPNG(path, lt, title)
	default:
		return fmt.Errorf("unsupported report format %q (want .html or .png)", path)
	}
}
