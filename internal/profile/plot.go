package profile

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Mode selects which profile plot is drawn.
type Mode string

const (
	// ModeDistance scatters every sample's RSSI against distance.
	ModeDistance Mode = "distance"
	// ModeSlice scatters the samples along one bearing.
	ModeSlice Mode = "slice"
	// ModeStacked draws a smoothed profile for every slice around the
	// base, offset by slice heading.
	ModeStacked Mode = "stacked"
)

// ParseMode parses a plot mode name. Empty selects ModeDistance.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeDistance, nil
	case ModeDistance, ModeSlice, ModeStacked:
		return m, nil
	default:
		return "", fmt.Errorf("unknown profile mode %q (want distance, slice or stacked)", s)
	}
}

// Options configures a profile plot.
type Options struct {
	Mode      Mode
	Heading   float64 // ModeSlice: bearing of the slice
	Tolerance float64 // ModeSlice: half-width in degrees
	Step      float64 // ModeStacked: slice spacing in degrees
	Smoothing Method  // ModeStacked
}

// DefaultOptions returns the settings the survey plots have always used.
func DefaultOptions() Options {
	return Options{
		Mode:      ModeDistance,
		Heading:   180,
		Tolerance: 2,
		Step:      5,
		Smoothing: SavitzkyGolayMethod,
	}
}

// stackAmplitude is how many slice steps the full RSSI span occupies in a
// stacked plot.
const stackAmplitude = 3

// Plot builds the plot for obs. It returns the number of observations or
// profiles drawn along with the plot.
func Plot(obs []Observation, o Options) (*plot.Plot, int, error) {
	p := plot.New()
	p.X.Label.Text = "Distance from base station (m)"
	p.Y.Label.Text = "Signal Strength (RSSI)"
	p.Add(plotter.NewGrid())

	switch o.Mode {
	case ModeDistance, "":
		p.Title.Text = "RSSI vs Distance from Base Station"
		if err := addScatter(p, obs, vg.Points(2)); err != nil {
			return nil, 0, err
		}
		return p, len(obs), nil

	case ModeSlice:
		slice := Slice(obs, o.Heading, o.Tolerance)
		p.Title.Text = fmt.Sprintf("RSSI vs Distance Along %g° ± %g°", o.Heading, o.Tolerance)
		if err := addScatter(p, slice, vg.Points(2.5)); err != nil {
			return nil, 0, err
		}
		return p, len(slice), nil

	case ModeStacked:
		profiles, err := Profiles(obs, o.Step, o.Smoothing)
		if err != nil {
			return nil, 0, err
		}
		p.Title.Text = fmt.Sprintf("Stacked Radial RSSI Profiles (Every %g°), smoothing: %s", o.Step, o.Smoothing)
		p.Y.Label.Text = "Heading (deg) + relative RSSI"
		if err := addStacked(p, profiles, o.Step); err != nil {
			return nil, 0, err
		}
		return p, len(profiles), nil
	}
	return nil, 0, fmt.Errorf("unknown profile mode %q", o.Mode)
}

func addScatter(p *plot.Plot, obs []Observation, radius vg.Length) error {
	if len(obs) == 0 {
		return nil
	}
	pts := make(plotter.XYs, len(obs))
	for i, o := range obs {
		pts[i] = plotter.XY{X: o.Distance, Y: o.RSSI}
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.GlyphStyle.Radius = radius
	s.GlyphStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	p.Add(s)
	return nil
}

// addStacked draws each profile as a line at its heading, displaced by its
// smoothed RSSI scaled to stackAmplitude slice steps.
func addStacked(p *plot.Plot, profiles []Profile, step float64) error {
	lo, hi := rssiRange(profiles)
	scale := 0.0
	if hi > lo {
		scale = stackAmplitude * step / (hi - lo)
	}

	colors := generateColors(len(profiles))
	for i, prof := range profiles {
		pts := make(plotter.XYs, len(prof.Distance))
		for j := range prof.Distance {
			pts[j] = plotter.XY{X: prof.Distance[j], Y: prof.Heading + (prof.Smoothed[j]-lo)*scale}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		p.Add(line)
	}
	return nil
}

// WritePNG renders p as a PNG image.
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to prepare plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}

// generateColors creates a palette of distinct colours for profile lines.
func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}

	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / float64(n)
		r, g, b := hslToRGB(hue, 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64

	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
