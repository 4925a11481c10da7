package present

import (
	"image/color"
	"math"

	"github.com/seqsense/pcgol/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	// minGlyphRadius keeps tiny markers visible in raster output.
	minGlyphRadius = 0.3
	labelMargin    = 1.08
	framePadding   = 1.05
)

type plotTheme struct {
	background, foreground, box color.Color
}

var plotThemes = map[Style]plotTheme{
	StyleDark: {
		background: color.Black,
		foreground: color.White,
		box:        color.Gray{Y: 0x60},
	},
	StyleLight: {
		background: color.White,
		foreground: color.Black,
		box:        color.Gray{Y: 0xB0},
	},
}

// glyphRadius converts a matplotlib marker area in points² to a radius.
func glyphRadius(area float64) vg.Length {
	r := math.Sqrt(area) / 2
	if r < minGlyphRadius {
		r = minGlyphRadius
	}
	return vg.Points(r)
}

func renderPlot(s *scene) error {
	theme := plotThemes[s.cfg.Style]

	p := plot.New()
	p.BackgroundColor = theme.background
	p.Title.Text = s.cfg.Title
	p.Title.TextStyle.Color = theme.foreground
	p.HideAxes()

	cam := newCamera(s.cfg.Elevation, s.cfg.Azimuth)
	center := s.limits.Center()
	project := func(v mat.Vec3) plotter.XY {
		x, y := cam.project(v.Sub(center))
		return plotter.XY{X: x, Y: y}
	}

	corners := s.limits.corners()
	var projected [8]plotter.XY
	var extent float64
	for i, c := range corners {
		projected[i] = project(c)
		extent = math.Max(extent, math.Max(math.Abs(projected[i].X), math.Abs(projected[i].Y)))
	}
	if extent == 0 {
		extent = 1
	}

	// Wireframe of the axis cube: corners differing in exactly one bit.
	for i := range corners {
		for a := 0; a < 3; a++ {
			if i&(1<<a) != 0 {
				continue
			}
			edge, err := plotter.NewLine(plotter.XYs{projected[i], projected[i|1<<a]})
			if err != nil {
				return err
			}
			edge.LineStyle.Color = theme.box
			edge.LineStyle.Width = vg.Points(0.5)
			p.Add(edge)
		}
	}

	for i, c := range s.clouds {
		xys := make(plotter.XYs, c.Len())
		for j, pt := range c.Points {
			xys[j] = project(pt)
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = s.colors[i]
		sc.GlyphStyle.Radius = glyphRadius(s.cfg.PointSize)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
	}

	if s.cfg.ShowAxes {
		labels, err := axisLabels(corners, project)
		if err != nil {
			return err
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Color = theme.foreground
			labels.TextStyle[i].XAlign = text.XCenter
			labels.TextStyle[i].YAlign = text.YCenter
		}
		p.Add(labels)
	}

	// Same data range per inch on both axes keeps the aspect equal.
	aspect := s.cfg.Width / s.cfg.Height
	r := extent * framePadding
	p.X.Min, p.X.Max = -r*math.Max(aspect, 1), r*math.Max(aspect, 1)
	p.Y.Min, p.Y.Max = -r*math.Max(1/aspect, 1), r*math.Max(1/aspect, 1)

	return p.Save(vg.Length(s.cfg.Width)*vg.Inch, vg.Length(s.cfg.Height)*vg.Inch, s.cfg.Output)
}

// axisLabels places X, Y and Z beyond the middle of the cube edges that
// start at the minimum corner.
func axisLabels(corners [8]mat.Vec3, project func(mat.Vec3) plotter.XY) (*plotter.Labels, error) {
	origin := corners[0]
	xys := make(plotter.XYs, 3)
	for a := 0; a < 3; a++ {
		mid := origin.Add(corners[1<<a]).Mul(0.5)
		xy := project(mid)
		xys[a] = plotter.XY{X: xy.X * labelMargin, Y: xy.Y * labelMargin}
	}
	return plotter.NewLabels(plotter.XYLabels{
		XYs:    xys,
		Labels: []string{"X", "Y", "Z"},
	})
}
