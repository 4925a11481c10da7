package present

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// pixelsPerInch converts the figure size to the HTML canvas size.
const pixelsPerInch = 100

var htmlThemes = map[Style]string{
	StyleDark:  "dark",
	StyleLight: "white",
}

// renderHTML writes an interactive page that can be rotated and zoomed
// in a browser.
func renderHTML(s *scene) error {
	title := s.cfg.Title
	if title == "" {
		title = "Point Cloud"
	}

	chart := charts.NewScatter3D()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Theme:     htmlThemes[s.cfg.Style],
			Width:     fmt.Sprintf("%dpx", int(s.cfg.Width*pixelsPerInch)),
			Height:    fmt.Sprintf("%dpx", int(s.cfg.Height*pixelsPerInch)),
		}),
		charts.WithTitleOpts(opts.Title{Title: s.cfg.Title}),
		charts.WithXAxis3DOpts(opts.XAxis3D{
			Name: "X",
			Show: opts.Bool(s.cfg.ShowAxes),
			Min:  float64(s.limits.Min[0]),
			Max:  float64(s.limits.Max[0]),
		}),
		charts.WithYAxis3DOpts(opts.YAxis3D{
			Name: "Y",
			Show: opts.Bool(s.cfg.ShowAxes),
			Min:  float64(s.limits.Min[1]),
			Max:  float64(s.limits.Max[1]),
		}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{
			Name: "Z",
			Show: opts.Bool(s.cfg.ShowAxes),
			Min:  float64(s.limits.Min[2]),
			Max:  float64(s.limits.Max[2]),
		}),
		charts.WithGrid3DOpts(opts.Grid3D{
			Show: opts.Bool(s.cfg.ShowAxes),
		}),
	)

	for i, c := range s.clouds {
		data := make([]opts.Chart3DData, c.Len())
		for j, p := range c.Points {
			data[j] = opts.Chart3DData{Value: []interface{}{p[0], p[1], p[2]}}
		}
		chart.AddSeries(fmt.Sprintf("cloud %d", i), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: cssColor(s.colors[i])}),
		)
	}

	f, err := os.Create(s.cfg.Output)
	if err != nil {
		return err
	}
	if err := chart.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
