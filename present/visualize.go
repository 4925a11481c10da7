package present

import (
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/seqsense/pcdviewer/cloud"
)

// scene is everything a renderer needs for one call.
type scene struct {
	clouds []*cloud.PointCloud
	colors []color.NRGBA
	limits Bounds
	cfg    Config
}

type renderer func(s *scene) error

// renderers maps the output file extension to its renderer.
var renderers = map[string]renderer{
	".png":  renderPlot,
	".jpg":  renderPlot,
	".jpeg": renderPlot,
	".svg":  renderPlot,
	".pdf":  renderPlot,
	".eps":  renderPlot,
	".tif":  renderPlot,
	".tiff": renderPlot,
	".html": renderHTML,
}

// Visualize draws the clouds as a 3D scatter plot into cfg.Output.
// Each cloud gets its own color from cfg.Colors.
func Visualize(clouds []*cloud.PointCloud, cfg Config) error {
	if len(clouds) == 0 {
		return ErrNoClouds
	}
	for i, c := range clouds {
		if c == nil || c.Len() == 0 {
			return fmt.Errorf("cloud %d: %w", i, cloud.ErrEmptyCloud)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	colors, err := seriesColors(cfg.Colors, len(clouds), cfg.Alpha)
	if err != nil {
		return err
	}

	s := &scene{
		clouds: clouds,
		colors: colors,
		limits: axisLimits(clouds, cfg.AxisLimits),
		cfg:    cfg,
	}
	if err := renderers[filepath.Ext(cfg.Output)](s); err != nil {
		return fmt.Errorf("failed to render %s: %w", cfg.Output, err)
	}
	return nil
}

// axisLimits frames every cloud on its own centroid. With AxisLimitsLast
// the last frame wins, as successive set_xlim calls do in matplotlib.
func axisLimits(clouds []*cloud.PointCloud, mode AxisLimitMode) Bounds {
	var limits Bounds
	for i, c := range clouds {
		f := frame(c.Points)
		if i == 0 || mode == AxisLimitsLast {
			limits = f
			continue
		}
		limits = boundsUnion(limits, f)
	}
	return limits
}
