package present

import (
	"errors"
	"fmt"
	"path/filepath"
)

var (
	// ErrInvalidConfig is returned for out of range render parameters.
	ErrInvalidConfig = errors.New("invalid render config")
	// ErrNoClouds is returned when Visualize gets nothing to draw.
	ErrNoClouds = errors.New("no point cloud to visualize")
)

// Style is the color theme of the rendered figure.
type Style int

const (
	StyleDark Style = iota
	StyleLight
)

// ParseStyle converts "dark" or "light".
func ParseStyle(s string) (Style, error) {
	switch s {
	case "", "dark":
		return StyleDark, nil
	case "light":
		return StyleLight, nil
	}
	return StyleDark, fmt.Errorf("%w: unknown style %q", ErrInvalidConfig, s)
}

// AxisLimitMode selects how the shared axis range is chosen when several
// clouds are drawn together.
type AxisLimitMode int

const (
	// AxisLimitsLast frames the scene on the last cloud.
	AxisLimitsLast AxisLimitMode = iota
	// AxisLimitsUnion frames the scene on the union of all per-cloud frames.
	AxisLimitsUnion
)

// ParseAxisLimitMode converts "last" or "union".
func ParseAxisLimitMode(s string) (AxisLimitMode, error) {
	switch s {
	case "", "last":
		return AxisLimitsLast, nil
	case "union":
		return AxisLimitsUnion, nil
	}
	return AxisLimitsLast, fmt.Errorf("%w: unknown axis limit mode %q", ErrInvalidConfig, s)
}

// Config is passed to every Visualize call; nothing is kept between calls.
type Config struct {
	// Colors holds one color name or #rrggbb per cloud. With fewer colors
	// than clouds the list is reused cyclically, so every cloud is drawn.
	Colors []string
	// PointSize is the marker area in points², as in matplotlib.
	PointSize float64
	Alpha     float64
	ShowAxes  bool
	// Elevation and Azimuth are the camera angles in degrees.
	Elevation  float64
	Azimuth    float64
	Style      Style
	AxisLimits AxisLimitMode
	// Width and Height are the figure size in inches.
	Width  float64
	Height float64
	// Output is the rendered file; its extension selects the renderer.
	Output string
	Title  string
}

const (
	defaultColor     = "royalblue"
	defaultPointSize = 0.5
	defaultElevation = 30
	defaultAzimuth   = 45
	defaultWidth     = 12
	defaultHeight    = 8
	defaultOutput    = "pointcloud.png"
)

func DefaultConfig() Config {
	return Config{
		Colors:     []string{defaultColor},
		PointSize:  defaultPointSize,
		Alpha:      1,
		ShowAxes:   true,
		Elevation:  defaultElevation,
		Azimuth:    defaultAzimuth,
		Style:      StyleDark,
		AxisLimits: AxisLimitsLast,
		Width:      defaultWidth,
		Height:     defaultHeight,
		Output:     defaultOutput,
	}
}

func (c Config) Validate() error {
	if !(c.PointSize > 0) {
		return fmt.Errorf("%w: point size must be >0", ErrInvalidConfig)
	}
	if !(c.Alpha >= 0 && c.Alpha <= 1) {
		return fmt.Errorf("%w: alpha must be in [0,1]", ErrInvalidConfig)
	}
	if !(c.Width > 0 && c.Height > 0) {
		return fmt.Errorf("%w: figure size must be >0", ErrInvalidConfig)
	}
	if _, ok := renderers[filepath.Ext(c.Output)]; !ok {
		return fmt.Errorf("%w: unsupported output %q", ErrInvalidConfig, c.Output)
	}
	return nil
}
