package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/seqsense/pcdviewer/present"
	"github.com/seqsense/pcdviewer/process"
)

const defaultInput = "point_cloud(1).ply"

type config struct {
	Input string `yaml:"input"`

	VoxelSize *float32 `yaml:"voxel_size"`
	KNN       int      `yaml:"knn"`
	Radius    float32  `yaml:"radius"`
	Orient    string   `yaml:"orient"`

	Colors     []string `yaml:"colors"`
	PointSize  float64  `yaml:"point_size"`
	Alpha      float64  `yaml:"alpha"`
	ShowAxes   bool     `yaml:"show_axes"`
	Elevation  float64  `yaml:"elevation"`
	Azimuth    float64  `yaml:"azimuth"`
	Style      string   `yaml:"style"`
	AxisLimits string   `yaml:"axis_limits"`
	Width      float64  `yaml:"width"`
	Height     float64  `yaml:"height"`
	Title      string   `yaml:"title"`

	Output string `yaml:"output"`
	Export string `yaml:"export"`
	Serve  string `yaml:"serve"`
}

// defaultConfig is the cyan, tiny point, no downsampling demonstration.
func defaultConfig() config {
	d := present.DefaultConfig()
	return config{
		Input:      defaultInput,
		KNN:        process.DefaultKNN,
		Orient:     "none",
		Colors:     []string{"cyan"},
		PointSize:  0.0001,
		Alpha:      1,
		ShowAxes:   true,
		Elevation:  d.Elevation,
		Azimuth:    d.Azimuth,
		Style:      "dark",
		AxisLimits: "last",
		Width:      d.Width,
		Height:     d.Height,
		Output:     d.Output,
	}
}

// loadConfig reads a YAML file over the defaults. Unknown keys are errors.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c config) processOptions() (process.Options, error) {
	orient, err := process.ParseOrientation(c.Orient)
	if err != nil {
		return process.Options{}, err
	}
	return process.Options{
		VoxelSize: c.VoxelSize,
		KNN:       c.KNN,
		Radius:    c.Radius,
		Orient:    orient,
	}, nil
}

func (c config) presentConfig() (present.Config, error) {
	style, err := present.ParseStyle(c.Style)
	if err != nil {
		return present.Config{}, err
	}
	limits, err := present.ParseAxisLimitMode(c.AxisLimits)
	if err != nil {
		return present.Config{}, err
	}
	pc := present.Config{
		Colors:     c.Colors,
		PointSize:  c.PointSize,
		Alpha:      c.Alpha,
		ShowAxes:   c.ShowAxes,
		Elevation:  c.Elevation,
		Azimuth:    c.Azimuth,
		Style:      style,
		AxisLimits: limits,
		Width:      c.Width,
		Height:     c.Height,
		Output:     c.Output,
		Title:      c.Title,
	}
	return pc, pc.Validate()
}
