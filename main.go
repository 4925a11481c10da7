package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/seqsense/pcdviewer/cloud"
	"github.com/seqsense/pcdviewer/present"
	"github.com/seqsense/pcdviewer/process"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func parseFlags(args []string) (config, error) {
	fs := flag.NewFlagSet("pcdviewer", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: pcdviewer [flags] [file]\n\nfile defaults to %q.\n\n", defaultInput)
		fs.PrintDefaults()
	}

	def := defaultConfig()
	var (
		configPath = fs.String("config", "", "YAML config file; flags given explicitly override it")
		voxel      = fs.Float64("voxel", 0, "voxel size for downsampling, disabled unless set")
		knn        = fs.Int("knn", def.KNN, "number of neighbours for normal estimation")
		radius     = fs.Float64("radius", float64(def.Radius), "neighbour search radius, unbounded if 0")
		orient     = fs.String("orient", def.Orient, "normal orientation without previous normals: none|viewpoint")
		colors     = fs.String("color", strings.Join(def.Colors, ","), "comma separated colors, one per cloud")
		pointSize  = fs.Float64("point-size", def.PointSize, "marker area in points²")
		alpha      = fs.Float64("alpha", def.Alpha, "point opacity in [0,1]")
		axes       = fs.Bool("axes", def.ShowAxes, "show axes")
		limits     = fs.String("limits", def.AxisLimits, "axis limits for several clouds: last|union")
		style      = fs.String("style", def.Style, "color theme: dark|light")
		title      = fs.String("title", def.Title, "figure title")
		output     = fs.String("o", def.Output, "render output, .html for the interactive viewer")
		export     = fs.String("export", def.Export, "write the processed cloud as PCD")
		serve      = fs.String("serve", def.Serve, "serve the render output on this address until interrupted")
	)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	cfg := def
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			return config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "voxel":
			v := float32(*voxel)
			cfg.VoxelSize = &v
		case "knn":
			cfg.KNN = *knn
		case "radius":
			cfg.Radius = float32(*radius)
		case "orient":
			cfg.Orient = *orient
		case "color":
			cfg.Colors = strings.Split(*colors, ",")
		case "point-size":
			cfg.PointSize = *pointSize
		case "alpha":
			cfg.Alpha = *alpha
		case "axes":
			cfg.ShowAxes = *axes
		case "limits":
			cfg.AxisLimits = *limits
		case "style":
			cfg.Style = *style
		case "title":
			cfg.Title = *title
		case "o":
			cfg.Output = *output
		case "export":
			cfg.Export = *export
		case "serve":
			cfg.Serve = *serve
		}
	})

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.Input = fs.Arg(0)
	default:
		return config{}, fmt.Errorf("too many arguments: %v", fs.Args())
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	opts, err := cfg.processOptions()
	if err != nil {
		return err
	}
	pcfg, err := cfg.presentConfig()
	if err != nil {
		return err
	}

	ts := time.Now()
	c, err := cloud.Load(cfg.Input)
	if err != nil {
		return err
	}
	log.Printf("Loaded %s (%d points) in %v", cfg.Input, c.Len(), time.Since(ts))

	info, err := present.Info(c)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "\nPoint Cloud Info:\n")
	fmt.Fprintf(stdout, "Number of points: %d\n", info.NumPoints)
	fmt.Fprintf(stdout, "Has normals: %v\n", info.HasNormals)
	fmt.Fprintf(stdout, "Has colors: %v\n", info.HasColors)

	ts = time.Now()
	processed, err := process.Process(c, opts)
	if err != nil {
		return err
	}
	log.Printf("Processed cloud: %d points, normals estimated in %v", processed.Len(), time.Since(ts))

	if cfg.Export != "" {
		if err := cloud.Save(cfg.Export, processed); err != nil {
			return err
		}
		log.Printf("Exported processed cloud to %s", cfg.Export)
	}

	fmt.Fprintf(stdout, "\nVisualizing point cloud...\n")
	if filepath.Ext(pcfg.Output) == ".html" {
		fmt.Fprintf(stdout, "Controls:\n")
		fmt.Fprintf(stdout, "- Click and drag to rotate\n")
		fmt.Fprintf(stdout, "- Right click and drag to zoom\n")
		fmt.Fprintf(stdout, "- Middle click and drag to pan\n")
	}
	if err := present.Visualize([]*cloud.PointCloud{processed}, pcfg); err != nil {
		return err
	}
	log.Printf("Rendered %s", pcfg.Output)

	if cfg.Serve != "" {
		return present.Serve(ctx, cfg.Serve, pcfg.Output)
	}
	return nil
}
