package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/seqsense/pcgol/mat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqsense/pcdviewer/cloud"
	"github.com/seqsense/pcdviewer/present"
	"github.com/seqsense/pcdviewer/process"
)

const tetraPLY = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
end_header
0 0 0
1 0 0
0 1 0
0 0 1
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "tetra.ply", tetraPLY)
	out := filepath.Join(dir, "tetra.png")
	export := filepath.Join(dir, "tetra.pcd")

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-o", out, "-export", export, in}, &stdout))

	expected := "\nPoint Cloud Info:\n" +
		"Number of points: 4\n" +
		"Has normals: false\n" +
		"Has colors: false\n" +
		"\nVisualizing point cloud...\n"
	assert.Equal(t, expected, stdout.String())

	_, err := os.Stat(out)
	require.NoError(t, err)

	c, err := cloud.Load(export)
	require.NoError(t, err)
	assert.True(t, c.HasNormals())
	want := []mat.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	if diff := cmp.Diff(want, c.Points, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("Exported points differ (-want +got):\n%s", diff)
	}
	for _, n := range c.Normals {
		assert.InDelta(t, 1, n.Norm(), 1e-4)
	}
}

func TestRun_HTML(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "tetra.ply", tetraPLY)
	out := filepath.Join(dir, "tetra.html")

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-o", out, "-voxel", "0.5", "-color", "red", in}, &stdout))
	assert.Contains(t, stdout.String(), "Controls:\n- Click and drag to rotate\n")

	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestRun_ServeCancelled(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "tetra.ply", tetraPLY)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	err := run(ctx, []string{"-o", filepath.Join(dir, "tetra.svg"), "-serve", "127.0.0.1:0", in}, &stdout)
	assert.NoError(t, err)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "tetra.ply", tetraPLY)
	txt := writeFile(t, dir, "tetra.txt", "0 0 0\n")
	out := filepath.Join(dir, "out.png")

	testCases := map[string]struct {
		args     []string
		expected error
	}{
		"NotFound": {
			args:     []string{"-o", out, filepath.Join(dir, "missing.ply")},
			expected: cloud.ErrNotFound,
		},
		"UnsupportedFormat": {
			args:     []string{"-o", out, txt},
			expected: cloud.ErrUnsupportedFormat,
		},
		"ZeroVoxel": {
			args:     []string{"-o", out, "-voxel", "0", in},
			expected: process.ErrInvalidVoxelSize,
		},
		"TinyVoxel": {
			args:     []string{"-o", out, "-voxel", "1e-9", in},
			expected: process.ErrInvalidVoxelSize,
		},
		"UnknownColor": {
			args:     []string{"-o", out, "-color", "plaid", in},
			expected: present.ErrUnknownColor,
		},
		"InvalidAlpha": {
			args:     []string{"-o", out, "-alpha", "2", in},
			expected: present.ErrInvalidConfig,
		},
		"InvalidLimits": {
			args:     []string{"-o", out, "-limits", "first", in},
			expected: present.ErrInvalidConfig,
		},
		"UnsupportedOutput": {
			args:     []string{"-o", filepath.Join(dir, "out.bmp"), in},
			expected: present.ErrInvalidConfig,
		},
	}

	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			var stdout bytes.Buffer
			err := run(context.Background(), tt.args, &stdout)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestRun_Usage(t *testing.T) {
	var stdout bytes.Buffer
	assert.NoError(t, run(context.Background(), []string{"-h"}, &stdout))
	assert.Error(t, run(context.Background(), []string{"a.ply", "b.ply"}, &stdout))
}

func TestParseFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "viewer.yaml", `
input: from_config.pcd
voxel_size: 0.05
colors: [red, "#00ff00"]
point_size: 2
axis_limits: union
style: light
`)

	testCases := map[string]struct {
		args     []string
		expected func(*config)
	}{
		"Defaults": {
			expected: func(*config) {},
		},
		"Flags": {
			args: []string{"-voxel", "0.1", "-color", "red,blue", "-axes=false", "-knn", "10", "cloud.pcd"},
			expected: func(c *config) {
				v := float32(0.1)
				c.VoxelSize = &v
				c.Colors = []string{"red", "blue"}
				c.ShowAxes = false
				c.KNN = 10
				c.Input = "cloud.pcd"
			},
		},
		"ConfigFile": {
			args: []string{"-config", cfgPath},
			expected: func(c *config) {
				v := float32(0.05)
				c.Input = "from_config.pcd"
				c.VoxelSize = &v
				c.Colors = []string{"red", "#00ff00"}
				c.PointSize = 2
				c.AxisLimits = "union"
				c.Style = "light"
			},
		},
		"FlagOverridesConfigFile": {
			args: []string{"-config", cfgPath, "-point-size", "3", "other.ply"},
			expected: func(c *config) {
				v := float32(0.05)
				c.Input = "other.ply"
				c.VoxelSize = &v
				c.Colors = []string{"red", "#00ff00"}
				c.PointSize = 3
				c.AxisLimits = "union"
				c.Style = "light"
			},
		},
	}

	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			cfg, err := parseFlags(tt.args)
			require.NoError(t, err)

			expected := defaultConfig()
			tt.expected(&expected)
			assert.Equal(t, expected, cfg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("Empty", func(t *testing.T) {
		cfg, err := loadConfig(writeFile(t, dir, "empty.yaml", ""))
		require.NoError(t, err)
		assert.Equal(t, defaultConfig(), cfg)
	})
	t.Run("UnknownKey", func(t *testing.T) {
		_, err := loadConfig(writeFile(t, dir, "unknown.yaml", "voxel: 0.1\n"))
		assert.Error(t, err)
	})
	t.Run("NotFound", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(dir, "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestConfig_Convert(t *testing.T) {
	cfg := defaultConfig()
	cfg.Orient = "viewpoint"
	cfg.AxisLimits = "union"

	opts, err := cfg.processOptions()
	require.NoError(t, err)
	assert.Equal(t, process.Options{KNN: process.DefaultKNN, Orient: process.OrientViewpoint}, opts)

	pcfg, err := cfg.presentConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"cyan"}, pcfg.Colors)
	assert.Equal(t, 0.0001, pcfg.PointSize)
	assert.Equal(t, present.AxisLimitsUnion, pcfg.AxisLimits)
	assert.True(t, pcfg.ShowAxes)

	cfg.Orient = "sideways"
	_, err = cfg.processOptions()
	assert.Error(t, err)
}
