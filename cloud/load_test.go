package cloud

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/seqsense/pcgol/mat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "tetra.ply", tetraPLY)

	c, err := Load(path)
	require.NoError(t, err)

	expected := []mat.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	assert.Equal(t, expected, c.Points)
	assert.False(t, c.HasNormals())
	assert.False(t, c.HasColors())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	testCases := map[string]struct {
		path     string
		content  *string
		expected error
	}{
		"NotFound": {
			path:     filepath.Join(dir, "missing.ply"),
			expected: ErrNotFound,
		},
		"NotFoundBeforeExtension": {
			path:     filepath.Join(dir, "missing.txt"),
			expected: ErrNotFound,
		},
		"Text": {
			path:     filepath.Join(dir, "cloud.txt"),
			content:  strPtr("0 0 0\n"),
			expected: ErrUnsupportedFormat,
		},
		"UpperCaseExtension": {
			path:     filepath.Join(dir, "cloud.PLY"),
			content:  strPtr(tetraPLY),
			expected: ErrUnsupportedFormat,
		},
		"NoPoints": {
			path:     filepath.Join(dir, "empty.ply"),
			content:  strPtr("ply\nformat ascii 1.0\nelement vertex 0\nproperty float x\nproperty float y\nproperty float z\nend_header\n"),
			expected: ErrEmptyCloud,
		},
	}

	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			if tt.content != nil {
				require.NoError(t, os.WriteFile(tt.path, []byte(*tt.content), 0o644))
			}
			_, err := Load(tt.path)
			require.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := writeFile(t, "broken.ply", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n1 1\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.ply")
}

func TestPointCloud_Validate(t *testing.T) {
	c := &PointCloud{
		Points:  []mat.Vec3{{0, 0, 0}, {1, 1, 1}},
		Normals: []mat.Vec3{{0, 0, 1}},
	}
	require.ErrorIs(t, c.Validate(), ErrLengthMismatch)

	c.Normals = append(c.Normals, mat.Vec3{0, 0, 1})
	require.NoError(t, c.Validate())
}

func TestPointCloud_Clone(t *testing.T) {
	c := &PointCloud{
		Points:  []mat.Vec3{{1, 2, 3}},
		Normals: []mat.Vec3{{0, 0, 1}},
	}
	cc := c.Clone()
	cc.Points[0] = mat.Vec3{4, 5, 6}
	cc.Normals[0] = mat.Vec3{1, 0, 0}

	assert.Equal(t, mat.Vec3{1, 2, 3}, c.Points[0])
	assert.Equal(t, mat.Vec3{0, 0, 1}, c.Normals[0])
	assert.Nil(t, cc.Colors)
}

func strPtr(s string) *string {
	return &s
}
