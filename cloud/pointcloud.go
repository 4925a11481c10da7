// Package cloud holds the in-memory point cloud and reads it from PLY and
// PCD files.
package cloud

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/seqsense/pcgol/mat"
)

var (
	// ErrNotFound is returned by Load when the file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrUnsupportedFormat is returned by Load for extensions other than .ply and .pcd.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyCloud is returned when an operation needs at least one point.
	ErrEmptyCloud = errors.New("point cloud has no points")
	// ErrLengthMismatch is returned when normals or colors are not index-aligned with points.
	ErrLengthMismatch = errors.New("attribute length does not match point count")
	// ErrMalformed is returned for files whose content contradicts their header.
	ErrMalformed = errors.New("malformed point cloud file")
)

// PointCloud is an ordered set of points with optional per-point normals
// and colors. Normals and Colors are either nil or have the same length as
// Points.
type PointCloud struct {
	Points  []mat.Vec3
	Normals []mat.Vec3
	Colors  []color.NRGBA
}

func (c *PointCloud) Len() int {
	return len(c.Points)
}

func (c *PointCloud) HasNormals() bool {
	return c.Normals != nil
}

func (c *PointCloud) HasColors() bool {
	return c.Colors != nil
}

// Validate checks that attributes are index-aligned with the points.
func (c *PointCloud) Validate() error {
	if c.Normals != nil && len(c.Normals) != len(c.Points) {
		return fmt.Errorf("normals: %d, points: %d: %w", len(c.Normals), len(c.Points), ErrLengthMismatch)
	}
	if c.Colors != nil && len(c.Colors) != len(c.Points) {
		return fmt.Errorf("colors: %d, points: %d: %w", len(c.Colors), len(c.Points), ErrLengthMismatch)
	}
	return nil
}

// Clone returns a deep copy.
func (c *PointCloud) Clone() *PointCloud {
	out := &PointCloud{
		Points: append([]mat.Vec3{}, c.Points...),
	}
	if c.Normals != nil {
		out.Normals = append([]mat.Vec3{}, c.Normals...)
	}
	if c.Colors != nil {
		out.Colors = append([]color.NRGBA{}, c.Colors...)
	}
	return out
}
