// Package present summarizes point clouds and renders them as 3D scatter
// plots.
package present

import (
	"fmt"
	"math"

	"github.com/seqsense/pcgol/mat"

	"github.com/seqsense/pcdviewer/cloud"
)

// CloudInfo is a snapshot of descriptive statistics of a cloud.
type CloudInfo struct {
	NumPoints  int
	Bounds     Bounds
	Center     mat.Vec3
	HasNormals bool
	HasColors  bool
}

func (i CloudInfo) String() string {
	return fmt.Sprintf("Number of points: %d\nHas normals: %v\nHas colors: %v\nBounds min: %v\nBounds max: %v\nCenter: %v",
		i.NumPoints, i.HasNormals, i.HasColors, i.Bounds.Min, i.Bounds.Max, i.Center)
}

// Info computes the point count, bounding box and centroid of c.
func Info(c *cloud.PointCloud) (CloudInfo, error) {
	if c.Len() == 0 {
		return CloudInfo{}, cloud.ErrEmptyCloud
	}
	b := Bounds{
		Min: mat.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: mat.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
	for _, p := range c.Points {
		b.Min = vec3Min(b.Min, p)
		b.Max = vec3Max(b.Max, p)
	}
	return CloudInfo{
		NumPoints:  c.Len(),
		Bounds:     b,
		Center:     centroid(c.Points),
		HasNormals: c.HasNormals(),
		HasColors:  c.HasColors(),
	}, nil
}

// centroid accumulates in float64 to keep precision on large clouds.
func centroid(points []mat.Vec3) mat.Vec3 {
	var sum [3]float64
	for _, p := range points {
		for i := range sum {
			sum[i] += float64(p[i])
		}
	}
	n := float64(len(points))
	return mat.Vec3{float32(sum[0] / n), float32(sum[1] / n), float32(sum[2] / n)}
}

// frame returns the cube centered on the centroid of the points whose half
// size is the largest point-to-centroid distance.
func frame(points []mat.Vec3) Bounds {
	center := centroid(points)
	var maxDistSq float32
	for _, p := range points {
		maxDistSq = float32Max(maxDistSq, p.Sub(center).NormSq())
	}
	d := float32(math.Sqrt(float64(maxDistSq)))
	half := mat.Vec3{d, d, d}
	return Bounds{
		Min: center.Sub(half),
		Max: center.Add(half),
	}
}
