// Package process downsamples point clouds and estimates surface normals.
package process

import (
	"errors"
	"fmt"
	"math"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc/filter/voxelgrid"

	"github.com/seqsense/pcdviewer/cloud"
)

// DefaultKNN is the number of neighbours used to fit the local plane.
const DefaultKNN = 30

const (
	voxelChunk = 64
	// maxVoxelChunks bounds the chunk table spanned by the cloud extent.
	maxVoxelChunks = 1 << 22
)

// ErrInvalidVoxelSize is returned for a non-positive voxel size.
var ErrInvalidVoxelSize = errors.New("voxel size must be >0")

// Options controls Process.
type Options struct {
	// VoxelSize enables voxel downsampling when non-nil.
	VoxelSize *float32
	// KNN is the neighbourhood size for normal estimation, DefaultKNN if zero.
	KNN int
	// Radius limits the neighbourhood when positive.
	Radius float32
	Orient Orientation
}

// Process returns a new cloud, downsampled when opts.VoxelSize is set and
// with normals always recomputed. The input cloud is not modified.
func Process(c *cloud.PointCloud, opts Options) (*cloud.PointCloud, error) {
	if c.Len() == 0 {
		return nil, cloud.ErrEmptyCloud
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var out *cloud.PointCloud
	if opts.VoxelSize != nil {
		var err error
		out, err = Downsample(c, *opts.VoxelSize)
		if err != nil {
			return nil, err
		}
	} else {
		out = c.Clone()
	}

	if err := EstimateNormals(out, NormalOptions{
		KNN:    opts.KNN,
		Radius: opts.Radius,
		Orient: opts.Orient,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// Downsample keeps one point per occupied cell of a uniform grid with the
// given cell size. The point is placed at the centroid of the cell and
// carries the other attributes of the first point found in the cell.
func Downsample(c *cloud.PointCloud, voxelSize float32) (*cloud.PointCloud, error) {
	if !(voxelSize > 0) {
		return nil, fmt.Errorf("%w, got %v", ErrInvalidVoxelSize, voxelSize)
	}
	if c.Len() == 0 {
		return nil, cloud.ErrEmptyCloud
	}

	if n := voxelChunks(c.Points, voxelSize); !(n <= maxVoxelChunks) {
		return nil, fmt.Errorf("%w: %v is too small for the cloud extent (%.3g grid chunks, limit %d)",
			ErrInvalidVoxelSize, voxelSize, n, maxVoxelChunks)
	}

	vg := voxelgrid.New(
		mat.Vec3{voxelSize, voxelSize, voxelSize},
		voxelgrid.WithChunkSize([3]int{voxelChunk, voxelChunk, voxelChunk}),
	)
	pcFiltered, err := vg.Filter(c.PC())
	if err != nil {
		return nil, fmt.Errorf("voxel filter: %w", err)
	}
	return cloud.FromPC(pcFiltered)
}

// voxelChunks returns the number of grid chunks covering the points.
// NaN or infinite coordinates give NaN or +Inf.
func voxelChunks(points []mat.Vec3, voxelSize float32) float64 {
	lo := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range points {
		for i := range lo {
			v := float64(p[i])
			if math.IsNaN(v) {
				return math.NaN()
			}
			lo[i] = math.Min(lo[i], v)
			hi[i] = math.Max(hi[i], v)
		}
	}
	n := 1.0
	for i := range lo {
		cells := math.Floor((hi[i]-lo[i])/float64(voxelSize)) + 1
		n *= math.Ceil(cells / voxelChunk)
	}
	return n
}
