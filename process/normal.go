package process

import (
	"fmt"

	"github.com/seqsense/pcgol/mat"
	gmat "gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/seqsense/pcdviewer/cloud"
)

// Orientation selects how the sign of estimated normals is chosen when the
// cloud has no previous normals to agree with.
type Orientation int

const (
	// OrientNone keeps the sign given by the eigen solver.
	OrientNone Orientation = iota
	// OrientViewpoint flips normals to face the origin.
	OrientViewpoint
)

// ParseOrientation converts "none" or "viewpoint".
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "", "none":
		return OrientNone, nil
	case "viewpoint":
		return OrientViewpoint, nil
	}
	return OrientNone, fmt.Errorf("unknown normal orientation %q", s)
}

// NormalOptions controls EstimateNormals.
type NormalOptions struct {
	KNN    int
	Radius float32
	Orient Orientation
}

// minPlanePoints is the smallest neighbourhood a plane can be fitted to.
const minPlanePoints = 3

var defaultNormal = mat.Vec3{0, 0, 1}

// EstimateNormals overwrites c.Normals with unit normals of the plane
// fitted to the nearest neighbours of each point. Previous normals, if
// any, decide the sign of the new ones.
func EstimateNormals(c *cloud.PointCloud, opts NormalOptions) error {
	n := c.Len()
	if n == 0 {
		return cloud.ErrEmptyCloud
	}
	knn := opts.KNN
	if knn <= 0 {
		knn = DefaultKNN
	}
	if opts.Radius < 0 {
		return fmt.Errorf("normal search radius must be >=0, got %v", opts.Radius)
	}
	maxDistSq := float64(opts.Radius) * float64(opts.Radius)

	// kdtree.New reorders the slice, so the tree gets its own copy.
	pts := make(kdtree.Points, n)
	for i, p := range c.Points {
		pts[i] = toPoint(p)
	}
	tree := kdtree.New(pts, false)

	prev := c.Normals
	normals := make([]mat.Vec3, n)
	neighbors := make([]kdtree.Point, 0, knn)
	for i, p := range c.Points {
		keep := kdtree.NewNKeeper(knn)
		tree.NearestSet(keep, toPoint(p))

		neighbors = neighbors[:0]
		for _, cd := range keep.Heap {
			if cd.Comparable == nil {
				continue
			}
			if maxDistSq > 0 && cd.Dist > maxDistSq {
				continue
			}
			neighbors = append(neighbors, cd.Comparable.(kdtree.Point))
		}

		nv := fitPlaneNormal(neighbors)
		switch {
		case prev != nil:
			if nv.Dot(prev[i]) < 0 {
				nv = nv.Mul(-1)
			}
		case opts.Orient == OrientViewpoint:
			if nv.Dot(p) > 0 {
				nv = nv.Mul(-1)
			}
		}
		normals[i] = nv
	}
	c.Normals = normals
	return nil
}

func toPoint(v mat.Vec3) kdtree.Point {
	return kdtree.Point{float64(v[0]), float64(v[1]), float64(v[2])}
}

// fitPlaneNormal returns the eigenvector of the smallest eigenvalue of the
// neighbourhood covariance.
func fitPlaneNormal(neighbors []kdtree.Point) mat.Vec3 {
	if len(neighbors) < minPlanePoints {
		return defaultNormal
	}

	var mean [3]float64
	for _, q := range neighbors {
		for k := range mean {
			mean[k] += q[k]
		}
	}
	for k := range mean {
		mean[k] /= float64(len(neighbors))
	}

	cov := gmat.NewSymDense(3, nil)
	for _, q := range neighbors {
		d := [3]float64{q[0] - mean[0], q[1] - mean[1], q[2] - mean[2]}
		for r := 0; r < 3; r++ {
			for s := r; s < 3; s++ {
				cov.SetSym(r, s, cov.At(r, s)+d[r]*d[s])
			}
		}
	}

	var eig gmat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return defaultNormal
	}
	var vecs gmat.Dense
	eig.VectorsTo(&vecs)

	// Eigenvalues are in ascending order.
	nv := mat.Vec3{
		float32(vecs.At(0, 0)),
		float32(vecs.At(1, 0)),
		float32(vecs.At(2, 0)),
	}
	norm := nv.Norm()
	if norm == 0 {
		return defaultNormal
	}
	return nv.Mul(1 / norm)
}
