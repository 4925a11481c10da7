package present

import (
	"github.com/seqsense/pcgol/mat"
)

// Bounds is an axis-aligned box.
type Bounds struct {
	Min, Max mat.Vec3
}

func vec3Min(a, b mat.Vec3) mat.Vec3 {
	var out mat.Vec3
	for i := range out {
		out[i] = float32Min(a[i], b[i])
	}
	return out
}

func vec3Max(a, b mat.Vec3) mat.Vec3 {
	var out mat.Vec3
	for i := range out {
		out[i] = float32Max(a[i], b[i])
	}
	return out
}

func float32Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func float32Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func boundsUnion(a, b Bounds) Bounds {
	return Bounds{
		Min: vec3Min(a.Min, b.Min),
		Max: vec3Max(a.Max, b.Max),
	}
}

func (b Bounds) isValid() bool {
	return !(b.Min[0] > b.Max[0] ||
		b.Min[1] > b.Max[1] ||
		b.Min[2] > b.Max[2])
}

func (b Bounds) isInside(v mat.Vec3) bool {
	return !(v[0] < b.Min[0] ||
		v[1] < b.Min[1] ||
		v[2] < b.Min[2] ||
		b.Max[0] < v[0] ||
		b.Max[1] < v[1] ||
		b.Max[2] < v[2])
}

func (b Bounds) Center() mat.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// corners returns the eight vertices, bit i of the index selecting Max on
// axis i.
func (b Bounds) corners() [8]mat.Vec3 {
	var out [8]mat.Vec3
	for i := range out {
		for a := 0; a < 3; a++ {
			if i&(1<<a) != 0 {
				out[i][a] = b.Max[a]
			} else {
				out[i][a] = b.Min[a]
			}
		}
	}
	return out
}
