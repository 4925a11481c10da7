package present

import (
	"math"

	"github.com/seqsense/pcgol/mat"
)

// camera is an orthographic projection looking at the origin from the
// given elevation above the XY plane and azimuth around Z, both in degrees.
type camera struct {
	right, up [3]float64
}

func newCamera(elevation, azimuth float64) camera {
	se, ce := math.Sincos(elevation * math.Pi / 180)
	sa, ca := math.Sincos(azimuth * math.Pi / 180)
	return camera{
		right: [3]float64{-sa, ca, 0},
		up:    [3]float64{-se * ca, -se * sa, ce},
	}
}

func (c camera) project(p mat.Vec3) (x, y float64) {
	for i := range p {
		x += c.right[i] * float64(p[i])
		y += c.up[i] * float64(p[i])
	}
	return x, y
}
