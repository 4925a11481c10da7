package cloud

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
)

var errMissingXYZ = errors.New("x, y and z fields are required")

func readPCD(r io.Reader) (c *PointCloud, err error) {
	defer recoverMalformed(&err)

	pp, err := pc.Unmarshal(r)
	if err != nil {
		return nil, err
	}
	return FromPC(pp)
}

// Save writes the cloud as a binary PCD file.
func Save(path string, c *PointCloud) error {
	if err := c.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pc.Marshal(c.PC(), f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type pcdField struct {
	offset int
	size   int
	typ    string
}

func findField(h *pc.PointCloudHeader, name string) (pcdField, bool) {
	var offset int
	for i, fn := range h.Fields {
		if fn == name {
			return pcdField{offset: offset, size: h.Size[i], typ: h.Type[i]}, true
		}
		offset += h.Size[i] * h.Count[i]
	}
	return pcdField{}, false
}

func (f pcdField) scalar(point []byte) (float64, error) {
	b := point[f.offset : f.offset+f.size]
	switch {
	case f.typ == "F" && f.size == 4:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	case f.typ == "F" && f.size == 8:
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
	case f.typ == "U" && f.size == 1:
		return float64(b[0]), nil
	case f.typ == "U" && f.size == 2:
		return float64(binary.LittleEndian.Uint16(b)), nil
	case f.typ == "U" && f.size == 4:
		return float64(binary.LittleEndian.Uint32(b)), nil
	case f.typ == "I" && f.size == 1:
		return float64(int8(b[0])), nil
	case f.typ == "I" && f.size == 2:
		return float64(int16(binary.LittleEndian.Uint16(b))), nil
	case f.typ == "I" && f.size == 4:
		return float64(int32(binary.LittleEndian.Uint32(b))), nil
	}
	return 0, fmt.Errorf("unsupported field type %s%d", f.typ, f.size)
}

func (f pcdField) vec3(point []byte, fy, fz pcdField) (mat.Vec3, error) {
	var v mat.Vec3
	for i, ff := range []pcdField{f, fy, fz} {
		s, err := ff.scalar(point)
		if err != nil {
			return mat.Vec3{}, err
		}
		v[i] = float32(s)
	}
	return v, nil
}

// FromPC converts a pcgol point cloud. Coordinates are read from x, y, z,
// normals from normal_x, normal_y, normal_z and colors from a packed rgb or
// rgba field.
func FromPC(pp *pc.PointCloud) (*PointCloud, error) {
	h := &pp.PointCloudHeader
	if len(h.Fields) != len(h.Size) || len(h.Fields) != len(h.Type) || len(h.Fields) != len(h.Count) {
		return nil, errors.New("inconsistent PCD header")
	}
	stride := pp.Stride()
	if pp.Points < 0 || stride < 0 || (stride > 0 && pp.Points > len(pp.Data)/stride) {
		return nil, fmt.Errorf("PCD data is %d bytes, header needs %d", len(pp.Data), pp.Points*stride)
	}

	fx, okX := findField(h, "x")
	fy, okY := findField(h, "y")
	fz, okZ := findField(h, "z")
	if !okX || !okY || !okZ {
		return nil, errMissingXYZ
	}
	nx, okNX := findField(h, "normal_x")
	ny, okNY := findField(h, "normal_y")
	nz, okNZ := findField(h, "normal_z")
	hasNormals := okNX && okNY && okNZ

	fc, hasColors := findField(h, "rgba")
	hasAlpha := hasColors
	if !hasColors {
		fc, hasColors = findField(h, "rgb")
	}
	if hasColors && fc.size != 4 {
		return nil, fmt.Errorf("packed color field must be 4 bytes, got %d", fc.size)
	}

	c := &PointCloud{
		Points: make([]mat.Vec3, pp.Points),
	}
	if hasNormals {
		c.Normals = make([]mat.Vec3, pp.Points)
	}
	if hasColors {
		c.Colors = make([]color.NRGBA, pp.Points)
	}

	for i := 0; i < pp.Points; i++ {
		point := pp.Data[i*stride : (i+1)*stride]
		p, err := fx.vec3(point, fy, fz)
		if err != nil {
			return nil, err
		}
		c.Points[i] = p
		if hasNormals {
			n, err := nx.vec3(point, ny, nz)
			if err != nil {
				return nil, err
			}
			c.Normals[i] = n
		}
		if hasColors {
			c.Colors[i] = unpackColor(binary.LittleEndian.Uint32(point[fc.offset:]), hasAlpha)
		}
	}
	return c, nil
}

// PC converts the cloud to a pcgol point cloud with float32 x, y, z fields,
// followed by normal_x, normal_y, normal_z and a packed rgba field when
// present.
func (c *PointCloud) PC() *pc.PointCloud {
	h := pc.PointCloudHeader{
		Version:   0.7,
		Fields:    []string{"x", "y", "z"},
		Size:      []int{4, 4, 4},
		Type:      []string{"F", "F", "F"},
		Count:     []int{1, 1, 1},
		Width:     c.Len(),
		Height:    1,
		Viewpoint: []float32{0, 0, 0, 1, 0, 0, 0},
	}
	if c.HasNormals() {
		h.Fields = append(h.Fields, "normal_x", "normal_y", "normal_z")
		h.Size = append(h.Size, 4, 4, 4)
		h.Type = append(h.Type, "F", "F", "F")
		h.Count = append(h.Count, 1, 1, 1)
	}
	if c.HasColors() {
		h.Fields = append(h.Fields, "rgba")
		h.Size = append(h.Size, 4)
		h.Type = append(h.Type, "U")
		h.Count = append(h.Count, 1)
	}

	pp := &pc.PointCloud{
		PointCloudHeader: h,
		Points:           c.Len(),
	}
	stride := pp.Stride()
	pp.Data = make([]byte, c.Len()*stride)

	putVec3 := func(b []byte, v mat.Vec3) {
		for j := range v {
			binary.LittleEndian.PutUint32(b[4*j:], math.Float32bits(v[j]))
		}
	}
	for i, p := range c.Points {
		point := pp.Data[i*stride : (i+1)*stride]
		putVec3(point, p)
		off := 12
		if c.HasNormals() {
			putVec3(point[off:], c.Normals[i])
			off += 12
		}
		if c.HasColors() {
			binary.LittleEndian.PutUint32(point[off:], packColor(c.Colors[i]))
		}
	}
	return pp
}

func unpackColor(v uint32, alpha bool) color.NRGBA {
	col := color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xFF,
	}
	if alpha {
		col.A = uint8(v >> 24)
	}
	return col
}

func packColor(c color.NRGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}
