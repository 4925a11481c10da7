package cloud

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/seqsense/pcgol/mat"
)

type plyFormat int

// maxPLYPrealloc caps the vertex slices allocated up front.
const maxPLYPrealloc = 1 << 20

const (
	plyASCII plyFormat = iota
	plyBinaryLittleEndian
	plyBinaryBigEndian
)

var plyFormats = map[string]plyFormat{
	"ascii":                plyASCII,
	"binary_little_endian": plyBinaryLittleEndian,
	"binary_big_endian":    plyBinaryBigEndian,
}

// plyTypeSize is the byte size of each scalar type, including the sized
// aliases written by some exporters.
var plyTypeSize = map[string]int{
	"char": 1, "int8": 1,
	"uchar": 1, "uint8": 1,
	"short": 2, "int16": 2,
	"ushort": 2, "uint16": 2,
	"int": 4, "int32": 4,
	"uint": 4, "uint32": 4,
	"float": 4, "float32": 4,
	"double": 8, "float64": 8,
}

type plyProperty struct {
	name      string
	typ       string
	isList    bool
	countType string
}

type plyElement struct {
	name  string
	count int
	props []plyProperty
}

type plyHeader struct {
	format   plyFormat
	elements []plyElement
}

func parsePLYHeader(r *bufio.Reader) (*plyHeader, error) {
	magic, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(magic) != "ply" {
		return nil, errors.New("missing ply magic")
	}

	h := &plyHeader{}
	var hasFormat bool
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil, errors.New("unexpected end of header")
			}
			return nil, err
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "end_header":
			if !hasFormat {
				return nil, errors.New("missing format line")
			}
			return h, nil
		case "comment", "obj_info":
		case "format":
			if len(args) < 3 {
				return nil, errors.New("format line must have type and version")
			}
			f, ok := plyFormats[args[1]]
			if !ok {
				return nil, fmt.Errorf("unknown PLY format %q", args[1])
			}
			h.format = f
			hasFormat = true
		case "element":
			if len(args) < 3 {
				return nil, errors.New("element line must have name and count")
			}
			n, err := strconv.Atoi(args[2])
			if err != nil {
				return nil, fmt.Errorf("invalid element count: %w", err)
			}
			if n < 0 {
				return nil, fmt.Errorf("negative element count %d", n)
			}
			h.elements = append(h.elements, plyElement{name: args[1], count: n})
		case "property":
			if len(h.elements) == 0 {
				return nil, errors.New("property before element")
			}
			prop, err := parsePLYProperty(args[1:])
			if err != nil {
				return nil, err
			}
			e := &h.elements[len(h.elements)-1]
			e.props = append(e.props, prop)
		default:
			return nil, fmt.Errorf("unknown header keyword %q", args[0])
		}
	}
}

func parsePLYProperty(args []string) (plyProperty, error) {
	if len(args) >= 1 && args[0] == "list" {
		if len(args) < 4 {
			return plyProperty{}, errors.New("list property must have count type, item type and name")
		}
		if _, ok := plyTypeSize[args[1]]; !ok {
			return plyProperty{}, fmt.Errorf("unknown property type %q", args[1])
		}
		if _, ok := plyTypeSize[args[2]]; !ok {
			return plyProperty{}, fmt.Errorf("unknown property type %q", args[2])
		}
		return plyProperty{name: args[3], typ: args[2], isList: true, countType: args[1]}, nil
	}
	if len(args) < 2 {
		return plyProperty{}, errors.New("property must have type and name")
	}
	if _, ok := plyTypeSize[args[0]]; !ok {
		return plyProperty{}, fmt.Errorf("unknown property type %q", args[0])
	}
	return plyProperty{name: args[1], typ: args[0]}, nil
}

// plyScalarReader yields one scalar value of the given PLY type per call.
type plyScalarReader interface {
	next(typ string) (float64, error)
}

type plyASCIIReader struct {
	s *bufio.Scanner
}

func (a *plyASCIIReader) next(typ string) (float64, error) {
	if !a.s.Scan() {
		if err := a.s.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(a.s.Text(), 64)
}

type plyBinaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *plyBinaryReader) next(typ string) (float64, error) {
	buf := b.buf[:plyTypeSize[typ]]
	if _, err := io.ReadFull(b.r, buf); err != nil {
		if err == io.EOF {
			return 0, io.ErrUnexpectedEOF
		}
		return 0, err
	}
	switch typ {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	case "double", "float64":
		return math.Float64frombits(b.order.Uint64(buf)), nil
	}
	return 0, fmt.Errorf("unknown property type %q", typ)
}

func isFloatType(typ string) bool {
	switch typ {
	case "float", "float32", "double", "float64":
		return true
	}
	return false
}

// vertexLayout is the position of the well-known vertex properties in the
// property list, -1 when absent.
type vertexLayout struct {
	x, y, z    int
	nx, ny, nz int
	r, g, b, a int
}

func newVertexLayout(props []plyProperty) vertexLayout {
	l := vertexLayout{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1}
	for i, p := range props {
		if p.isList {
			continue
		}
		switch p.name {
		case "x":
			l.x = i
		case "y":
			l.y = i
		case "z":
			l.z = i
		case "nx":
			l.nx = i
		case "ny":
			l.ny = i
		case "nz":
			l.nz = i
		case "red", "diffuse_red":
			l.r = i
		case "green", "diffuse_green":
			l.g = i
		case "blue", "diffuse_blue":
			l.b = i
		case "alpha":
			l.a = i
		}
	}
	return l
}

func (l vertexLayout) hasNormals() bool {
	return l.nx >= 0 && l.ny >= 0 && l.nz >= 0
}

func (l vertexLayout) hasColors() bool {
	return l.r >= 0 && l.g >= 0 && l.b >= 0
}

func readPLY(r io.Reader) (c *PointCloud, err error) {
	defer recoverMalformed(&err)

	br := bufio.NewReader(r)
	h, err := parsePLYHeader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var sr plyScalarReader
	switch h.format {
	case plyASCII:
		s := bufio.NewScanner(br)
		s.Split(bufio.ScanWords)
		sr = &plyASCIIReader{s: s}
	case plyBinaryLittleEndian:
		sr = &plyBinaryReader{r: br, order: binary.LittleEndian}
	case plyBinaryBigEndian:
		sr = &plyBinaryReader{r: br, order: binary.BigEndian}
	}

	for _, e := range h.elements {
		if e.name != "vertex" {
			if err := skipPLYElement(sr, e); err != nil {
				return nil, fmt.Errorf("failed to skip element %s: %w", e.name, err)
			}
			continue
		}
		c, err = readPLYVertices(sr, e)
		if err != nil {
			return nil, err
		}
		// Elements after the vertices are not needed.
		break
	}
	if c == nil {
		return nil, errors.New("no vertex element")
	}
	return c, nil
}

func readPLYVertices(sr plyScalarReader, e plyElement) (*PointCloud, error) {
	l := newVertexLayout(e.props)
	if l.x < 0 || l.y < 0 || l.z < 0 {
		return nil, errMissingXYZ
	}

	// The count comes from the header; grow as vertices are actually read.
	n := min(e.count, maxPLYPrealloc)
	c := &PointCloud{
		Points: make([]mat.Vec3, 0, n),
	}
	if l.hasNormals() {
		c.Normals = make([]mat.Vec3, 0, n)
	}
	if l.hasColors() {
		c.Colors = make([]color.NRGBA, 0, n)
	}

	vals := make([]float64, len(e.props))
	for i := 0; i < e.count; i++ {
		for j, p := range e.props {
			if p.isList {
				if err := skipPLYList(sr, p); err != nil {
					return nil, fmt.Errorf("vertex %d: %w", i, err)
				}
				continue
			}
			v, err := sr.next(p.typ)
			if err != nil {
				return nil, fmt.Errorf("vertex %d, property %s: %w", i, p.name, err)
			}
			vals[j] = v
		}

		c.Points = append(c.Points, mat.Vec3{float32(vals[l.x]), float32(vals[l.y]), float32(vals[l.z])})
		if c.Normals != nil {
			c.Normals = append(c.Normals, mat.Vec3{float32(vals[l.nx]), float32(vals[l.ny]), float32(vals[l.nz])})
		}
		if c.Colors != nil {
			col := color.NRGBA{
				R: colorChannel(vals[l.r], e.props[l.r].typ),
				G: colorChannel(vals[l.g], e.props[l.g].typ),
				B: colorChannel(vals[l.b], e.props[l.b].typ),
				A: 0xFF,
			}
			if l.a >= 0 {
				col.A = colorChannel(vals[l.a], e.props[l.a].typ)
			}
			c.Colors = append(c.Colors, col)
		}
	}
	return c, nil
}

// colorChannel maps float channels from [0,1] and integer channels from
// [0,255] to a byte.
func colorChannel(v float64, typ string) uint8 {
	if isFloatType(typ) {
		v *= 255
	}
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}

func skipPLYElement(sr plyScalarReader, e plyElement) error {
	for i := 0; i < e.count; i++ {
		for _, p := range e.props {
			if p.isList {
				if err := skipPLYList(sr, p); err != nil {
					return err
				}
				continue
			}
			if _, err := sr.next(p.typ); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipPLYList(sr plyScalarReader, p plyProperty) error {
	n, err := sr.next(p.countType)
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("negative list length %v", n)
	}
	for k := 0; k < int(n); k++ {
		if _, err := sr.next(p.typ); err != nil {
			return err
		}
	}
	return nil
}
