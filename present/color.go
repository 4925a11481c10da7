package present

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ErrUnknownColor is returned for a color that is neither a known name nor
// a #rrggbb value.
var ErrUnknownColor = errors.New("unknown color")

// shortColors are the single letter names accepted by matplotlib.
var shortColors = map[string]string{
	"b": "blue",
	"g": "green",
	"r": "red",
	"c": "cyan",
	"m": "magenta",
	"y": "yellow",
	"k": "black",
	"w": "white",
}

// ParseColor resolves a CSS color name or a #rrggbb value.
func ParseColor(s string) (color.NRGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(name, "#") {
		hex := name[1:]
		if len(hex) != 6 {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
		}
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
	}
	if long, ok := shortColors[name]; ok {
		name = long
	}
	c, ok := colornames.Map[name]
	if !ok {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}, nil
}

// seriesColors returns one color per cloud with the configured alpha.
func seriesColors(names []string, n int, alpha float64) ([]color.NRGBA, error) {
	if len(names) == 0 {
		names = []string{defaultColor}
	}
	out := make([]color.NRGBA, n)
	for i := range out {
		c, err := ParseColor(names[i%len(names)])
		if err != nil {
			return nil, err
		}
		c.A = uint8(alpha*255 + 0.5)
		out[i] = c
	}
	return out, nil
}

func cssColor(c color.NRGBA) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", c.R, c.G, c.B, float64(c.A)/255)
}
