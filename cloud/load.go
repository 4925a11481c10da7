package cloud

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

type reader func(r io.Reader) (*PointCloud, error)

// recoverMalformed converts a panic raised while decoding a broken file
// into ErrMalformed.
func recoverMalformed(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrMalformed, r)
	}
}

// readers maps the file extension, case sensitive, to its decoder.
var readers = map[string]reader{
	".ply": readPLY,
	".pcd": readPCD,
}

// Load reads a point cloud from a .ply or .pcd file.
func Load(path string) (*PointCloud, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %s not found: %w", path, ErrNotFound)
		}
		return nil, err
	}

	ext := filepath.Ext(path)
	read, ok := readers[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if c.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyCloud)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
