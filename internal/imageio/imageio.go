// Package imageio loads the intermediate image files produced by the
// LibRaw tools back into memory. The conversion tool normally writes
// TIFF; without the write-TIFF flag it may emit PPM instead, so both are
// supported.
package imageio

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/ppm"
	"golang.org/x/image/tiff"
)

// Loader decodes converted images from disk.
type Loader struct{}

// Load decodes the image at path. The format is chosen by extension,
// falling back to content sniffing for anything unrecognized.
func (Loader) Load(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is the tool's own output artifact
	if err != nil {
		return nil, fmt.Errorf("open converted image: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		img, err := tiff.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode TIFF %q: %w", path, err)
		}
		return img, nil
	case ".ppm":
		img, err := ppm.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode PPM %q: %w", path, err)
		}
		return img, nil
	default:
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode %q: %w", path, err)
		}
		return img, nil
	}
}
