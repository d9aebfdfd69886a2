package imageio

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/lmittmann/ppm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.Set(x, y, color.RGBA{R: uint8(40 * x), G: uint8(90 * y), B: 128, A: 255})
		}
	}
	return img
}

func TestLoader_Load(t *testing.T) {
	loader := Loader{}

	t.Run("loads TIFF", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "photo.CR2.tiff")
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, tiff.Encode(f, testImage(), nil))
		require.NoError(t, f.Close())

		img, err := loader.Load(path)

		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	})

	t.Run("loads PPM", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "photo.ppm")
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, ppm.Encode(f, testImage()))
		require.NoError(t, f.Close())

		img, err := loader.Load(path)

		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	})

	t.Run("sniffs unknown extensions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "photo.out")
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, tiff.Encode(f, testImage(), nil))
		require.NoError(t, f.Close())

		img, err := loader.Load(path)

		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	})

	t.Run("rejects garbage", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.tiff")
		require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

		_, err := loader.Load(path)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load(filepath.Join(t.TempDir(), "absent.tiff"))
		require.Error(t, err)
	})
}
