package dcraw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgs(t *testing.T) {
	t.Run("full scenario matches the tool contract", func(t *testing.T) {
		opts := Options{
			WhiteBalance:    WBCamera,
			Format:          Format8Bit,
			Quality:         QualityBilinear,
			HalfSize:        true,
			NoAutoBright:    true,
			KeepOrientation: true,
		}

		args := BuildArgs(opts, "/photos/photo.CR2")

		require.Equal(t, "/photos/photo.CR2", args[len(args)-1])
		assert.Equal(t,
			[]string{"-v", "-T", "-w", "-W", "-o", "0", "-q", "0", "-h", "-j"},
			args[:len(args)-1])
	})

	t.Run("empty tokens are omitted", func(t *testing.T) {
		opts := Options{
			WhiteBalance: WBNone,
			Format:       Format8Bit,
		}

		args := BuildArgs(opts, "in.NEF")

		assert.Equal(t, []string{"-v", "-T", "-o", "0", "-q", "0", "in.NEF"}, args)
	})

	t.Run("16-bit linear ACES with DHT", func(t *testing.T) {
		opts := Options{
			WhiteBalance: WBAverage,
			ColorSpace:   CSACES,
			Format:       Format16BitLinear,
			Quality:      QualityDHT,
		}

		args := BuildArgs(opts, "in.ARW")

		assert.Equal(t, []string{"-v", "-T", "-a", "-o", "6", "-4", "-q", "11", "in.ARW"}, args)
	})

	t.Run("is deterministic", func(t *testing.T) {
		opts := DefaultOptions()

		first := BuildArgs(opts, "photo.CR2")
		second := BuildArgs(opts, "photo.CR2")

		assert.Equal(t, first, second)
	})
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, WBCamera, opts.WhiteBalance)
	assert.Equal(t, CSRaw, opts.ColorSpace)
	assert.Equal(t, Format8Bit, opts.Format)
	assert.Equal(t, QualityBilinear, opts.Quality)
	assert.True(t, opts.NoAutoBright)
	assert.True(t, opts.KeepOrientation)
	assert.True(t, opts.UseTempDir)
	assert.False(t, opts.HalfSize)
}

func TestParseOptions(t *testing.T) {
	t.Run("accepts keys", func(t *testing.T) {
		wb, err := ParseWhiteBalance("camera")
		require.NoError(t, err)
		assert.Equal(t, WBCamera, wb)

		cs, err := ParseColorSpace("prophoto")
		require.NoError(t, err)
		assert.Equal(t, CSProPhoto, cs)

		f, err := ParseFormat("16-bit-linear")
		require.NoError(t, err)
		assert.Equal(t, Format16BitLinear, f)

		q, err := ParseQuality("aahd")
		require.NoError(t, err)
		assert.Equal(t, QualityAAHD, q)
	})

	t.Run("accepts display labels", func(t *testing.T) {
		wb, err := ParseWhiteBalance("Averaging the entire image")
		require.NoError(t, err)
		assert.Equal(t, WBAverage, wb)

		q, err := ParseQuality("Variable Number of Gradients (VNG)")
		require.NoError(t, err)
		assert.Equal(t, QualityVNG, q)
	})

	t.Run("fails loudly on unknown labels", func(t *testing.T) {
		_, err := ParseWhiteBalance("auto")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownOption)
		assert.Contains(t, err.Error(), "auto")

		_, err = ParseColorSpace("rec2020")
		assert.ErrorIs(t, err, ErrUnknownOption)

		_, err = ParseFormat("32-bit")
		assert.ErrorIs(t, err, ErrUnknownOption)

		_, err = ParseQuality("best")
		assert.ErrorIs(t, err, ErrUnknownOption)
	})
}

func TestQualityTokens(t *testing.T) {
	// The tool's algorithm codes are not contiguous.
	expected := map[Quality]string{
		QualityBilinear: "0",
		QualityVNG:      "1",
		QualityPPG:      "2",
		QualityAHD:      "3",
		QualityDCB:      "4",
		QualityDHT:      "11",
		QualityAAHD:     "12",
	}
	for q, token := range expected {
		assert.Equal(t, token, q.token(), "quality %s", q)
	}
}

func TestColorSpaceTokens(t *testing.T) {
	assert.Equal(t, "0", CSRaw.token())
	assert.Equal(t, "1", CSSRGB.token())
	assert.Equal(t, "6", CSACES.token())
}
