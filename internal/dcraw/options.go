package dcraw

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOption is returned when a label does not name any value of a
// closed option set. This always indicates a configuration or UI mismatch,
// never a user input to be defaulted silently.
var ErrUnknownOption = errors.New("unknown option")

// WhiteBalance selects how the tool balances color channels.
type WhiteBalance int

const (
	WBNone WhiteBalance = iota
	WBCamera
	WBAverage
)

var whiteBalances = []WhiteBalance{WBNone, WBCamera, WBAverage}

func (w WhiteBalance) String() string {
	switch w {
	case WBCamera:
		return "Camera white balance"
	case WBAverage:
		return "Averaging the entire image"
	default:
		return "None"
	}
}

// Key returns the short machine-readable name used in config and flags.
func (w WhiteBalance) Key() string {
	switch w {
	case WBCamera:
		return "camera"
	case WBAverage:
		return "average"
	default:
		return "none"
	}
}

// token returns the command-line flag, empty when the tool's default applies.
func (w WhiteBalance) token() string {
	switch w {
	case WBCamera:
		return "-w"
	case WBAverage:
		return "-a"
	default:
		return ""
	}
}

// ParseWhiteBalance resolves a key or display label, failing loudly on
// anything unrecognized.
func ParseWhiteBalance(label string) (WhiteBalance, error) {
	for _, w := range whiteBalances {
		if matchLabel(label, w.Key(), w.String()) {
			return w, nil
		}
	}
	return WBNone, fmt.Errorf("%w: white balance %q", ErrUnknownOption, label)
}

// ColorSpace selects the output colorspace (-o argument).
type ColorSpace int

const (
	CSRaw ColorSpace = iota
	CSSRGB
	CSAdobe
	CSWide
	CSProPhoto
	CSXYZ
	CSACES
)

var colorSpaces = []ColorSpace{CSRaw, CSSRGB, CSAdobe, CSWide, CSProPhoto, CSXYZ, CSACES}

func (c ColorSpace) String() string {
	switch c {
	case CSSRGB:
		return "sRGB"
	case CSAdobe:
		return "Adobe"
	case CSWide:
		return "Wide"
	case CSProPhoto:
		return "ProPhoto"
	case CSXYZ:
		return "XYZ"
	case CSACES:
		return "ACES"
	default:
		return "raw"
	}
}

func (c ColorSpace) Key() string {
	return strings.ToLower(c.String())
}

func (c ColorSpace) token() string {
	return fmt.Sprintf("%d", int(c))
}

func ParseColorSpace(label string) (ColorSpace, error) {
	for _, c := range colorSpaces {
		if matchLabel(label, c.Key(), c.String()) {
			return c, nil
		}
	}
	return CSRaw, fmt.Errorf("%w: colorspace %q", ErrUnknownOption, label)
}

// Format selects the bit depth of the written image.
type Format int

const (
	Format8Bit Format = iota
	Format16Bit
	Format16BitLinear
)

var formats = []Format{Format8Bit, Format16Bit, Format16BitLinear}

func (f Format) String() string {
	switch f {
	case Format16Bit:
		return "16-bit"
	case Format16BitLinear:
		return "16-bit linear"
	default:
		return "8-bit"
	}
}

func (f Format) Key() string {
	switch f {
	case Format16Bit:
		return "16-bit"
	case Format16BitLinear:
		return "16-bit-linear"
	default:
		return "8-bit"
	}
}

func (f Format) token() string {
	switch f {
	case Format16Bit:
		return "-6"
	case Format16BitLinear:
		return "-4"
	default:
		return ""
	}
}

func ParseFormat(label string) (Format, error) {
	for _, f := range formats {
		if matchLabel(label, f.Key(), f.String()) {
			return f, nil
		}
	}
	return Format8Bit, fmt.Errorf("%w: format %q", ErrUnknownOption, label)
}

// Quality selects the demosaicing algorithm (-q argument).
type Quality int

const (
	QualityBilinear Quality = iota
	QualityVNG
	QualityPPG
	QualityAHD
	QualityDCB
	QualityDHT
	QualityAAHD
)

var qualities = []Quality{
	QualityBilinear, QualityVNG, QualityPPG, QualityAHD,
	QualityDCB, QualityDHT, QualityAAHD,
}

func (q Quality) String() string {
	switch q {
	case QualityVNG:
		return "Variable Number of Gradients (VNG)"
	case QualityPPG:
		return "Patterned Pixel Grouping (PPG)"
	case QualityAHD:
		return "Adaptive Homogeneity-Directed (AHD)"
	case QualityDCB:
		return "DCB"
	case QualityDHT:
		return "DHT"
	case QualityAAHD:
		return "Modified AHD (AAHD)"
	default:
		return "High-speed, low-quality bilinear"
	}
}

func (q Quality) Key() string {
	switch q {
	case QualityVNG:
		return "vng"
	case QualityPPG:
		return "ppg"
	case QualityAHD:
		return "ahd"
	case QualityDCB:
		return "dcb"
	case QualityDHT:
		return "dht"
	case QualityAAHD:
		return "aahd"
	default:
		return "bilinear"
	}
}

// token returns the numeric algorithm code dcraw_emu expects.
// The codes are not contiguous past AHD.
func (q Quality) token() string {
	switch q {
	case QualityDHT:
		return "11"
	case QualityAAHD:
		return "12"
	default:
		return fmt.Sprintf("%d", int(q))
	}
}

func ParseQuality(label string) (Quality, error) {
	for _, q := range qualities {
		if matchLabel(label, q.Key(), q.String()) {
			return q, nil
		}
	}
	return QualityBilinear, fmt.Errorf("%w: interpolation quality %q", ErrUnknownOption, label)
}

func matchLabel(label, key, display string) bool {
	return strings.EqualFold(label, key) || label == display
}

// Options holds the user-selected conversion settings. Each field maps
// deterministically to zero or more dcraw_emu command tokens.
type Options struct {
	WhiteBalance WhiteBalance
	ColorSpace   ColorSpace
	Format       Format
	Quality      Quality

	// NoAutoBright suppresses automatic brightening (-W).
	NoAutoBright bool

	// HalfSize extracts the image at half resolution (-h).
	HalfSize bool

	// KeepOrientation suppresses rotation and aspect-ratio stretching (-j).
	KeepOrientation bool

	// UseTempDir stages the input as a temporary copy before conversion,
	// so the tool's output lands next to the copy instead of the original.
	UseTempDir bool
}

// DefaultOptions returns the conversion settings used when the caller has
// no persisted preferences.
func DefaultOptions() Options {
	return Options{
		WhiteBalance:    WBCamera,
		ColorSpace:      CSRaw,
		Format:          Format8Bit,
		Quality:         QualityBilinear,
		NoAutoBright:    true,
		KeepOrientation: true,
		UseTempDir:      true,
	}
}

// BuildArgs translates opts into the exact ordered argument vector
// dcraw_emu expects, ending with the input path. The order is fixed for
// bit-for-bit compatibility with the tool's documented invocation:
// verbose, write-TIFF, white balance, no-auto-bright, colorspace, bit
// depth, interpolation quality, half size, keep orientation, input.
func BuildArgs(opts Options, inputPath string) []string {
	args := []string{"-v", "-T"}

	if t := opts.WhiteBalance.token(); t != "" {
		args = append(args, t)
	}
	if opts.NoAutoBright {
		args = append(args, "-W")
	}
	args = append(args, "-o", opts.ColorSpace.token())
	if t := opts.Format.token(); t != "" {
		args = append(args, t)
	}
	args = append(args, "-q", opts.Quality.token())
	if opts.HalfSize {
		args = append(args, "-h")
	}
	if opts.KeepOrientation {
		args = append(args, "-j")
	}

	return append(args, inputPath)
}
