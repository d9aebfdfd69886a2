package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pixelfold/rawbridge/internal/dcraw"
	"github.com/pixelfold/rawbridge/internal/exec"
	"github.com/pixelfold/rawbridge/internal/imageio"
	"github.com/pixelfold/rawbridge/internal/logging"
	"github.com/pixelfold/rawbridge/internal/prompt"
	"github.com/pixelfold/rawbridge/internal/slogger"
	"github.com/pixelfold/rawbridge/internal/spinner"
)

var openCmd = &cobra.Command{
	Use:   "open <raw-file>",
	Short: "Convert a camera raw file to a viewable image",
	Long: `Convert a camera raw file to a TIFF image by running dcraw_emu.

Conversion settings default to the last-used values from the configuration
file. Individual settings can be overridden with flags, or edited in an
interactive form with --interactive. Settings used for a successful
conversion become the new last-used values.`,
	Example: `  # Convert with last-used settings
  rawbridge open photo.CR2

  # Keep the converted TIFF next to the original
  rawbridge open photo.CR2 --out photo.tiff

  # Override individual settings
  rawbridge open photo.CR2 --white-balance camera --quality ahd

  # Edit all settings interactively
  rawbridge open photo.CR2 -i`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rawPath := args[0]

	if info, err := os.Stat(rawPath); err != nil || info.IsDir() {
		return fmt.Errorf("raw file does not exist: %q", rawPath)
	}

	opts, err := convertOptions()
	if err != nil {
		return err
	}
	optionsChanged, err := applyConvertFlags(cmd, &opts)
	if err != nil {
		return err
	}

	toolPath, _ := cmd.Flags().GetString("tool-path")
	pluginDirFlag, _ := cmd.Flags().GetString("plugin-dir")
	outPath, _ := cmd.Flags().GetString("out")
	logFile, _ := cmd.Flags().GetString("log-file")
	interactive, _ := cmd.Flags().GetBool("interactive")
	metadata, _ := cmd.Flags().GetBool("metadata")

	onLine, tee, err := toolOutputSink(logFile)
	if err != nil {
		return err
	}
	if tee != nil {
		defer tee.Close() //nolint:errcheck // nothing left to do with a close failure
	}

	// On a quiet terminal, show a spinner with the latest tool output
	// line instead of silence.
	var spin *spinner.Spinner
	if onLine == nil && term.IsTerminal(int(os.Stderr.Fd())) {
		spin = spinner.New(os.Stderr)
		onLine = spin.Line
	}

	runner := exec.New()
	locator := dcraw.NewLocator(dcraw.Convert, dcraw.LocatorOptions{
		Override:  toolPath,
		Prefs:     prefs(),
		PluginDir: pluginDir(pluginDirFlag),
		Runner:    runner,
	})
	reader := dcraw.NewReader(dcraw.ReaderOptions{
		Locator: locator,
		Runner:  runner,
		Loader:  imageio.Loader{},
		Logger:  slogger.L(ctx),
		OnLine:  onLine,
	})

	if interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("--interactive requires a terminal")
		}
		// Fail on a missing tool before asking the user for settings.
		if err := reader.Validate(ctx); err != nil {
			return err
		}
		if err := prompt.EditOptions(&opts); err != nil {
			if errors.Is(err, prompt.ErrCanceled) {
				fmt.Println("Canceled.")
				return nil
			}
			return err
		}
		optionsChanged = true
	}

	if spin != nil {
		go func() {
			//nolint:errcheck // a failed redraw must not abort the conversion
			spin.Start()
		}()
	}
	img, err := reader.Read(ctx, dcraw.ReadRequest{
		Path:    rawPath,
		Options: opts,
		SaveAs:  outPath,
	})
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	fmt.Printf("Converted %s (%dx%d)\n", rawPath, bounds.Dx(), bounds.Dy())
	if outPath != "" {
		fmt.Printf("Saved to %s\n", outPath)
	}
	if tee != nil {
		fmt.Printf("Tool output written to %s\n", tee.LogPath())
	}

	if optionsChanged && configLoader != nil {
		if err := configLoader.SaveConvert(opts); err != nil {
			slogger.L(ctx).Warn("failed to persist conversion settings", "error", err)
		}
	}

	if metadata {
		return printMetadata(cmd, rawPath, pluginDirFlag, onLine)
	}
	return nil
}

// applyConvertFlags overlays any explicitly set conversion flags on opts,
// reporting whether anything changed.
func applyConvertFlags(cmd *cobra.Command, opts *dcraw.Options) (bool, error) {
	changed := false
	flags := cmd.Flags()

	if flags.Changed("white-balance") {
		value, _ := flags.GetString("white-balance")
		wb, err := dcraw.ParseWhiteBalance(value)
		if err != nil {
			return false, err
		}
		opts.WhiteBalance = wb
		changed = true
	}
	if flags.Changed("color-space") {
		value, _ := flags.GetString("color-space")
		cs, err := dcraw.ParseColorSpace(value)
		if err != nil {
			return false, err
		}
		opts.ColorSpace = cs
		changed = true
	}
	if flags.Changed("format") {
		value, _ := flags.GetString("format")
		format, err := dcraw.ParseFormat(value)
		if err != nil {
			return false, err
		}
		opts.Format = format
		changed = true
	}
	if flags.Changed("quality") {
		value, _ := flags.GetString("quality")
		quality, err := dcraw.ParseQuality(value)
		if err != nil {
			return false, err
		}
		opts.Quality = quality
		changed = true
	}
	if flags.Changed("half-size") {
		opts.HalfSize, _ = flags.GetBool("half-size")
		changed = true
	}
	if flags.Changed("no-auto-bright") {
		opts.NoAutoBright, _ = flags.GetBool("no-auto-bright")
		changed = true
	}
	if flags.Changed("keep-orientation") {
		opts.KeepOrientation, _ = flags.GetBool("keep-orientation")
		changed = true
	}
	if flags.Changed("no-temp-dir") {
		noTemp, _ := flags.GetBool("no-temp-dir")
		opts.UseTempDir = !noTemp
		changed = true
	}

	return changed, nil
}

// toolOutputSink builds the per-line listener for tool output. Lines go
// to stderr when verbose, to the log file when one is requested, or
// nowhere. The returned TeeWriter is non-nil only when a log file was
// opened; the caller owns closing it.
func toolOutputSink(logFile string) (exec.LogFunc, *logging.TeeWriter, error) {
	if logFile != "" {
		var primary io.Writer
		if verbosity > 0 {
			primary = os.Stderr
		}
		tee, err := logging.NewTeeWriter(primary, logFile)
		if err != nil {
			return nil, nil, err
		}
		return func(line string) {
			//nolint:errcheck // a failed log write must not abort the conversion
			tee.WriteLine(line)
		}, tee, nil
	}

	if verbosity > 0 {
		return func(line string) {
			fmt.Fprintln(os.Stderr, line)
		}, nil, nil
	}

	return nil, nil, nil
}

// printMetadata runs raw-identify against the original raw file and
// prints the full report.
func printMetadata(cmd *cobra.Command, rawPath, pluginDirFlag string, onLine exec.LogFunc) error {
	runner := exec.New()
	identifier := dcraw.NewIdentifier(dcraw.IdentifierOptions{
		Locator: dcraw.NewLocator(dcraw.Identify, dcraw.LocatorOptions{
			Prefs:     prefs(),
			PluginDir: pluginDir(pluginDirFlag),
			Runner:    runner,
		}),
		Runner: runner,
		OnLine: onLine,
	})

	report, err := identifier.Describe(cmd.Context(), rawPath, true)
	if err != nil {
		return err
	}
	fmt.Print(report)
	return nil
}

func init() {
	rootCmd.AddCommand(openCmd)

	openCmd.Flags().String("white-balance", "", "white balance: none, camera, or average")
	openCmd.Flags().String("color-space", "", "output colorspace: raw, srgb, adobe, wide, prophoto, xyz, or aces")
	openCmd.Flags().String("format", "", "sample format: 8-bit, 16-bit, or 16-bit-linear")
	openCmd.Flags().String("quality", "", "interpolation quality: bilinear, vng, ppg, ahd, dcb, dht, or aahd")
	openCmd.Flags().Bool("half-size", false, "extract at half size")
	openCmd.Flags().Bool("no-auto-bright", false, "do not automatically brighten the image")
	openCmd.Flags().Bool("keep-orientation", false, "do not rotate or scale pixels")
	openCmd.Flags().Bool("no-temp-dir", false, "convert next to the original instead of a temporary copy")
	openCmd.Flags().BoolP("interactive", "i", false, "edit conversion settings in an interactive form")
	openCmd.Flags().StringP("out", "o", "", "save the converted image to this path")
	openCmd.Flags().Bool("metadata", false, "also print the raw-identify metadata report")
	openCmd.Flags().String("log-file", "", "write tool output lines to this file")
	openCmd.Flags().String("tool-path", "", "explicit path to the dcraw_emu executable")
	openCmd.Flags().String("plugin-dir", "", "plugin directory containing dcraw/<executable>")
}
