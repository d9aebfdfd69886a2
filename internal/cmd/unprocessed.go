package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pixelfold/rawbridge/internal/dcraw"
	"github.com/pixelfold/rawbridge/internal/exec"
	"github.com/pixelfold/rawbridge/internal/imageio"
	"github.com/pixelfold/rawbridge/internal/slogger"
)

var unprocessedCmd = &cobra.Command{
	Use:   "unprocessed <raw-file>",
	Short: "Extract mostly unprocessed sensor data from a raw file",
	Long: `Extract mostly unprocessed sensor data from a raw file by running
unprocessed_raw.

Unlike open, no demosaicing or color processing is applied; the result is
the sensor data as the camera recorded it.`,
	Example: `  # Extract and report the image size
  rawbridge unprocessed photo.CR2

  # Keep the extracted TIFF
  rawbridge unprocessed photo.CR2 --out sensor.tiff`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rawPath := args[0]

		if info, err := os.Stat(rawPath); err != nil || info.IsDir() {
			return fmt.Errorf("raw file does not exist: %q", rawPath)
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		outPath, _ := cmd.Flags().GetString("out")
		logFile, _ := cmd.Flags().GetString("log-file")
		toolPath, _ := cmd.Flags().GetString("tool-path")
		pluginDirFlag, _ := cmd.Flags().GetString("plugin-dir")

		onLine, tee, err := toolOutputSink(logFile)
		if err != nil {
			return err
		}
		if tee != nil {
			defer tee.Close() //nolint:errcheck // nothing left to do with a close failure
		}

		runner := exec.New()
		extractor := dcraw.NewExtractor(dcraw.ExtractorOptions{
			Locator: dcraw.NewLocator(dcraw.Unprocessed, dcraw.LocatorOptions{
				Override:  toolPath,
				Prefs:     prefs(),
				PluginDir: pluginDir(pluginDirFlag),
				Runner:    runner,
			}),
			Runner: runner,
			Loader: imageio.Loader{},
			Logger: slogger.L(ctx),
			OnLine: onLine,
		})

		img, err := extractor.Extract(ctx, dcraw.ExtractRequest{
			Path:   rawPath,
			Quiet:  quiet,
			SaveAs: outPath,
		})
		if err != nil {
			return err
		}

		bounds := img.Bounds()
		fmt.Printf("Extracted %s (%dx%d)\n", rawPath, bounds.Dx(), bounds.Dy())
		if outPath != "" {
			fmt.Printf("Saved to %s\n", outPath)
		}
		if tee != nil {
			fmt.Printf("Tool output written to %s\n", tee.LogPath())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unprocessedCmd)

	unprocessedCmd.Flags().BoolP("quiet", "q", false, "suppress the tool's progress output")
	unprocessedCmd.Flags().StringP("out", "o", "", "save the extracted image to this path")
	unprocessedCmd.Flags().String("log-file", "", "write tool output lines to this file")
	unprocessedCmd.Flags().String("tool-path", "", "explicit path to the unprocessed_raw executable")
	unprocessedCmd.Flags().String("plugin-dir", "", "plugin directory containing dcraw/<executable>")
}
