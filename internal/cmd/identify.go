package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pixelfold/rawbridge/internal/dcraw"
	"github.com/pixelfold/rawbridge/internal/exec"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <raw-file>",
	Short: "Report camera metadata for a raw file",
	Long: `Report camera metadata for a raw file by running raw-identify.

The short report names the camera make and model. The full report adds
exposure, lens, and sensor details.`,
	Example: `  # Short report
  rawbridge identify photo.CR2

  # Full metadata listing
  rawbridge identify photo.CR2 --full`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawPath := args[0]
		if info, err := os.Stat(rawPath); err != nil || info.IsDir() {
			return fmt.Errorf("raw file does not exist: %q", rawPath)
		}

		full, _ := cmd.Flags().GetBool("full")
		toolPath, _ := cmd.Flags().GetString("tool-path")
		pluginDirFlag, _ := cmd.Flags().GetString("plugin-dir")

		runner := exec.New()
		identifier := dcraw.NewIdentifier(dcraw.IdentifierOptions{
			Locator: dcraw.NewLocator(dcraw.Identify, dcraw.LocatorOptions{
				Override:  toolPath,
				Prefs:     prefs(),
				PluginDir: pluginDir(pluginDirFlag),
				Runner:    runner,
			}),
			Runner: runner,
		})

		report, err := identifier.Describe(cmd.Context(), rawPath, full)
		if err != nil {
			return err
		}
		fmt.Print(report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().Bool("full", false, "print the full metadata listing")
	identifyCmd.Flags().String("tool-path", "", "explicit path to the raw-identify executable")
	identifyCmd.Flags().String("plugin-dir", "", "plugin directory containing dcraw/<executable>")
}
