// Package cmd implements the rawbridge CLI commands using Cobra.
// It provides commands for converting camera raw files to viewable
// images and inspecting raw-file metadata via the LibRaw command-line
// tools.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pixelfold/rawbridge/internal/config"
	"github.com/pixelfold/rawbridge/internal/dcraw"
	"github.com/pixelfold/rawbridge/internal/slogger"
)

// verbosity is the count of -v flags, controlling log level and whether
// tool output lines are echoed.
var verbosity int

// appConfig holds the loaded application configuration.
var appConfig *config.Config

// configLoader is used for reading and persisting configuration.
var configLoader *config.Loader

var rootCmd = &cobra.Command{
	Use:   "rawbridge",
	Short: "Convert and inspect camera raw files with the LibRaw tools",
	Long: `Rawbridge is a CLI front end for the LibRaw command-line tools.

It converts camera raw files (CR2, NEF, ARW, DNG, ...) to viewable images
by driving dcraw_emu, and reports camera metadata by driving raw-identify.
The tools are located through configuration, a plugin directory, or the
system path.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := slogger.New(slogger.Options{Verbosity: verbosity})
		cmd.SetContext(slogger.WithLogger(cmd.Context(), logger))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
}

func initConfig() {
	loader, err := config.NewLoader()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
		return
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		return
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config validation failed: %v\n", err)
	}

	appConfig = cfg
	configLoader = loader
}

// prefs returns the persisted tool path preferences, or nil when no
// configuration could be loaded. The typed-nil check matters: handing a
// nil *Loader to an interface field would not compare equal to nil.
func prefs() dcraw.Prefs {
	if configLoader == nil {
		return nil
	}
	return configLoader
}

// pluginDir returns the plugin directory to search, preferring the flag
// value over the configured one.
func pluginDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if appConfig != nil {
		return appConfig.Plugins.Dir
	}
	return ""
}

// convertOptions returns the persisted last-used conversion settings,
// falling back to defaults when no configuration is available.
func convertOptions() (dcraw.Options, error) {
	if appConfig == nil {
		return dcraw.DefaultOptions(), nil
	}
	opts, err := appConfig.Convert.Options()
	if err != nil {
		return dcraw.Options{}, fmt.Errorf("load conversion settings: %w", err)
	}
	return opts, nil
}
