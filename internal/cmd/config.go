package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pixelfold/rawbridge/internal/config"
	"github.com/pixelfold/rawbridge/internal/dcraw"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "View and modify configuration",
	Long: `View and modify rawbridge configuration.

With no arguments, displays all configuration.
With one argument, displays the value for the specified key. Conversion
settings are annotated with their full names.
With two arguments, sets the value for the specified key.`,
	Example: `  # Show all config
  rawbridge config

  # Show value for a specific key
  rawbridge config convert.quality

  # Set a value
  rawbridge config tools.dcraw_emu.path /opt/libraw/bin/dcraw_emu

  # Open config file in editor
  rawbridge config --edit`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := config.NewLoader()
		if err != nil {
			return fmt.Errorf("init config loader: %w", err)
		}
		// Loading up front also creates the file on first use.
		cfg, err := loader.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if editFlag, _ := cmd.Flags().GetBool("edit"); editFlag {
			return editConfig(loader)
		}

		switch len(args) {
		case 1:
			return showKey(loader, args[0])
		case 2:
			return setKey(loader, args[0], args[1])
		default:
			return showAll(cfg)
		}
	},
}

func editConfig(loader *config.Loader) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return config.ErrNoEditor
	}

	editorCmd := exec.Command(editor, loader.Path())
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	return editorCmd.Run()
}

func showAll(cfg *config.Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func showKey(loader *config.Loader, key string) error {
	value, err := loader.Get(key)
	if err != nil {
		return err
	}

	switch v := value.(type) {
	case nil:
		fmt.Println("")
	case string:
		fmt.Println(annotate(key, v))
	case map[string]any, []any:
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal value: %w", err)
		}
		fmt.Print(string(out))
	default:
		fmt.Println(value)
	}
	return nil
}

func setKey(loader *config.Loader, key, value string) error {
	if err := loader.Set(key, value); err != nil {
		return err
	}
	fmt.Printf("%s = %s\n", key, annotate(key, value))
	return nil
}

// annotate appends the full display name to conversion enum values, so
// short keys like "aahd" read back as what they select.
func annotate(key, value string) string {
	var label fmt.Stringer
	var err error

	switch key {
	case "convert.white_balance":
		label, err = dcraw.ParseWhiteBalance(value)
	case "convert.color_space":
		label, err = dcraw.ParseColorSpace(value)
	case "convert.format":
		label, err = dcraw.ParseFormat(value)
	case "convert.quality":
		label, err = dcraw.ParseQuality(value)
	default:
		return value
	}
	if err != nil {
		// A stale value from a hand-edited file still prints as-is.
		return value
	}
	if strings.EqualFold(label.String(), value) {
		return value
	}
	return value + "  # " + label.String()
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().Bool("edit", false, "open config file in $EDITOR")
}
