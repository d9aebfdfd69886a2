// Package config provides configuration management for rawbridge.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/pixelfold/rawbridge/internal/dcraw"
)

// Default configuration locations.
const (
	DefaultConfigDir  = ".config/rawbridge"
	DefaultConfigFile = "config.yaml"
)

// Sentinel errors for configuration operations.
var (
	ErrInvalidKey = errors.New("invalid configuration key")
	ErrNoEditor   = errors.New("no editor configured, set the EDITOR environment variable")
)

// validKeys is built once from Config struct reflection.
var validKeys = buildValidKeys()

// validate is the shared validator instance.
var validate = validator.New()

// Config represents the full rawbridge configuration.
type Config struct {
	Tools   ToolsConfig   `mapstructure:"tools"`
	Plugins PluginsConfig `mapstructure:"plugins"`
	Convert ConvertConfig `mapstructure:"convert" validate:"required"`
}

// ToolsConfig holds per-tool executable path overrides. Empty paths mean
// the tool is located by the normal search order.
type ToolsConfig struct {
	DcrawEmu       ToolConfig `mapstructure:"dcraw_emu"`
	RawIdentify    ToolConfig `mapstructure:"raw_identify"`
	UnprocessedRaw ToolConfig `mapstructure:"unprocessed_raw"`
}

// ToolConfig holds the location preference for one tool.
type ToolConfig struct {
	Path string `mapstructure:"path"`
}

// PluginsConfig holds the base directory for the conventional
// <plugin-dir>/dcraw/<executable> location.
type PluginsConfig struct {
	Dir string `mapstructure:"dir"`
}

// ConvertConfig persists the last-used conversion options. The enum
// fields hold the short option keys, not display labels.
type ConvertConfig struct {
	WhiteBalance    string `mapstructure:"white_balance" validate:"required,oneof=none camera average"`
	ColorSpace      string `mapstructure:"color_space" validate:"required,oneof=raw srgb adobe wide prophoto xyz aces"`
	Format          string `mapstructure:"format" validate:"required,oneof=8-bit 16-bit 16-bit-linear"`
	Quality         string `mapstructure:"quality" validate:"required,oneof=bilinear vng ppg ahd dcb dht aahd"`
	NoAutoBright    bool   `mapstructure:"no_auto_bright"`
	HalfSize        bool   `mapstructure:"half_size"`
	KeepOrientation bool   `mapstructure:"keep_orientation"`
	UseTempDir      bool   `mapstructure:"use_temp_dir"`
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Options converts the persisted conversion settings to typed options,
// failing loudly on any unrecognized value.
func (c *ConvertConfig) Options() (dcraw.Options, error) {
	var opts dcraw.Options
	var err error

	if opts.WhiteBalance, err = dcraw.ParseWhiteBalance(c.WhiteBalance); err != nil {
		return opts, err
	}
	if opts.ColorSpace, err = dcraw.ParseColorSpace(c.ColorSpace); err != nil {
		return opts, err
	}
	if opts.Format, err = dcraw.ParseFormat(c.Format); err != nil {
		return opts, err
	}
	if opts.Quality, err = dcraw.ParseQuality(c.Quality); err != nil {
		return opts, err
	}
	opts.NoAutoBright = c.NoAutoBright
	opts.HalfSize = c.HalfSize
	opts.KeepOrientation = c.KeepOrientation
	opts.UseTempDir = c.UseTempDir
	return opts, nil
}

// Loader provides configuration loading and saving.
type Loader struct {
	v       *viper.Viper
	path    string
	homeDir string
}

// NewLoader creates a new configuration loader.
func NewLoader() (*Loader, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}

	configPath := filepath.Join(home, DefaultConfigDir, DefaultConfigFile)

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Environment variable binding
	v.SetEnvPrefix("RAWBRIDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind specific env vars to config keys.
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("tools.dcraw_emu.path", "RAWBRIDGE_DCRAW_EMU_PATH")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("tools.raw_identify.path", "RAWBRIDGE_RAW_IDENTIFY_PATH")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("tools.unprocessed_raw.path", "RAWBRIDGE_UNPROCESSED_RAW_PATH")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("plugins.dir", "RAWBRIDGE_PLUGIN_DIR")

	l := &Loader{
		v:       v,
		path:    configPath,
		homeDir: home,
	}

	l.setDefaults()

	return l, nil
}

// setDefaults mirrors dcraw.DefaultOptions so a fresh install behaves
// like the tool's documented defaults.
func (l *Loader) setDefaults() {
	defaults := dcraw.DefaultOptions()

	l.v.SetDefault("tools.dcraw_emu.path", "")
	l.v.SetDefault("tools.raw_identify.path", "")
	l.v.SetDefault("tools.unprocessed_raw.path", "")
	l.v.SetDefault("plugins.dir", "")
	l.v.SetDefault("convert.white_balance", defaults.WhiteBalance.Key())
	l.v.SetDefault("convert.color_space", defaults.ColorSpace.Key())
	l.v.SetDefault("convert.format", defaults.Format.Key())
	l.v.SetDefault("convert.quality", defaults.Quality.Key())
	l.v.SetDefault("convert.no_auto_bright", defaults.NoAutoBright)
	l.v.SetDefault("convert.half_size", defaults.HalfSize)
	l.v.SetDefault("convert.keep_orientation", defaults.KeepOrientation)
	l.v.SetDefault("convert.use_temp_dir", defaults.UseTempDir)
}

// Load reads the configuration file, creating defaults if it doesn't exist.
func (l *Loader) Load() (*Config, error) {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := l.createDefault(); err != nil {
			return nil, fmt.Errorf("create default config: %w", err)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Tools.DcrawEmu.Path = l.expandPath(cfg.Tools.DcrawEmu.Path)
	cfg.Tools.RawIdentify.Path = l.expandPath(cfg.Tools.RawIdentify.Path)
	cfg.Tools.UnprocessedRaw.Path = l.expandPath(cfg.Tools.UnprocessedRaw.Path)
	cfg.Plugins.Dir = l.expandPath(cfg.Plugins.Dir)

	return &cfg, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// Get returns a configuration value by dot-notation key.
func (l *Loader) Get(key string) (any, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return l.v.Get(key), nil
}

// Set sets a configuration value by dot-notation key and writes the file.
func (l *Loader) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	// Convert option keys are validated up front so a typo cannot be
	// persisted and poison every later invocation.
	var err error
	switch key {
	case "convert.white_balance":
		_, err = dcraw.ParseWhiteBalance(value)
	case "convert.color_space":
		_, err = dcraw.ParseColorSpace(value)
	case "convert.format":
		_, err = dcraw.ParseFormat(value)
	case "convert.quality":
		_, err = dcraw.ParseQuality(value)
	}
	if err != nil {
		return err
	}

	l.v.Set(key, value)
	return l.writeConfig()
}

// SaveConvert persists the given options as the new last-used settings.
func (l *Loader) SaveConvert(opts dcraw.Options) error {
	l.v.Set("convert.white_balance", opts.WhiteBalance.Key())
	l.v.Set("convert.color_space", opts.ColorSpace.Key())
	l.v.Set("convert.format", opts.Format.Key())
	l.v.Set("convert.quality", opts.Quality.Key())
	l.v.Set("convert.no_auto_bright", opts.NoAutoBright)
	l.v.Set("convert.half_size", opts.HalfSize)
	l.v.Set("convert.keep_orientation", opts.KeepOrientation)
	l.v.Set("convert.use_temp_dir", opts.UseTempDir)
	return l.writeConfig()
}

// ToolPath implements dcraw.Prefs: it returns the persisted executable
// path preference for the given tool key, or empty when unset.
func (l *Loader) ToolPath(key string) string {
	if !validKeys[key] {
		return ""
	}
	return l.expandPath(l.v.GetString(key))
}

func (l *Loader) writeConfig() error {
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		if err := l.createDefault(); err != nil {
			return fmt.Errorf("create default config: %w", err)
		}
		return nil
	}
	return l.v.WriteConfig()
}

// createDefault writes the default configuration file using Viper.
func (l *Loader) createDefault() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	return l.v.SafeWriteConfigAs(l.path)
}

// expandPath replaces ~ with the home directory.
func (l *Loader) expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(l.homeDir, path[2:])
	}
	if path == "~" {
		return l.homeDir
	}
	return path
}

// ValidateKey checks if a key is a valid configuration key.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if validKeys[key] {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidKey, key)
}

// buildValidKeys builds the set of valid keys from Config struct using
// reflection.
func buildValidKeys() map[string]bool {
	keys := make(map[string]bool)
	addKeysFromType(reflect.TypeOf(Config{}), "", keys)
	return keys
}

// addKeysFromType recursively adds keys from a struct type.
func addKeysFromType(t reflect.Type, prefix string, keys map[string]bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		keys[key] = true

		if field.Type.Kind() == reflect.Struct {
			addKeysFromType(field.Type, key, keys)
		}
	}
}
