package dcraw

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pixelfold/rawbridge/internal/exec"
)

// ErrNotFound is returned when a tool cannot be located by any search
// strategy.
var ErrNotFound = errors.New("tool not found")

// Prefs supplies persisted tool path preferences, keyed by Tool.ConfigKey.
// An empty return value means no preference is set.
type Prefs interface {
	ToolPath(key string) string
}

// devPluginDir is the relative plugin location checked when running
// outside an installed-plugin context, primarily for test environments.
const devPluginDir = "plugins"

// toolSubdir is the conventional subdirectory holding the tool binaries
// under the plugin directory.
const toolSubdir = "dcraw"

// LocatorOptions configures a Locator.
type LocatorOptions struct {
	// Override is an explicit executable path with the highest precedence.
	// If set but invalid, resolution fails immediately.
	Override string

	// Prefs supplies the persisted preference path, if any.
	Prefs Prefs

	// PluginDir is the base directory for the conventional
	// <plugin-dir>/dcraw/<executable> location.
	PluginDir string

	// Runner performs the system-path launch probe. Required.
	Runner exec.Runner
}

// Locator finds the full path of one external tool. The first successful
// resolution is cached for the lifetime of the Locator; sequential reuse
// from a single owner is expected, concurrent use is not.
type Locator struct {
	tool     Tool
	opts     LocatorOptions
	resolved string
}

// NewLocator creates a Locator for the given tool.
func NewLocator(tool Tool, opts LocatorOptions) *Locator {
	return &Locator{tool: tool, opts: opts}
}

// Resolve returns the absolute path of a validated, existing executable
// for the tool, or the bare executable name when the tool was found via
// the system path. Search order, first match wins:
//
//  1. The explicit override path.
//  2. The persisted preference path.
//  3. <plugin-dir>/dcraw/<executable>.
//  4. plugins/dcraw/<executable> relative to the working directory, used
//     only when no plugin directory is configured.
//  5. The system path, validated by launching the tool with no arguments.
//
// A set-but-invalid override or preference fails immediately naming the
// key; it never falls through to later strategies.
func (l *Locator) Resolve(ctx context.Context) (string, error) {
	if l.resolved != "" {
		return l.resolved, nil
	}

	path, err := l.locate(ctx)
	if err != nil {
		return "", err
	}
	l.resolved = path
	return path, nil
}

func (l *Locator) locate(ctx context.Context) (string, error) {
	exe := l.tool.ExecutableName()
	rel := filepath.Join(toolSubdir, exe)

	if l.opts.Override != "" {
		info, err := os.Stat(l.opts.Override)
		if err != nil || info.IsDir() {
			return "", fmt.Errorf("%w: override %q does not point to an existing %q executable [%s]",
				ErrNotFound, l.tool.ConfigKey, l.tool.Name, absolute(l.opts.Override))
		}
		return filepath.Abs(l.opts.Override)
	}

	if l.opts.Prefs != nil {
		if path := l.opts.Prefs.ToolPath(l.tool.ConfigKey); path != "" {
			if _, err := os.Stat(path); err != nil {
				return "", fmt.Errorf("%w: configured %q does not point to an existing %q executable [%s]",
					ErrNotFound, l.tool.ConfigKey, l.tool.Name, absolute(path))
			}
			return filepath.Abs(path)
		}
	}

	if l.opts.PluginDir != "" {
		path := filepath.Join(l.opts.PluginDir, rel)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: no %q binary in plugin directory, file does not exist: %q",
				ErrNotFound, l.tool.Name, absolute(path))
		}
		return filepath.Abs(path)
	}

	if devPath := filepath.Join(devPluginDir, rel); fileExists(devPath) {
		return filepath.Abs(devPath)
	}

	// Last resort: the system search path. A lookup failure is cheap and
	// conclusive; a hit is then validated by actually launching the tool.
	// A usage message and non-zero exit still prove the binary is
	// runnable; only a start failure counts against it.
	if _, err := l.opts.Runner.LookPath(exe); err != nil {
		return "", fmt.Errorf("%w: failed to find %q in the system path: %v", ErrNotFound, exe, err)
	}
	if res, err := l.opts.Runner.Run(ctx, &exec.RunOptions{Path: exe, Name: l.tool.Name}); err != nil && res == nil {
		return "", fmt.Errorf("%w: failed to launch %q from the system path: %v", ErrNotFound, exe, err)
	}
	return exe, nil
}

// Invalidate drops the cached path so the next Resolve searches again.
func (l *Locator) Invalidate() {
	l.resolved = ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// absolute is for error messages only; it falls back to the input when
// the path cannot be made absolute.
func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
