//go:build integration

// Package integration provides integration tests for the rawbridge CLI
// using testscript.
package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/pixelfold/rawbridge/internal/cmd"
)

// TestMain sets up the testscript environment. Each script invocation of
// rawbridge runs the CLI in a fresh process of this test binary.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"rawbridge": func() int {
			if err := cmd.Execute(); err != nil {
				return 1
			}
			return 0
		},
	}))
}

// TestScripts runs all testscript files in testdata/scripts.
func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata/scripts",
		Setup: setupTestEnv,
	})
}

// setupTestEnv isolates each script in its own home directory so the
// config file never touches the real one.
func setupTestEnv(env *testscript.Env) error {
	testHome := filepath.Join(env.WorkDir, "home")
	configDir := filepath.Join(testHome, ".config", "rawbridge")

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", configDir, err)
	}

	env.Setenv("HOME", testHome)
	env.Setenv("XDG_CONFIG_HOME", filepath.Join(testHome, ".config"))

	return nil
}
