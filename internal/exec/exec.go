// Package exec runs external command-line tools and captures their output.
package exec

import (
	"context"
	"errors"
)

// ErrExec is the base error for command execution failures: the process
// could not be started, exited non-zero, or was interrupted.
var ErrExec = errors.New("command failed")

// Result holds the output from a completed command.
// Ownership passes to the caller; the runner retains nothing.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// LogFunc receives one line of tool output as it is produced, prefixed
// with the tool name. It is invoked synchronously from the stream drain.
type LogFunc func(line string)

// RunOptions configures command execution.
type RunOptions struct {
	Path     string   // Executable path or bare name (required)
	Args     []string // Command arguments
	Name     string   // Logical tool name used to prefix forwarded lines (defaults to base of Path)
	Env      []string // Additional environment variables (KEY=VALUE format)
	OnStdout LogFunc  // If set, receives each stdout line as it arrives
	OnStderr LogFunc  // If set, receives each stderr line as it arrives
}

// Runner runs external commands.
type Runner interface {
	// Run executes a command and blocks until it terminates, draining
	// stdout and stderr concurrently so the child never stalls on a full
	// pipe buffer. The returned Result carries the full captured output.
	//
	// On a process start failure the Result is nil. On non-zero exit or
	// cancellation the Result holds whatever output was captured and the
	// error wraps ErrExec.
	Run(ctx context.Context, opts *RunOptions) (*Result, error)

	// LookPath searches for an executable in PATH.
	LookPath(name string) (string, error)
}
