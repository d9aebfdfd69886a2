package exec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type runner struct{}

// New returns a Runner backed by os/exec.
func New() Runner {
	return &runner{}
}

func (r *runner) Run(ctx context.Context, opts *RunOptions) (*Result, error) {
	// G204: Intentional - we exist to run the user-configured conversion tool.
	cmd := exec.CommandContext(ctx, opts.Path, opts.Args...) //nolint:gosec // Intentional subprocess execution

	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: open stdout pipe: %v", ErrExec, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: open stderr pipe: %v", ErrExec, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting %q: %v", ErrExec, opts.Path, err)
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(opts.Path)
	}

	// Both drains must be running before we block on process exit: a child
	// that fills an OS pipe buffer stalls until someone reads it.
	outDrain := newDrain(stdout, name, opts.OnStdout)
	errDrain := newDrain(stderr, name, opts.OnStderr)
	outDrain.start()
	errDrain.start()

	// The pipes reach EOF when the process exits (or is killed on context
	// cancellation), so waiting on the drains first guarantees no buffered
	// output is lost before Wait reaps the child.
	outDrain.wait()
	errDrain.wait()
	waitErr := cmd.Wait()

	result := &Result{
		Stdout:   outDrain.text(),
		Stderr:   errDrain.text(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		msg := fmt.Sprintf("%s interrupted", name)
		if s := strings.TrimSpace(result.Stderr); s != "" {
			msg += "\n" + s
		}
		return result, fmt.Errorf("%w: %s: %w", ErrExec, msg, ctxErr)
	}

	if waitErr != nil {
		if code := result.ExitCode; code > 0 {
			msg := fmt.Sprintf("%s exited with code %d", name, code)
			if s := strings.TrimSpace(result.Stderr); s != "" {
				msg += "\n" + s
			}
			return result, fmt.Errorf("%w: %s", ErrExec, msg)
		}
		return result, fmt.Errorf("%w: running %q: %v", ErrExec, opts.Path, waitErr)
	}

	return result, nil
}

func (r *runner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
