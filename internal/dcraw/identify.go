package dcraw

import (
	"context"

	"github.com/pixelfold/rawbridge/internal/exec"
)

// IdentifierOptions configures an Identifier.
type IdentifierOptions struct {
	Locator *Locator     // resolves the raw-identify binary (required)
	Runner  exec.Runner  // runs the tool (required)
	OnLine  exec.LogFunc // optional per-line tool output listener
}

// Identifier describes raw files using the raw-identify tool. The tool
// writes its report to stdout and produces no output file.
type Identifier struct {
	locator *Locator
	runner  exec.Runner
	onLine  exec.LogFunc
}

// NewIdentifier creates an Identifier.
func NewIdentifier(opts IdentifierOptions) *Identifier {
	return &Identifier{locator: opts.Locator, runner: opts.Runner, onLine: opts.OnLine}
}

// Describe returns the tool's report for the raw file. With verbose set
// the report includes the full metadata listing.
func (i *Identifier) Describe(ctx context.Context, rawPath string, verbose bool) (string, error) {
	toolPath, err := i.locator.Resolve(ctx)
	if err != nil {
		return "", err
	}

	var args []string
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, rawPath)

	res, err := i.runner.Run(ctx, &exec.RunOptions{
		Path:     toolPath,
		Name:     Identify.Name,
		Args:     args,
		OnStdout: i.onLine,
		OnStderr: i.onLine,
	})
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}
