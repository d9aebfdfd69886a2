package dcraw

import (
	"context"
	"image"
	"log/slog"
	"os"

	"github.com/pixelfold/rawbridge/internal/exec"
)

// ExtractorOptions configures an Extractor.
type ExtractorOptions struct {
	Locator *Locator     // resolves the unprocessed_raw binary (required)
	Runner  exec.Runner  // runs the tool (required)
	Loader  ImageLoader  // loads the produced TIFF (required)
	Logger  *slog.Logger // nil disables logging
	OnLine  exec.LogFunc // optional per-line tool output listener
}

// ExtractRequest describes one raw-data extraction.
type ExtractRequest struct {
	// Path is the raw file to extract from.
	Path string

	// Quiet suppresses the tool's progress chatter (-q).
	Quiet bool

	// SaveAs, when non-empty, receives a copy of the extracted TIFF
	// before cleanup removes it.
	SaveAs string
}

// Extractor pulls mostly unprocessed sensor data out of a raw file using
// the unprocessed_raw tool. Like the converter it writes a TIFF next to
// its input; unlike it, there is no demosaicing and nothing to configure
// beyond quiet mode, so the input is never staged.
type Extractor struct {
	locator *Locator
	runner  exec.Runner
	loader  ImageLoader
	log     *slog.Logger
	onLine  exec.LogFunc
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ExtractorOptions) *Extractor {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Extractor{
		locator: opts.Locator,
		runner:  opts.Runner,
		loader:  opts.Loader,
		log:     log,
		onLine:  opts.OnLine,
	}
}

// BuildUnprocessedArgs translates the quiet toggle into the exact
// argument vector unprocessed_raw expects, ending with the input path.
func BuildUnprocessedArgs(quiet bool, inputPath string) []string {
	var args []string
	if quiet {
		args = append(args, "-q")
	}
	return append(args, "-T", inputPath)
}

// Validate resolves the extraction tool without running it.
func (e *Extractor) Validate(ctx context.Context) error {
	_, err := e.locator.Resolve(ctx)
	return err
}

// Extract runs the tool against the raw file and returns the decoded
// image. The produced TIFF is deleted before Extract returns unless it
// already existed; deletion failures are logged, never fatal.
func (e *Extractor) Extract(ctx context.Context, req ExtractRequest) (image.Image, error) {
	toolPath, err := e.locator.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	output := req.Path + outputExt
	_, statErr := os.Stat(output)
	removeOutput := os.IsNotExist(statErr)
	defer func() {
		if removeOutput {
			removeQuiet(e.log, output, "extracted output")
		}
	}()

	args := BuildUnprocessedArgs(req.Quiet, req.Path)
	e.log.Debug("executing extraction", "tool", toolPath, "args", args)
	if _, err := e.runner.Run(ctx, &exec.RunOptions{
		Path:     toolPath,
		Name:     Unprocessed.Name,
		Args:     args,
		OnStdout: e.onLine,
		OnStderr: e.onLine,
	}); err != nil {
		return nil, err
	}

	return loadOutput(e.loader, output, req.SaveAs)
}
