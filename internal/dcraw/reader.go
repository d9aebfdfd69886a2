package dcraw

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pixelfold/rawbridge/internal/exec"
)

// Sentinel errors for the read pipeline.
var (
	// ErrOutputMissing means the tool reported success but the expected
	// TIFF is absent.
	ErrOutputMissing = errors.New("converted output not found")

	// ErrDecode means the TIFF exists but could not be loaded.
	ErrDecode = errors.New("failed to load converted output")
)

// outputExt is the extension the tool appends to its input path when
// writing the converted image.
const outputExt = ".tiff"

// ImageLoader loads a converted image file produced by the tool.
// Implementations decide which formats they accept.
type ImageLoader interface {
	Load(path string) (image.Image, error)
}

// ReaderOptions configures a Reader.
type ReaderOptions struct {
	Locator *Locator     // resolves the dcraw_emu binary (required)
	Runner  exec.Runner  // runs the tool (required)
	Loader  ImageLoader  // loads the produced TIFF (required)
	Logger  *slog.Logger // nil disables logging
	OnLine  exec.LogFunc // optional per-line tool output listener
}

// ReadRequest describes one raw-file open.
type ReadRequest struct {
	// Path is the raw file to convert.
	Path string

	// Options are the conversion settings.
	Options Options

	// SaveAs, when non-empty, receives a copy of the converted TIFF
	// before cleanup removes it.
	SaveAs string
}

// Reader orchestrates a single raw-file open: validate the executable,
// stage the input, run the conversion, load the produced TIFF, and clean
// up all temporary artifacts regardless of outcome.
type Reader struct {
	locator *Locator
	runner  exec.Runner
	loader  ImageLoader
	log     *slog.Logger
	onLine  exec.LogFunc
}

// NewReader creates a Reader.
func NewReader(opts ReaderOptions) *Reader {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Reader{
		locator: opts.Locator,
		runner:  opts.Runner,
		loader:  opts.Loader,
		log:     log,
		onLine:  opts.OnLine,
	}
}

// Validate resolves the conversion tool without running it, so callers
// can fail before asking the user for options.
func (r *Reader) Validate(ctx context.Context) error {
	_, err := r.locator.Resolve(ctx)
	return err
}

// Read converts the raw file and returns the decoded image.
//
// When staging is enabled the input is first copied to a fresh temporary
// file, because the tool always writes its output alongside its input.
// The produced TIFF (and the staged copy, if any) are deleted before
// Read returns; deletion failures are logged, never fatal.
func (r *Reader) Read(ctx context.Context, req ReadRequest) (image.Image, error) {
	toolPath, err := r.locator.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	input := req.Path
	staged := false
	if req.Options.UseTempDir {
		input, err = stageInput(req.Path)
		if err != nil {
			return nil, fmt.Errorf("stage input copy: %w", err)
		}
		staged = true
		r.log.Debug("staged input copy", "from", req.Path, "to", input)
	}

	output := input + outputExt
	_, statErr := os.Stat(output)
	removeOutput := staged || os.IsNotExist(statErr)

	defer r.cleanup(staged, input, removeOutput, output)

	args := BuildArgs(req.Options, input)
	r.log.Debug("executing conversion", "tool", toolPath, "args", args)
	if _, err := r.runner.Run(ctx, &exec.RunOptions{
		Path:     toolPath,
		Name:     Convert.Name,
		Args:     args,
		OnStdout: r.onLine,
		OnStderr: r.onLine,
	}); err != nil {
		return nil, err
	}

	return loadOutput(r.loader, output, req.SaveAs)
}

// cleanup always runs, whichever stage failed. It removes the produced
// output when it was newly created or staging was used, and the staged
// input copy itself.
func (r *Reader) cleanup(staged bool, input string, removeOutput bool, output string) {
	if removeOutput {
		removeQuiet(r.log, output, "converted output")
	}
	if staged {
		removeQuiet(r.log, input, "staged input copy")
	}
}

// loadOutput verifies the produced file exists, copies it to saveAs when
// requested, and decodes it.
func loadOutput(loader ImageLoader, output, saveAs string) (image.Image, error) {
	if _, err := os.Stat(output); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrOutputMissing, output)
	}

	if saveAs != "" {
		if err := copyFile(output, saveAs); err != nil {
			return nil, fmt.Errorf("save converted output: %w", err)
		}
	}

	img, err := loader.Load(output)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrDecode, output, err)
	}
	return img, nil
}

// removeQuiet deletes a temporary artifact, logging failures instead of
// returning them.
func removeQuiet(log *slog.Logger, path, what string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to delete "+what, "path", path, "error", err)
	}
}

// stageInput copies the raw file to a fresh temporary file named after
// the original, returning the copy's path.
func stageInput(path string) (string, error) {
	tmp, err := os.CreateTemp("", "dcraw_*_"+filepath.Base(path))
	if err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := copyFile(path, tmp.Name()); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // G304: paths come from the caller's own request
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // read-only file

	out, err := os.Create(dst) //nolint:gosec // G304: paths come from the caller's own request
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
