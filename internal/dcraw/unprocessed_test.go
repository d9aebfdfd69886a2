package dcraw

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(runner *fakeRunner, loader ImageLoader) *Extractor {
	bin := os.Args[0] // any existing file passes the override check
	return NewExtractor(ExtractorOptions{
		Locator: NewLocator(Unprocessed, LocatorOptions{Override: bin, Runner: runner}),
		Runner:  runner,
		Loader:  loader,
	})
}

func TestBuildUnprocessedArgs(t *testing.T) {
	t.Run("default invocation", func(t *testing.T) {
		assert.Equal(t, []string{"-T", "photo.CR2"}, BuildUnprocessedArgs(false, "photo.CR2"))
	})

	t.Run("quiet invocation", func(t *testing.T) {
		assert.Equal(t, []string{"-q", "-T", "photo.CR2"}, BuildUnprocessedArgs(true, "photo.CR2"))
	})
}

func TestExtractor_Extract(t *testing.T) {
	t.Run("extracts in place and removes the output", func(t *testing.T) {
		rawPath := writeRawFile(t)
		runner := convertingRunner()
		loader := &stubLoader{}

		img, err := newTestExtractor(runner, loader).Extract(context.Background(), ExtractRequest{Path: rawPath})
		require.NoError(t, err)
		require.NotNil(t, img)

		// The tool ran against the original, not a staged copy.
		require.Len(t, runner.calls, 1)
		assert.Equal(t, []string{"-T", rawPath}, runner.calls[0].Args)
		require.Len(t, loader.calls, 1)
		assert.Equal(t, rawPath+outputExt, loader.calls[0])

		// No residue next to the original.
		_, err = os.Stat(rawPath + outputExt)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("quiet flag reaches the tool", func(t *testing.T) {
		rawPath := writeRawFile(t)
		runner := convertingRunner()

		_, err := newTestExtractor(runner, &stubLoader{}).Extract(context.Background(), ExtractRequest{
			Path:  rawPath,
			Quiet: true,
		})
		require.NoError(t, err)

		require.Len(t, runner.calls, 1)
		assert.Equal(t, []string{"-q", "-T", rawPath}, runner.calls[0].Args)
		assert.Equal(t, Unprocessed.Name, runner.calls[0].Name)
	})

	t.Run("pre-existing output survives", func(t *testing.T) {
		rawPath := writeRawFile(t)
		existing := rawPath + outputExt
		require.NoError(t, os.WriteFile(existing, []byte("earlier extraction"), 0o644))

		_, err := newTestExtractor(convertingRunner(), &stubLoader{}).Extract(context.Background(), ExtractRequest{Path: rawPath})
		require.NoError(t, err)

		_, err = os.Stat(existing)
		assert.NoError(t, err)
	})

	t.Run("missing output is reported", func(t *testing.T) {
		rawPath := writeRawFile(t)
		runner := &fakeRunner{} // succeeds but writes nothing

		_, err := newTestExtractor(runner, &stubLoader{}).Extract(context.Background(), ExtractRequest{Path: rawPath})
		assert.ErrorIs(t, err, ErrOutputMissing)
	})

	t.Run("save-as copies before cleanup", func(t *testing.T) {
		rawPath := writeRawFile(t)
		saveAs := filepath.Join(t.TempDir(), "kept.tiff")

		_, err := newTestExtractor(convertingRunner(), &stubLoader{}).Extract(context.Background(), ExtractRequest{
			Path:   rawPath,
			SaveAs: saveAs,
		})
		require.NoError(t, err)

		data, err := os.ReadFile(saveAs)
		require.NoError(t, err)
		assert.Equal(t, "tiff-bytes", string(data))

		_, err = os.Stat(rawPath + outputExt)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("locator failure aborts before running", func(t *testing.T) {
		runner := &fakeRunner{}
		e := NewExtractor(ExtractorOptions{
			Locator: NewLocator(Unprocessed, LocatorOptions{
				Override: filepath.Join(t.TempDir(), "missing"),
				Runner:   runner,
			}),
			Runner: runner,
			Loader: &stubLoader{},
		})

		_, err := e.Extract(context.Background(), ExtractRequest{Path: "photo.CR2"})
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), Unprocessed.ConfigKey)
		assert.Empty(t, runner.calls)
	})
}
