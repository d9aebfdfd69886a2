package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeeWriter(t *testing.T) {
	t.Run("writes to primary and log file", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "convert.log")
		var primary bytes.Buffer

		w, err := NewTeeWriter(&primary, logPath)
		require.NoError(t, err)

		require.NoError(t, w.WriteLine("dcraw_emu: Loading photo.CR2"))
		require.NoError(t, w.Close())

		assert.Equal(t, "dcraw_emu: Loading photo.CR2\n", primary.String())
		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Equal(t, "dcraw_emu: Loading photo.CR2\n", string(data))
	})

	t.Run("nil primary writes log file only", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "convert.log")

		w, err := NewTeeWriter(nil, logPath)
		require.NoError(t, err)

		n, err := w.Write([]byte("line\n"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		require.NoError(t, w.Close())

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Equal(t, "line\n", string(data))
	})

	t.Run("LogPath empties after close", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "convert.log")

		w, err := NewTeeWriter(nil, logPath)
		require.NoError(t, err)
		assert.Equal(t, logPath, w.LogPath())

		require.NoError(t, w.Close())
		assert.Empty(t, w.LogPath())
	})
}
