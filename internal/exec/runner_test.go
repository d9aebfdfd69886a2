package exec

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	r := New()
	require.NotNil(t, r)
}

func TestRunner_Run(t *testing.T) {
	r := New()

	t.Run("captures stdout lines in order", func(t *testing.T) {
		result, err := r.Run(context.Background(), &RunOptions{
			Path: "sh",
			Args: []string{"-c", "echo one; echo two; echo three"},
		})

		require.NoError(t, err)
		assert.Equal(t, "one\ntwo\nthree\n", result.Stdout)
		assert.Empty(t, result.Stderr)
		assert.Equal(t, 0, result.ExitCode)
	})

	t.Run("captures stderr", func(t *testing.T) {
		result, err := r.Run(context.Background(), &RunOptions{
			Path: "sh",
			Args: []string{"-c", "echo oops >&2"},
		})

		require.NoError(t, err)
		assert.Empty(t, result.Stdout)
		assert.Equal(t, "oops\n", result.Stderr)
	})

	t.Run("non-zero exit includes code and stderr in error", func(t *testing.T) {
		result, err := r.Run(context.Background(), &RunOptions{
			Path: "sh",
			Args: []string{"-c", "echo broken input >&2; exit 42"},
			Name: "dcraw_emu",
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExec)
		assert.Contains(t, err.Error(), "42")
		assert.Contains(t, err.Error(), "broken input")
		assert.Equal(t, 42, result.ExitCode)
		assert.Equal(t, "broken input\n", result.Stderr)
	})

	t.Run("forwards prefixed lines to listeners", func(t *testing.T) {
		var mu sync.Mutex
		var lines []string
		result, err := r.Run(context.Background(), &RunOptions{
			Path: "sh",
			Args: []string{"-c", "echo loading; echo writing"},
			Name: "dcraw_emu",
			OnStdout: func(line string) {
				mu.Lock()
				lines = append(lines, line)
				mu.Unlock()
			},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"dcraw_emu: loading", "dcraw_emu: writing"}, lines)
		assert.Equal(t, "loading\nwriting\n", result.Stdout)
	})

	t.Run("drains output larger than the OS pipe buffer", func(t *testing.T) {
		// Regression: a child writing >64KB before exiting must not
		// deadlock against a parent that is blocked on process exit.
		script := fmt.Sprintf("i=0; while [ $i -lt %d ]; do echo 'xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx'; i=$((i+1)); done", 4096)

		done := make(chan struct{})
		var result *Result
		var err error
		go func() {
			defer close(done)
			result, err = r.Run(context.Background(), &RunOptions{
				Path: "sh",
				Args: []string{"-c", script},
			})
		}()

		select {
		case <-done:
		case <-time.After(30 * time.Second):
			t.Fatal("runner deadlocked on large output")
		}

		require.NoError(t, err)
		assert.Equal(t, 4096, strings.Count(result.Stdout, "\n"))
		assert.Greater(t, len(result.Stdout), 64*1024)
	})

	t.Run("start failure returns nil result", func(t *testing.T) {
		result, err := r.Run(context.Background(), &RunOptions{
			Path: "/nonexistent/binary/path_12345",
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExec)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "/nonexistent/binary/path_12345")
	})

	t.Run("cancellation surfaces context error with partial stderr", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		result, err := r.Run(ctx, &RunOptions{
			Path: "sh",
			Args: []string{"-c", "echo partial >&2; exec sleep 10"},
			Name: "dcraw_emu",
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExec)
		assert.True(t, errors.Is(err, context.DeadlineExceeded),
			"expected deadline error, got: %v", err)
		require.NotNil(t, result)
		assert.Contains(t, err.Error(), "partial")
	})
}

func TestRunner_LookPath(t *testing.T) {
	r := New()

	t.Run("finds existing command", func(t *testing.T) {
		path, err := r.LookPath("sh")

		require.NoError(t, err)
		assert.NotEmpty(t, path)
	})

	t.Run("returns error for nonexistent command", func(t *testing.T) {
		_, err := r.LookPath("nonexistent_command_12345")
		require.Error(t, err)
	})
}
