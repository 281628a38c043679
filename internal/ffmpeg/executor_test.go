package ffmpeg

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBinary writes a shell script standing in for ffmpeg.
func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake needs a Unix shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestExecutor_Run(t *testing.T) {
	bin := fakeBinary(t, `echo "out:$1"; echo "warning on stderr" >&2; exit 3`+"\n")
	var echo bytes.Buffer
	e := &Executor{Bin: bin, Verbose: true, Echo: &echo}

	res := e.Run(context.Background(), []string{"-i", "x.mkv"})
	assert.Equal(t, 3, res.ExitCode)
	assert.NoError(t, res.StartErr)
	assert.True(t, res.Failed())
	assert.Equal(t, "out:-i\n", res.Stdout)
	assert.Equal(t, "warning on stderr\n", res.Stderr)
	assert.Equal(t, "warning on stderr\n", echo.String(), "verbose tees stderr")
}

func TestExecutor_MissingBinary(t *testing.T) {
	e := NewExecutor(filepath.Join(t.TempDir(), "no-such-ffmpeg"), false)
	res := e.Run(context.Background(), nil)
	assert.Error(t, res.StartErr)
	assert.Equal(t, -1, res.ExitCode)
	assert.True(t, res.Failed())
}

func TestExecutor_Listing(t *testing.T) {
	bin := fakeBinary(t, `echo "Input #0, matroska,webm, from '$4':" >&2; echo "At least one output file must be specified" >&2; exit 1`+"\n")
	e := NewExecutor(bin, true)

	out, err := e.Listing(context.Background(), "a.mkv")
	require.NoError(t, err)
	assert.Contains(t, out, "from 'a.mkv'")
}

func TestExecutor_RealFfmpegVersion(t *testing.T) {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}
	res := NewExecutor(bin, false).Run(context.Background(), []string{"-hide_banner", "-version"})
	require.False(t, res.Failed(), res.Stderr)
	assert.Contains(t, res.Stdout, "ffmpeg version")
}
