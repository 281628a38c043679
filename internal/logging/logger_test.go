package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/subenlarge/internal/config"
)

func newTestLogger(t *testing.T, verbose bool) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	cfg.Verbose = verbose
	l, err := NewLogger(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	var out, errOut bytes.Buffer
	l.SetOutput(&out, &errOut)
	return l, &out, &errOut
}

func TestLogger_LevelsAndStreams(t *testing.T) {
	l, out, errOut := newTestLogger(t, false)

	l.Info("processing %s", "a.mkv")
	l.Warn("skipped")
	l.Error("remux failed")

	assert.Contains(t, out.String(), "[INFO] processing a.mkv")
	assert.Contains(t, out.String(), "[WARN] skipped")
	assert.NotContains(t, out.String(), "remux failed")
	assert.Contains(t, errOut.String(), "[ERROR] remux failed")
}

func TestLogger_DebugGatedByVerbose(t *testing.T) {
	quiet, out, _ := newTestLogger(t, false)
	quiet.Debug("hidden")
	assert.Empty(t, out.String())
	assert.False(t, quiet.Verbose())

	loud, out2, _ := newTestLogger(t, true)
	loud.Debug("shown %d", 1)
	assert.Contains(t, out2.String(), "[DEBUG] shown 1")
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	cfg.LogFile = filepath.Join(dir, "logs", "subenlarge.log")

	l, err := NewLogger(&cfg)
	require.NoError(t, err)
	l.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})
	l.Info("to file")
	require.NoError(t, l.Close())

	b, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	if !bytes.Contains(b, []byte("[INFO] to file")) {
		t.Errorf("log file content: %s", string(b))
	}
}

func TestLogger_CloseTwice(t *testing.T) {
	l, _, _ := newTestLogger(t, false)
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}
