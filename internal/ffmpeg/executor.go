package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int   // -1 when the process did not start or was killed.
	StartErr error // Set when the binary could not be run at all.
}

// Failed reports whether the invocation did not exit cleanly.
func (r ExecResult) Failed() bool { return r.StartErr != nil || r.ExitCode != 0 }

// Runner executes ffmpeg with args (binary name excluded). Implementations
// must honor ctx cancellation.
type Runner interface {
	Run(ctx context.Context, args []string) ExecResult
}

// Executor runs the real ffmpeg binary. When Verbose is set, stderr is
// tee'd to Echo (os.Stderr when nil) in real time; otherwise it is captured
// silently for error reporting.
type Executor struct {
	Bin     string
	Verbose bool
	Echo    io.Writer
}

// NewExecutor returns an Executor for the resolved binary path.
func NewExecutor(bin string, verbose bool) *Executor {
	return &Executor{Bin: bin, Verbose: verbose}
}

// Run implements Runner.
func (e *Executor) Run(ctx context.Context, args []string) ExecResult {
	cmd := exec.CommandContext(ctx, e.Bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if e.Verbose {
		echo := e.Echo
		if echo == nil {
			echo = os.Stderr
		}
		cmd.Stderr = io.MultiWriter(&stderr, echo)
	} else {
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
		res.StartErr = err
	}
	return res
}

// Listing runs the inventory command for path and returns ffmpeg's stderr.
// ffmpeg exits non-zero when no output is given; that is expected and only
// a failure to start is reported.
func (e *Executor) Listing(ctx context.Context, path string) (string, error) {
	quiet := *e
	quiet.Verbose = false
	res := quiet.Run(ctx, BuildInspect(path))
	if res.StartErr != nil {
		return "", res.StartErr
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return res.Stderr, nil
}
