// Package intake collects the input paths when none are given on the
// command line: from the clipboard when it holds existing paths, otherwise
// from an interactive prompt that accepts files dragged onto the terminal.
package intake

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrNoInput means the prompt was closed without any path.
var ErrNoInput = errors.New("no files were selected")

// Prompter reads paths from the clipboard or an interactive prompt.
type Prompter struct {
	in        *bufio.Reader
	out       io.Writer
	goos      string
	clipboard func() (string, error)
}

// NewPrompter returns a Prompter reading from in and writing prompts to out
// on the current OS with the system clipboard.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:        bufio.NewReader(in),
		out:       out,
		goos:      runtime.GOOS,
		clipboard: clipboard.ReadAll,
	}
}

// Stdio returns a Prompter on os.Stdin and os.Stdout.
func Stdio() *Prompter { return NewPrompter(os.Stdin, os.Stdout) }

// Source describes where the paths came from.
type Source string

const (
	SourceClipboard Source = "clipboard"
	SourcePrompt    Source = "prompt"
)

// Paths returns the paths to process. The clipboard is tried first when
// useClipboard is set; otherwise (or when it holds no existing paths) the
// user is prompted once.
func (p *Prompter) Paths(ctx context.Context, useClipboard bool) ([]string, Source, error) {
	if useClipboard && p.clipboard != nil && !clipboard.Unsupported {
		if text, err := p.clipboard(); err == nil {
			if paths, ok := ParseClipboard(text); ok {
				return paths, SourceClipboard, nil
			}
		}
	}

	fmt.Fprintln(p.out, "Which file do you want to modify? (Drag one or more files onto the window and then press enter).")
	line, err := p.readLine(ctx)
	fmt.Fprintln(p.out)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, SourcePrompt, err
	}
	paths := ParseDropped(line, p.goos)
	if len(paths) == 0 {
		return nil, SourcePrompt, ErrNoInput
	}
	return paths, SourcePrompt, nil
}

// readLine reads one line, giving up when ctx is cancelled.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		ch <- result{strings.TrimRight(line, "\r\n"), err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}
