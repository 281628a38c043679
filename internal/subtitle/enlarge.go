package subtitle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Field names looked up in the Format row.
const (
	FieldFontsize = "Fontsize"
	FieldOutline  = "Outline"
)

// DefaultPlainTextStyle replaces every Style row of tracks converted from a
// codec without a style table. Font size 32 and outline 3.7 already give
// the enlarged look.
const DefaultPlainTextStyle = "Style: Default,Arial,32,&Hffffff,&Hffffff,&H0,&H0,0,0,0,0,100,100,0,0,1,3.7,0,2,10,10,10,0"

const (
	formatPrefix         = "Format:"
	stylePrefix          = "Style:"
	eventsHeader         = "[Events]"
	defaultFontSizeDelta = "20"
	defaultOutlineDelta  = "5"
)

// Options controls one rewrite pass.
type Options struct {
	Capability     Capability
	FontSizeDelta  Decimal
	OutlineDelta   Decimal
	PlainTextStyle string // Replacement row for PlainTextOnly tracks.
	Name           string // File name used in errors.
}

// NewOptions parses the configured deltas. plainStyle is used verbatim.
func NewOptions(capability Capability, fontSizeDelta, outlineDelta, plainStyle string) (Options, error) {
	fs, err := ParseDecimal(fontSizeDelta)
	if err != nil {
		return Options{}, fmt.Errorf("font size delta %q: %w", fontSizeDelta, err)
	}
	ol, err := ParseDecimal(outlineDelta)
	if err != nil {
		return Options{}, fmt.Errorf("outline delta %q: %w", outlineDelta, err)
	}
	return Options{
		Capability:     capability,
		FontSizeDelta:  fs,
		OutlineDelta:   ol,
		PlainTextStyle: plainStyle,
	}, nil
}

// DefaultOptions returns +20 font size, +5 outline for a styled track.
func DefaultOptions() Options {
	return Options{
		Capability:     StyleTableCapable,
		FontSizeDelta:  MustDecimal(defaultFontSizeDelta),
		OutlineDelta:   MustDecimal(defaultOutlineDelta),
		PlainTextStyle: DefaultPlainTextStyle,
	}
}

// Result summarizes a rewrite pass.
type Result struct {
	StyleRows int // Style rows rewritten or replaced.
}

// formatRow maps Format field names to positions.
type formatRow struct {
	names []string
	index map[string]int
}

func parseFormatRow(line string) formatRow {
	rest := strings.TrimPrefix(line, formatPrefix)
	parts := strings.Split(rest, ",")
	f := formatRow{names: make([]string, len(parts)), index: make(map[string]int, len(parts))}
	for i, p := range parts {
		name := strings.TrimSpace(p)
		f.names[i] = name
		if _, dup := f.index[strings.ToLower(name)]; !dup {
			f.index[strings.ToLower(name)] = i
		}
	}
	return f
}

func (f formatRow) lookup(name string) (int, bool) {
	i, ok := f.index[strings.ToLower(name)]
	return i, ok
}

type rewriter struct {
	opts   Options
	r      *bufio.Reader
	w      io.Writer
	lineNo int
	format formatRow
	res    Result
}

// Enlarge copies an ASS document from r to w, rewriting the Style rows that
// sit between the first Format row and the [Events] header. Everything else,
// line terminators included, is copied unchanged.
func Enlarge(r io.Reader, w io.Writer, opts Options) (Result, error) {
	if opts.Capability == Bitmap {
		return Result{}, ErrNotRewritable
	}
	if opts.Name == "" {
		opts.Name = "<input>"
	}
	rw := &rewriter{opts: opts, r: bufio.NewReader(r), w: w}
	if err := rw.run(); err != nil {
		return rw.res, err
	}
	return rw.res, nil
}

// EnlargeFile rewrites src into dst. dst is removed if the pass fails.
func EnlargeFile(src, dst string, opts Options) (res Result, err error) {
	in, err := os.Open(src)
	if err != nil {
		return Result{}, fmt.Errorf("open subtitle: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return Result{}, fmt.Errorf("create subtitle: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close subtitle: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if opts.Name == "" {
		opts.Name = src
	}
	bw := bufio.NewWriter(out)
	res, err = Enlarge(in, bw, opts)
	if err != nil {
		return res, err
	}
	if err = bw.Flush(); err != nil {
		return res, fmt.Errorf("write subtitle: %w", err)
	}
	return res, nil
}

// next returns the line content and its terminator ("", "\n" or "\r\n").
// ok is false at end of input with nothing read.
func (rw *rewriter) next() (content, term string, ok bool, err error) {
	line, err := rw.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", "", false, fmt.Errorf("read %s: %w", rw.opts.Name, err)
	}
	if line == "" {
		return "", "", false, nil
	}
	rw.lineNo++
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n", true, nil
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n", true, nil
	default:
		return line, "", true, nil
	}
}

func (rw *rewriter) write(s string) error {
	if _, err := io.WriteString(rw.w, s); err != nil {
		return fmt.Errorf("write %s: %w", rw.opts.Name, err)
	}
	return nil
}

func (rw *rewriter) run() error {
	// Header: copy through the first Format row.
	for {
		content, term, ok, err := rw.next()
		if err != nil {
			return err
		}
		if !ok {
			return &ParseError{File: rw.opts.Name, Err: ErrMissingFormat}
		}
		if err := rw.write(content + term); err != nil {
			return err
		}
		if strings.HasPrefix(strings.TrimSpace(content), formatPrefix) {
			rw.format = parseFormatRow(strings.TrimSpace(content))
			break
		}
	}

	// Style table: rewrite Style rows through the [Events] header.
	for {
		content, term, ok, err := rw.next()
		if err != nil {
			return err
		}
		if !ok {
			return &ParseError{File: rw.opts.Name, Err: ErrMissingEvents}
		}
		trimmed := strings.TrimSpace(content)
		if strings.HasPrefix(trimmed, stylePrefix) {
			row, err := rw.rewriteStyle(trimmed)
			if err != nil {
				return err
			}
			rw.res.StyleRows++
			content = row
		}
		if err := rw.write(content + term); err != nil {
			return err
		}
		if trimmed == eventsHeader {
			break
		}
	}

	// Events: byte-for-byte.
	if _, err := io.Copy(rw.w, rw.r); err != nil {
		return fmt.Errorf("copy events of %s: %w", rw.opts.Name, err)
	}
	return nil
}

func (rw *rewriter) rewriteStyle(line string) (string, error) {
	if rw.opts.Capability == PlainTextOnly {
		if rw.opts.PlainTextStyle == "" {
			return DefaultPlainTextStyle, nil
		}
		return rw.opts.PlainTextStyle, nil
	}

	parts := strings.Split(strings.TrimPrefix(line, stylePrefix), ",")
	if len(parts) != len(rw.format.names) {
		return "", &ParseError{
			File:   rw.opts.Name,
			Line:   rw.lineNo,
			Detail: fmt.Sprintf("%d fields, Format row declares %d", len(parts), len(rw.format.names)),
			Err:    ErrFieldCount,
		}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if err := rw.addTo(parts, FieldFontsize, rw.opts.FontSizeDelta); err != nil {
		return "", err
	}
	if err := rw.addTo(parts, FieldOutline, rw.opts.OutlineDelta); err != nil {
		return "", err
	}
	return stylePrefix + " " + strings.Join(parts, ","), nil
}

func (rw *rewriter) addTo(parts []string, field string, delta Decimal) error {
	i, ok := rw.format.lookup(field)
	if !ok {
		return &FieldLookupError{File: rw.opts.Name, Line: rw.lineNo, Field: field, Format: rw.format.names}
	}
	v, err := ParseDecimal(parts[i])
	if err != nil {
		return &NumericFormatError{File: rw.opts.Name, Line: rw.lineNo, Field: field, Value: parts[i], Err: err}
	}
	sum, err := v.Add(delta)
	if err != nil {
		return &NumericFormatError{File: rw.opts.Name, Line: rw.lineNo, Field: field, Value: parts[i], Err: err}
	}
	parts[i] = sum.String()
	return nil
}
