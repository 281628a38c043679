package subtitle

import (
	"errors"
	"fmt"
	"strings"
)

// Structural failures, wrapped in *ParseError.
var (
	ErrMissingFormat = errors.New("no Format row before end of file")
	ErrMissingEvents = errors.New("no [Events] section after the style table")
	ErrFieldCount    = errors.New("style row field count differs from Format row")
	ErrNotRewritable = errors.New("bitmap subtitles cannot be restyled")
)

// ParseError reports a structural problem in a subtitle file. Line is 0 when
// the problem is the end of input.
type ParseError struct {
	File   string
	Line   int
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.File)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// FieldLookupError means a required field is absent from the Format row.
type FieldLookupError struct {
	File   string
	Line   int
	Field  string
	Format []string
}

func (e *FieldLookupError) Error() string {
	return fmt.Sprintf("%s:%d: field %q not declared by Format row [%s]",
		e.File, e.Line, e.Field, strings.Join(e.Format, ", "))
}

// NumericFormatError means a style field that must be numeric is not, or
// is too large to be enlarged exactly.
type NumericFormatError struct {
	File  string
	Line  int
	Field string
	Value string
	Err   error
}

func (e *NumericFormatError) Error() string {
	if errors.Is(e.Err, errOverflow) {
		return fmt.Sprintf("%s:%d: field %s value %q is out of range", e.File, e.Line, e.Field, e.Value)
	}
	return fmt.Sprintf("%s:%d: field %s has non-numeric value %q", e.File, e.Line, e.Field, e.Value)
}

func (e *NumericFormatError) Unwrap() error { return e.Err }
