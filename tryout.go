package tryout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"
)

// Options controls the layout produced by Format, FormatText and FormatTo.
type Options struct {
	// NewlineAfterColonIfBeforeBraceOrBracket moves the opening bracket of a
	// nested object or array onto its own line below the key. Default false,
	// which keeps `"key":{` together.
	NewlineAfterColonIfBeforeBraceOrBracket bool
	// SpaceAfterColon renders key separators as ": " instead of ":". Default
	// false.
	SpaceAfterColon bool
	// Indent is one level of indentation. Empty means four spaces.
	Indent string
	// Newline terminates every line. Empty means CRLF.
	Newline string
	// Prefix is written at the start of every line, before the indentation.
	Prefix string
	// Palette names the colour palette, see PaletteNames. Empty or "none"
	// disables colouring.
	Palette string
}

const (
	defaultIndent  = "    "
	defaultNewline = "\r\n"
)

// DefaultOptions holds the fallback layout configuration.
var DefaultOptions = &Options{
	Indent:  defaultIndent,
	Newline: defaultNewline,
	Palette: paletteNoneName,
}

// ErrParse is matched by errors.Is for every *ParseError.
var ErrParse = errors.New("json: invalid input")

// ParseError reports JSON text that is not syntactically valid.
type ParseError struct {
	// Offset is the number of input bytes consumed when the error was found.
	Offset int64
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("json: %s (offset %d)", e.Msg, e.Offset)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Format marshals v with encoding/json and lays it out. It fails only when v
// cannot be represented as JSON (channels, functions, NaN and the like).
func Format(v any, opts *Options) (string, error) {
	var src bytes.Buffer
	enc := json.NewEncoder(&src)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("json: encode value: %w", err)
	}
	return formatDocument(src.Bytes(), opts)
}

// FormatText validates src as a single JSON document and lays it out.
// Malformed input returns a *ParseError.
func FormatText(src []byte, opts *Options) (string, error) {
	return formatDocument(src, opts)
}

// FormatTo lays out every JSON document read from r and writes the result to
// w. Colours from opts.Palette are only emitted when w is a terminal. Data
// following a complete value is parsed as the next document.
func FormatTo(w io.Writer, r io.Reader, opts *Options) error {
	pal, err := resolvePalette(opts, isTerminal(w))
	if err != nil {
		return err
	}
	p := acquireParser()
	defer releaseParser(p)
	p.reset(r, w, opts, pal)

	for {
		err := p.scanner.skipSpace()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := p.parseDocument(); err != nil {
			return err
		}
	}
}

func formatDocument(src []byte, opts *Options) (string, error) {
	pal, err := resolvePalette(opts, true)
	if err != nil {
		return "", err
	}
	var out strings.Builder
	out.Grow(len(src) * 2)

	p := acquireParser()
	defer releaseParser(p)
	p.sliceReader.Reset(src)
	p.reset(&p.sliceReader, &out, opts, pal)

	if err := p.parseDocument(); err != nil {
		return "", err
	}
	switch err := p.scanner.skipSpace(); err {
	case io.EOF:
		return out.String(), nil
	case nil:
		return "", p.errorf("unexpected data after top-level value")
	default:
		return "", err
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
