package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"pkt.systems/tryout"
)

// layoutFlags are shared by fmt and call.
type layoutFlags struct {
	newlineBeforeBracket bool
	spaceAfterColon      bool
	indent               string
	lf                   bool
	palette              string
	noColor              bool
}

func (l *layoutFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&l.newlineBeforeBracket, "newline-before-bracket", false, "put the opening bracket of a nested value on its own line")
	fs.BoolVar(&l.spaceAfterColon, "space-after-colon", false, `separate keys and values with ": "`)
	fs.StringVar(&l.indent, "indent", "    ", "indentation unit")
	fs.BoolVar(&l.lf, "lf", false, "end lines with LF instead of CRLF")
	fs.StringVar(&l.palette, "palette", "default", "colour palette: "+strings.Join(tryout.PaletteNames(), ", "))
	fs.BoolVar(&l.noColor, "no-color", false, "disable colorized output, even when writing to a TTY")
}

func (l *layoutFlags) options(w io.Writer, e env) (*tryout.Options, error) {
	palette := strings.ToLower(strings.TrimSpace(l.palette))
	if !slices.Contains(tryout.PaletteNames(), palette) {
		return nil, usagef("unknown palette %q (use one of: %s)", l.palette, strings.Join(tryout.PaletteNames(), ", "))
	}
	if !colorEnabled(w, l.noColor, e) {
		palette = "none"
	}
	opts := &tryout.Options{
		NewlineAfterColonIfBeforeBraceOrBracket: l.newlineBeforeBracket,
		SpaceAfterColon:                         l.spaceAfterColon,
		Indent:                                  l.indent,
		Palette:                                 palette,
	}
	if l.lf {
		opts.Newline = "\n"
	}
	return opts, nil
}

func runFmt(_ context.Context, args []string, e env) error {
	fs := newFlagSet("fmt", e)
	var (
		layout    layoutFlags
		compact   bool
		acceptAll bool
		insecure  bool
	)
	layout.register(fs)
	fs.BoolVar(&compact, "compact", false, "write each document on one line instead")
	fs.BoolVar(&acceptAll, "accept-all", false, `send "Accept: */*" when reading URLs`)
	fs.BoolVarP(&insecure, "insecure", "k", false, "skip TLS verification when reading URLs")
	fs.Usage = func() {
		fmt.Fprintln(e.stderr, "Usage: tryout fmt [flags] [file|url|-...]")
		fs.PrintDefaults()
	}
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	opts, err := layout.options(e.stdout, e)
	if err != nil {
		return err
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	for _, in := range inputs {
		r, closer, err := openInput(in, e, urlOptions{acceptAll: acceptAll, insecure: insecure})
		if err != nil {
			return err
		}
		if compact {
			err = tryout.CompactTo(e.stdout, r)
		} else {
			err = tryout.FormatTo(e.stdout, r, opts)
		}
		if closer != nil {
			closer.Close()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
	}
	return nil
}

func openInput(name string, e env, uo urlOptions) (io.Reader, io.Closer, error) {
	if name == "-" {
		return e.stdin, nil, nil
	}
	u, isURL, err := parseHTTPURL(name)
	if err != nil {
		return nil, nil, err
	}
	if isURL {
		return openURL(u, uo)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}
