// Command tryout formats JSON and exercises documented API endpoints from the
// terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

const (
	envBaseURL = "TRYOUT_BASE_URL"
	envCatalog = "TRYOUT_CATALOG"
)

// env is the process boundary; tests substitute buffers and a fake getenv.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, getenv: os.Getenv})
	stop()
	os.Exit(code)
}

var commands = map[string]func(context.Context, []string, env) error{
	"fmt":       runFmt,
	"call":      runCall,
	"endpoints": runEndpoints,
	"token":     runToken,
}

func run(ctx context.Context, args []string, e env) int {
	if len(args) == 0 {
		usage(e.stderr)
		return exitUsage
	}
	name, rest := args[0], args[1:]
	if name == "-h" || name == "--help" || name == "help" {
		usage(e.stdout)
		return exitOK
	}
	cmd, ok := commands[name]
	if !ok {
		// Bare file arguments format, as `tryout fmt` would.
		cmd, rest = runFmt, args
	}
	err := cmd(ctx, rest, e)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, pflag.ErrHelp):
		return exitOK
	}
	fmt.Fprintf(e.stderr, "tryout: %v\n", err)
	var ue usageError
	if errors.As(err, &ue) {
		return exitUsage
	}
	return exitRuntime
}

func usage(w io.Writer) {
	fmt.Fprint(w, strings.TrimLeft(`
Usage: tryout <command> [flags] [args]

Commands:
  fmt [file|url|-...]   pretty-print JSON documents
  call <path>           send a request to a documented endpoint
  endpoints             list the endpoints of a catalog
  token show|set|clear  manage the stored bearer token

Run "tryout <command> --help" for command flags.
`, "\n"))
}

func newFlagSet(name string, e env) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.SortFlags = false
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return usageError{err}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorEnabled honours --no-color and NO_COLOR before asking the terminal.
func colorEnabled(w io.Writer, noColor bool, e env) bool {
	if noColor || e.getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(w)
}

func newLogger(e env, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: e.stderr, NoColor: !colorEnabled(e.stderr, false, e)}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// envDefault returns the environment value for key, or def.
func envDefault(e env, key, def string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return def
}
