package console

import (
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"pkt.systems/tryout"
	"pkt.systems/tryout/internal/ansi"
)

// StatusClass buckets a status code; anything outside 100-499 is "5xx".
func StatusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

type RenderOptions struct {
	// Format lays out JSON bodies; nil means tryout.DefaultOptions.
	Format *tryout.Options
	// NoHeaders omits the response headers.
	NoHeaders bool
	// Color highlights the status line by class.
	Color bool
}

// Render writes the status line, headers and body of resp. Bodies that are
// not JSON are written as received; an empty body is replaced by the status
// text.
func Render(w io.Writer, resp *Response, opts RenderOptions) error {
	format := opts.Format
	if format == nil {
		format = tryout.DefaultOptions
	}
	nl := format.Newline
	if nl == "" {
		nl = tryout.DefaultOptions.Newline
	}

	var b strings.Builder
	class := StatusClass(resp.StatusCode)
	if opts.Color {
		b.WriteString(ansi.StatusColor(int(class[0] - '0')))
	}
	b.WriteString("HTTP ")
	b.WriteString(statusText(resp))
	b.WriteString(" [")
	b.WriteString(class)
	b.WriteString("]")
	if opts.Color {
		b.WriteString(ansi.Reset)
	}
	if resp.Duration > 0 {
		b.WriteString(" ")
		b.WriteString(resp.Duration.Round(time.Millisecond).String())
	}
	b.WriteString(nl)

	if !opts.NoHeaders {
		keys := make([]string, 0, len(resp.Header))
		for k := range resp.Header {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, v := range resp.Header[k] {
				b.WriteString(k)
				b.WriteString(": ")
				b.WriteString(v)
				b.WriteString(nl)
			}
		}
	}
	b.WriteString(nl)

	switch {
	case len(resp.Body) == 0:
		b.WriteString(http.StatusText(resp.StatusCode))
		b.WriteString(nl)
	default:
		out, err := tryout.FormatText(resp.Body, format)
		switch {
		case err == nil:
			b.WriteString(out)
		case errors.Is(err, tryout.ErrParse):
			b.Write(resp.Body)
			if !strings.HasSuffix(string(resp.Body), "\n") {
				b.WriteString(nl)
			}
		default:
			return err
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func statusText(resp *Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return strconv.Itoa(resp.StatusCode) + " " + http.StatusText(resp.StatusCode)
}
