package console

import (
	"bytes"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/motemen/go-loghttp"
	"github.com/rs/zerolog"
)

const traceBodyLimit = 100

// traceTransport wraps next so every exchange is logged at debug level with
// the Authorization header redacted.
func traceTransport(next http.RoundTripper, logger zerolog.Logger) http.RoundTripper {
	return &loghttp.Transport{
		Transport: next,
		LogRequest: func(req *http.Request) {
			headers := req.Header.Clone()
			if auth := headers.Get(headerAuthorization); auth != "" {
				headers.Set(headerAuthorization, redact(auth))
			}
			var body []byte
			if req.Body != nil && req.Body != http.NoBody {
				b, err := io.ReadAll(req.Body)
				if err != nil {
					logger.Error().Err(err).Msg("read request body for trace")
				}
				if err := req.Body.Close(); err != nil {
					logger.Error().Err(err).Msg("close request body for trace")
				}
				body = b
				req.Body = io.NopCloser(bytes.NewReader(b))
			}
			logger.Debug().
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Str("headers", flattenHeaders(headers)).
				Str("body", traceBody(body)).
				Msg("req")
		},
		LogResponse: func(resp *http.Response) {
			b, err := io.ReadAll(resp.Body)
			if err != nil {
				logger.Error().Err(err).Msg("read response body for trace")
			}
			resp.Body = io.NopCloser(bytes.NewReader(b))
			logger.Debug().
				Int("status", resp.StatusCode).
				Str("headers", flattenHeaders(resp.Header)).
				Str("body", traceBody(b)).
				Msg("resp")
		},
	}
}

// redact keeps the last fifth of a secret.
func redact(s string) string {
	return strings.Repeat("*", len(s)-len(s)/5) + s[len(s)-len(s)/5:]
}

func flattenHeaders(h http.Header) string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.Join(h[k], ","))
	}
	return strings.Join(parts, " ")
}

// traceBody folds whitespace and truncates long bodies.
func traceBody(b []byte) string {
	s := strings.Join(strings.Fields(string(b)), " ")
	if len(s) > traceBodyLimit {
		return s[:traceBodyLimit] + "..."
	}
	return s
}
