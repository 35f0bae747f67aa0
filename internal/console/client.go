package console

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries a per-request UUID so server logs can be matched
// with what the console sent.
const RequestIDHeader = "X-Request-Id"

const defaultTimeout = 30 * time.Second

type ClientOptions struct {
	Timeout time.Duration
	// Insecure skips TLS certificate verification.
	Insecure bool
	// Verbose logs each request and response at debug level.
	Verbose bool
	Logger  zerolog.Logger
	// Transport replaces http.DefaultTransport; Insecure is ignored when set.
	Transport http.RoundTripper
}

// Client sends requests built by BuildRequest.
type Client struct {
	http   *http.Client
	logger zerolog.Logger
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Duration   time.Duration
	RequestID  string
}

func NewClient(opts ClientOptions) *Client {
	rt := opts.Transport
	if rt == nil {
		base := http.DefaultTransport.(*http.Transport).Clone()
		if opts.Insecure {
			base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for local development servers
		}
		rt = base
	}
	if opts.Verbose {
		rt = traceTransport(rt, opts.Logger)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:   &http.Client{Transport: rt, Timeout: timeout},
		logger: opts.Logger,
	}
}

// Do sends req and reads the whole body. Non-2xx statuses are returned as
// responses, not errors.
func (c *Client) Do(ctx context.Context, req *http.Request) (*Response, error) {
	req = req.WithContext(ctx)
	id := req.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
		req.Header.Set(RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("request_id", id).Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	took := time.Since(start)
	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Int("status", resp.StatusCode).
		Dur("took", took).
		Str("request_id", id).
		Msg("request complete")

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       body,
		Duration:   took,
		RequestID:  id,
	}, nil
}
