package main

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAcceptHeader = "application/json"

type urlOptions struct {
	acceptAll bool
	insecure  bool
}

// parseHTTPURL recognises http and https inputs; anything else is a path.
func parseHTTPURL(s string) (*url.URL, bool, error) {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return nil, false, nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, true, fmt.Errorf("parse %s: %w", s, err)
	}
	if u.Host == "" {
		return nil, true, fmt.Errorf("parse %s: missing host", s)
	}
	return u, true, nil
}

// openURL GETs u; the caller reads the body and closes it.
func openURL(u *url.URL, opts urlOptions) (io.Reader, io.Closer, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // -k
	}
	client := &http.Client{Transport: transport, Timeout: time.Minute}

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, err
	}
	accept := defaultAcceptHeader
	if opts.acceptAll {
		accept = "*/*"
	}
	req.Header.Set("Accept", accept)

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, nil, fmt.Errorf("GET %s: %s", u.Redacted(), resp.Status)
	}
	return resp.Body, resp.Body, nil
}
