package console

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDo(t *testing.T) {
	var gotID, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get(RequestIDHeader)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, `{"error":"short and stout"}`)
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/brew", strings.NewReader("a=1"))
	require.NoError(t, err)

	c := NewClient(ClientOptions{Logger: zerolog.Nop()})
	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err, "non-2xx is a response, not an error")
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "418 I'm a teapot", resp.Status)
	assert.Equal(t, `{"error":"short and stout"}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "a=1", gotBody)
	assert.Equal(t, gotID, resp.RequestID)
	_, err = uuid.Parse(resp.RequestID)
	assert.NoError(t, err)
	assert.Greater(t, resp.Duration, time.Duration(0))
}

func TestClientDo_KeepsRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Header.Get(RequestIDHeader))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "fixed")
	resp, err := NewClient(ClientOptions{Logger: zerolog.Nop()}).Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "fixed", resp.RequestID)
	assert.Equal(t, "fixed", string(resp.Body))
}

func TestClientDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	_, err = NewClient(ClientOptions{Logger: zerolog.Nop(), Timeout: time.Second}).Do(context.Background(), req)
	assert.Error(t, err)
}

func TestClientDo_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	_, err = NewClient(ClientOptions{Logger: zerolog.Nop()}).Do(ctx, req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientDo_InsecureTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	_, err = NewClient(ClientOptions{Logger: zerolog.Nop()}).Do(context.Background(), req)
	assert.Error(t, err, "self-signed certificate must be rejected by default")

	req, err = http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := NewClient(ClientOptions{Logger: zerolog.Nop(), Insecure: true}).Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
}

func TestClientDo_VerboseTrace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_, _ = w.Write(b)
	}))
	defer srv.Close()

	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)
	req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(`{"msg":  "`+strings.Repeat("x", 200)+`"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer 0123456789")

	resp, err := NewClient(ClientOptions{Logger: logger, Verbose: true}).Do(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 212, "tracing must not consume the bodies")

	out := logs.String()
	assert.Contains(t, out, `"message":"req"`)
	assert.Contains(t, out, `"message":"resp"`)
	assert.Contains(t, out, `"message":"request complete"`)
	assert.Contains(t, out, "Authorization="+strings.Repeat("*", 14)+"789")
	assert.Contains(t, out, "Authorization="+redact("Bearer 0123456789"))
	assert.NotContains(t, out, "Bearer 0123456789")
	assert.Contains(t, out, "...")
}

type closeTrackingBody struct {
	io.Reader
	closed bool
}

func (b *closeTrackingBody) Close() error {
	b.closed = true
	return nil
}

type echoRoundTripper struct{}

func (echoRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	return &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: io.NopCloser(bytes.NewReader(b)), Request: req}, nil
}

func TestTraceTransport_ClosesRequestBody(t *testing.T) {
	body := &closeTrackingBody{Reader: strings.NewReader("payload")}
	req, err := http.NewRequest(http.MethodPost, "http://api.test/x", body)
	require.NoError(t, err)

	resp, err := traceTransport(echoRoundTripper{}, zerolog.Nop()).RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.True(t, body.closed, "original request body must be closed after it is buffered")
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "********90", redact("1234567890"))
	assert.Equal(t, "", redact(""))
}
