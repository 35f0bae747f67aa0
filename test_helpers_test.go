package tryout

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"regexp"
)

type noStringWriter struct {
	buf bytes.Buffer
}

func (w *noStringWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *noStringWriter) String() string {
	return w.buf.String()
}

type errReader struct{}

func (errReader) Read(_ []byte) (int, error) {
	return 0, errors.New("read err")
}

type errWriter struct{}

func (errWriter) Write(_ []byte) (int, error) {
	return 0, errors.New("write err")
}

type failAfterStringWriter struct {
	count int
	fail  int
	buf   bytes.Buffer
}

func (w *failAfterStringWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *failAfterStringWriter) WriteString(s string) (int, error) {
	w.count++
	if w.count > w.fail {
		return 0, errors.New("write string err")
	}
	return w.buf.WriteString(s)
}

type zeroReader struct {
	called bool
}

func (r *zeroReader) Read(_ []byte) (int, error) {
	if r.called {
		return 0, io.EOF
	}
	r.called = true
	return 0, nil
}

var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

func stripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

func decodeSingleJSON(data []byte) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, false
	}
	return v, true
}

func decodeJSONStream(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	for {
		var v any
		if err := dec.Decode(&v); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
