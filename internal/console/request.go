package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/sjson"
)

// BodyMode selects how fields are encoded for methods that carry a body.
type BodyMode int

const (
	// BodyForm sends application/x-www-form-urlencoded, or multipart/form-data
	// when the method documents a file field.
	BodyForm BodyMode = iota
	// BodyJSON sends a JSON object; dotted field names become nested objects.
	BodyJSON
)

// Input is everything needed to build one request.
type Input struct {
	BaseURL  string
	Endpoint *Endpoint
	Method   Method

	// Params and Headers hold user-entered values keyed by field name. A
	// present key overrides the field default, even when empty. Keys that
	// are not documented are sent as well.
	Params  map[string]string
	Headers map[string]string
	// Files maps file fields to local paths.
	Files map[string]string

	Credentials CredentialStore
	BodyMode    BodyMode
}

// MissingFieldsError lists required fields that ended up empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

var ErrFilesNeedMultipart = errors.New("file fields cannot be sent as a JSON body")

const (
	headerAuthorization = "Authorization"
	headerAccept        = "Accept"
	headerContentType   = "Content-Type"
	defaultAccept       = "application/json"
	formContentType     = "application/x-www-form-urlencoded"
	jsonContentType     = "application/json"
)

type field struct {
	name  string
	value string
	file  string
}

// BuildRequest resolves every field of in.Method against the user values and
// defaults and returns a ready to send request. All missing required fields
// are reported together in a *MissingFieldsError.
func BuildRequest(ctx context.Context, in Input) (*http.Request, error) {
	if in.Endpoint == nil {
		return nil, errors.New("build request: no endpoint")
	}
	params, headers, err := in.Endpoint.Fields(in.Method)
	if err != nil {
		return nil, err
	}

	var token Token
	if in.Credentials != nil {
		t, ok, err := in.Credentials.Get()
		if err != nil {
			return nil, err
		}
		if ok {
			token = t
		}
	}

	var missing []string
	hdrFields := resolve(headers, in.Headers, nil, func(p Param) string {
		if token != "" && strings.EqualFold(p.FieldName, headerAuthorization) {
			return "Bearer " + string(token)
		}
		return p.Default
	}, &missing)
	paramFields := resolve(params, in.Params, in.Files, func(p Param) string { return p.Default }, &missing)
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	target, err := endpointURL(in.BaseURL, in.Endpoint.Path)
	if err != nil {
		return nil, err
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case !in.Method.HasBody():
		q := target.Query()
		for _, f := range paramFields {
			q.Add(f.name, f.value)
		}
		target.RawQuery = q.Encode()
	case hasFile(paramFields) && in.BodyMode == BodyJSON:
		return nil, ErrFilesNeedMultipart
	case hasFile(paramFields) || (in.BodyMode != BodyJSON && params.HasFile()):
		buf, ct, err := multipartBody(paramFields)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case in.BodyMode == BodyJSON:
		buf, err := jsonBody(paramFields)
		if err != nil {
			return nil, err
		}
		body, contentType = bytes.NewReader(buf), jsonContentType
	default:
		form := url.Values{}
		for _, f := range paramFields {
			form.Add(f.name, f.value)
		}
		body, contentType = strings.NewReader(form.Encode()), formContentType
	}

	req, err := http.NewRequestWithContext(ctx, string(in.Method), target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set(headerContentType, contentType)
	}
	for _, f := range hdrFields {
		if f.value == "" {
			continue
		}
		req.Header.Set(f.name, f.value)
	}
	if req.Header.Get(headerAccept) == "" {
		req.Header.Set(headerAccept, defaultAccept)
	}
	return req, nil
}

// resolve applies user values over defaults in documented order, then
// appends undocumented values sorted by name.
func resolve(list ParameterList, values, files map[string]string, def func(Param) string, missing *[]string) []field {
	out := make([]field, 0, len(list)+len(values))
	seen := make(map[string]bool, len(list))
	for _, p := range list {
		if seen[p.FieldName] {
			continue
		}
		seen[p.FieldName] = true
		if p.IsFile() {
			path := files[p.FieldName]
			if path == "" {
				if p.Required {
					*missing = append(*missing, p.FieldName)
				}
				continue
			}
			out = append(out, field{name: p.FieldName, file: path})
			continue
		}
		v, ok := values[p.FieldName]
		if !ok {
			v = def(p)
		}
		if p.Required && strings.TrimSpace(v) == "" {
			*missing = append(*missing, p.FieldName)
			continue
		}
		out = append(out, field{name: p.FieldName, value: v})
	}

	extra := make([]string, 0)
	for name := range values {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	for name := range files {
		if !seen[name] {
			if _, dup := values[name]; !dup {
				extra = append(extra, name)
			}
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		if path, ok := files[name]; ok {
			out = append(out, field{name: name, file: path})
			continue
		}
		out = append(out, field{name: name, value: values[name]})
	}
	return out
}

func hasFile(fields []field) bool {
	for _, f := range fields {
		if f.file != "" {
			return true
		}
	}
	return false
}

func endpointURL(base, path string) (*url.URL, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil, errors.New("build request: empty base URL")
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + path)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("build request: unsupported scheme %q", u.Scheme)
	}
	return u, nil
}

func jsonBody(fields []field) ([]byte, error) {
	body := []byte("{}")
	var err error
	for _, f := range fields {
		if raw, ok := jsonFieldValue(f.value); ok {
			body, err = sjson.SetRawBytes(body, f.name, raw)
		} else {
			body, err = sjson.SetBytes(body, f.name, f.value)
		}
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", f.name, err)
		}
	}
	return body, nil
}

// jsonFieldValue treats a value that already is JSON as a literal. Object and
// array values may use single quotes, as typed into a browser form.
func jsonFieldValue(v string) ([]byte, bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil, false
	}
	if s[0] == '{' || s[0] == '[' {
		s = strings.ReplaceAll(s, "'", `"`)
	}
	if !json.Valid([]byte(s)) {
		return nil, false
	}
	return []byte(s), true
}

func multipartBody(fields []field) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		if f.file == "" {
			if err := mw.WriteField(f.name, f.value); err != nil {
				return nil, "", err
			}
			continue
		}
		if err := attachFile(mw, f.name, f.file); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func attachFile(mw *multipart.Writer, name, path string) error {
	fh, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("attach %s: %w", name, err)
	}
	defer fh.Close()
	part, err := mw.CreateFormFile(name, filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, fh); err != nil {
		return fmt.Errorf("attach %s: %w", name, err)
	}
	return nil
}
