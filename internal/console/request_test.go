package console

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEndpoint(t *testing.T) *Endpoint {
	t.Helper()
	c, err := ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	e, err := c.Lookup("/api/users")
	require.NoError(t, err)
	return e
}

func TestBuildRequest_QueryDefaultsAndToken(t *testing.T) {
	store := &MemoryStore{}
	require.NoError(t, store.Set("tok"))

	req, err := BuildRequest(context.Background(), Input{
		BaseURL:     "http://api.test/",
		Endpoint:    testEndpoint(t),
		Method:      MethodGet,
		Params:      map[string]string{"extra": "x y"},
		Credentials: store,
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "http://api.test/api/users?extra=x+y&page=1", req.URL.String())
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Nil(t, req.Body)
}

func TestBuildRequest_MissingFields(t *testing.T) {
	_, err := BuildRequest(context.Background(), Input{
		BaseURL:  "http://api.test",
		Endpoint: testEndpoint(t),
		Method:   MethodPost,
		Params:   map[string]string{"name": " "},
	})
	var missing *MissingFieldsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"Authorization", "name"}, missing.Fields)
	assert.EqualError(t, err, "missing required fields: Authorization, name")
}

func TestBuildRequest_UserHeaderOverridesToken(t *testing.T) {
	store := &MemoryStore{}
	require.NoError(t, store.Set("tok"))
	req, err := BuildRequest(context.Background(), Input{
		BaseURL:     "http://api.test",
		Endpoint:    testEndpoint(t),
		Method:      MethodDelete,
		Params:      map[string]string{"id": "7"},
		Headers:     map[string]string{"Authorization": "Basic Zm9v", "Accept": "text/plain"},
		Credentials: store,
	})
	require.NoError(t, err)
	assert.Equal(t, "Basic Zm9v", req.Header.Get("Authorization"))
	assert.Equal(t, "text/plain", req.Header.Get("Accept"))
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "id=7", string(body))
}

func TestBuildRequest_JSONBody(t *testing.T) {
	e := &Endpoint{
		Path: "/items",
		Params: map[Method]ParameterList{MethodPut: {
			{FieldName: "item.name", Required: true},
			{FieldName: "item.count", Default: "3"},
			{FieldName: "tags", Default: "['a','b']"},
			{FieldName: "note", Default: "it's fine"},
		}},
		Headers: map[Method]ParameterList{MethodPut: nil},
	}
	req, err := BuildRequest(context.Background(), Input{
		BaseURL:  "https://api.test",
		Endpoint: e,
		Method:   MethodPut,
		Params:   map[string]string{"item.name": "box"},
		BodyMode: BodyJSON,
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"item":{"name":"box","count":3},"tags":["a","b"],"note":"it's fine"}`, string(body))
}

func TestBuildRequest_Multipart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, os.WriteFile(path, []byte("PNG"), 0o600))

	req, err := BuildRequest(context.Background(), Input{
		BaseURL:  "http://api.test",
		Endpoint: testEndpoint(t),
		Method:   MethodPost,
		Params:   map[string]string{"name": "ann"},
		Headers:  map[string]string{"Authorization": "Bearer x"},
		Files:    map[string]string{"avatar": path},
	})
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	mr := multipart.NewReader(req.Body, params["boundary"])
	form, err := mr.ReadForm(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"ann"}, form.Value["name"])
	require.Len(t, form.File["avatar"], 1)
	assert.Equal(t, "avatar.png", form.File["avatar"][0].Filename)

	_, err = BuildRequest(context.Background(), Input{
		BaseURL:  "http://api.test",
		Endpoint: testEndpoint(t),
		Method:   MethodPost,
		Params:   map[string]string{"name": "ann"},
		Headers:  map[string]string{"Authorization": "Bearer x"},
		Files:    map[string]string{"avatar": path},
		BodyMode: BodyJSON,
	})
	assert.ErrorIs(t, err, ErrFilesNeedMultipart)
}

func TestBuildRequest_JSONWithUnsetOptionalFile(t *testing.T) {
	req, err := BuildRequest(context.Background(), Input{
		BaseURL:  "http://api.test",
		Endpoint: testEndpoint(t),
		Method:   MethodPost,
		Params:   map[string]string{"name": "ann"},
		Headers:  map[string]string{"Authorization": "Bearer x"},
		BodyMode: BodyJSON,
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"ann"}`, string(body))
}

func TestBuildRequest_FormWithUnsetOptionalFileIsMultipart(t *testing.T) {
	req, err := BuildRequest(context.Background(), Input{
		BaseURL:  "http://api.test",
		Endpoint: testEndpoint(t),
		Method:   MethodPost,
		Params:   map[string]string{"name": "ann"},
		Headers:  map[string]string{"Authorization": "Bearer x"},
	})
	require.NoError(t, err)
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)
}

func TestBuildRequest_Errors(t *testing.T) {
	e := testEndpoint(t)
	_, err := BuildRequest(context.Background(), Input{BaseURL: "http://api.test", Method: MethodGet})
	assert.Error(t, err)

	_, err = BuildRequest(context.Background(), Input{BaseURL: "http://api.test", Endpoint: e, Method: MethodPatch})
	assert.ErrorIs(t, err, ErrMethodNotAllowed)

	hdr := map[string]string{"Authorization": "Bearer x"}
	_, err = BuildRequest(context.Background(), Input{BaseURL: "", Endpoint: e, Method: MethodGet, Headers: hdr})
	assert.Error(t, err)

	_, err = BuildRequest(context.Background(), Input{BaseURL: "ftp://api.test", Endpoint: e, Method: MethodGet, Headers: hdr})
	assert.Error(t, err)

	_, err = BuildRequest(context.Background(), Input{
		BaseURL:  "http://api.test",
		Endpoint: e,
		Method:   MethodPost,
		Params:   map[string]string{"name": "ann"},
		Headers:  hdr,
		Files:    map[string]string{"avatar": filepath.Join(t.TempDir(), "missing")},
	})
	assert.Error(t, err)
}
