package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParamTypeFile marks a field that uploads a local file.
const ParamTypeFile = "file"

// Param documents one request field (query/body parameter or header).
type Param struct {
	FieldName   string `json:"field_name" yaml:"field_name"`
	Required    bool   `json:"required" yaml:"required"`
	ParamType   string `json:"param_type" yaml:"param_type"`
	Default     string `json:"default" yaml:"default"`
	Description string `json:"description" yaml:"description"`
}

// IsFile reports whether the field is a file upload.
func (p Param) IsFile() bool {
	return strings.EqualFold(p.ParamType, ParamTypeFile)
}

type ParameterList []Param

// HasFile reports whether any field in the list is a file upload.
func (l ParameterList) HasFile() bool {
	for _, p := range l {
		if p.IsFile() {
			return true
		}
	}
	return false
}

// Endpoint is a documented route with its fields per method.
type Endpoint struct {
	Path    string
	Desc    string
	Params  map[Method]ParameterList
	Headers map[Method]ParameterList
}

var (
	ErrEndpointNotFound = errors.New("endpoint not found")
	ErrMethodNotAllowed = errors.New("method not documented for endpoint")
)

// Methods returns the documented methods in display order.
func (e *Endpoint) Methods() []Method {
	out := make([]Method, 0, len(e.Params))
	for m := range e.Params {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return methodRank(out[i]) < methodRank(out[j]) })
	return out
}

// Fields returns the parameter and header lists for m.
func (e *Endpoint) Fields(m Method) (params, headers ParameterList, err error) {
	params, ok := e.Params[m]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s %s", ErrMethodNotAllowed, m, e.Path)
	}
	return params, e.Headers[m], nil
}

// Catalog is the set of documented endpoints.
type Catalog struct {
	Endpoints []*Endpoint
	index     map[string]*Endpoint
}

type catalogFile struct {
	GlobalParams  ParameterList  `yaml:"global_params"`
	GlobalHeaders ParameterList  `yaml:"global_headers"`
	Endpoints     []endpointFile `yaml:"endpoints"`
}

type endpointFile struct {
	Path    string                   `yaml:"path"`
	Desc    string                   `yaml:"desc"`
	Params  map[string]ParameterList `yaml:"params"`
	Headers map[string]ParameterList `yaml:"headers"`
}

// LoadCatalog reads a catalog from a YAML or JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes a catalog document. JSON is accepted as YAML.
//
// Global params and headers are appended to every documented method, every
// endpoint gains an OPTIONS entry with no fields, and entries sharing a path
// are merged with the first declaration of a method winning.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw catalogFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{index: make(map[string]*Endpoint)}
	for i, ef := range raw.Endpoints {
		path := normalizePath(ef.Path)
		if path == "" {
			return nil, fmt.Errorf("endpoint %d: missing path", i)
		}
		params, err := methodLists(ef.Params, raw.GlobalParams)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: params: %w", path, err)
		}
		headers, err := methodLists(ef.Headers, raw.GlobalHeaders)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: headers: %w", path, err)
		}
		for m := range headers {
			if _, ok := params[m]; !ok {
				params[m] = append(ParameterList{}, raw.GlobalParams...)
			}
		}
		for m := range params {
			if _, ok := headers[m]; !ok {
				headers[m] = append(ParameterList{}, raw.GlobalHeaders...)
			}
		}
		if len(params) == 0 {
			return nil, fmt.Errorf("endpoint %s: no methods documented", path)
		}

		e, ok := c.index[path]
		if !ok {
			e = &Endpoint{
				Path:    path,
				Desc:    ef.Desc,
				Params:  make(map[Method]ParameterList),
				Headers: make(map[Method]ParameterList),
			}
			c.index[path] = e
			c.Endpoints = append(c.Endpoints, e)
		}
		for m, l := range params {
			if _, exists := e.Params[m]; exists {
				continue
			}
			e.Params[m] = l
			e.Headers[m] = headers[m]
		}
	}
	for _, e := range c.Endpoints {
		if _, ok := e.Params[MethodOptions]; !ok {
			e.Params[MethodOptions] = ParameterList{}
			e.Headers[MethodOptions] = ParameterList{}
		}
	}
	return c, nil
}

func methodLists(in map[string]ParameterList, global ParameterList) (map[Method]ParameterList, error) {
	out := make(map[Method]ParameterList, len(in))
	for name, l := range in {
		m, err := ParseMethod(name)
		if err != nil {
			return nil, err
		}
		merged := make(ParameterList, 0, len(l)+len(global))
		merged = append(merged, l...)
		merged = append(merged, global...)
		for _, p := range merged {
			if strings.TrimSpace(p.FieldName) == "" {
				return nil, fmt.Errorf("%s: field without field_name", m)
			}
		}
		out[m] = merged
	}
	return out, nil
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// Lookup finds the endpoint for path; "users", "/users" and "/users/" all
// name the same route.
func (c *Catalog) Lookup(path string) (*Endpoint, error) {
	if e, ok := c.index[normalizePath(path)]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrEndpointNotFound, path)
}

// AdHocEndpoint describes an undocumented route. Its only field is an
// optional Authorization header so a stored token still applies.
func AdHocEndpoint(path string, m Method) *Endpoint {
	auth := ParameterList{{FieldName: headerAuthorization, ParamType: "str"}}
	return &Endpoint{
		Path:    normalizePath(path),
		Params:  map[Method]ParameterList{m: {}, MethodOptions: {}},
		Headers: map[Method]ParameterList{m: auth, MethodOptions: {}},
	}
}

// DecodeMethodParams decodes the {"data": {"GET": [...]}} blobs documentation
// pages embed for each endpoint button.
func DecodeMethodParams(data []byte) (map[Method]ParameterList, error) {
	var blob struct {
		Data map[string]ParameterList `json:"data"`
	}
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("decode method params: %w", err)
	}
	return methodLists(blob.Data, nil)
}
