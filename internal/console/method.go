// Package console drives the "try it out" flow of an API documentation page:
// it loads the documented endpoints, builds a request from field values,
// sends it and renders the response with the body laid out by tryout.
package console

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Method is an HTTP method an endpoint can document fields for.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodPatch   Method = http.MethodPatch
	MethodDelete  Method = http.MethodDelete
	MethodOptions Method = http.MethodOptions
	MethodHead    Method = http.MethodHead
)

// Methods lists every supported method in display order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodOptions, MethodHead}

var ErrUnknownMethod = errors.New("unknown HTTP method")

// ParseMethod resolves s case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownMethod, s)
}

func (m Method) String() string {
	return string(m)
}

// HasBody reports whether fields travel in the request body rather than the
// query string.
func (m Method) HasBody() bool {
	return m != MethodGet && m != MethodHead
}

func methodRank(m Method) int {
	for i, known := range Methods {
		if m == known {
			return i
		}
	}
	return len(Methods)
}
