package header

import (
	"fmt"
	"strings"

	"golang.org/x/net/http/httpguts"
)

const (
	DefaultMethod = "GET"
	DefaultPath   = "/"
	Version11     = "HTTP/1.1"
)

// NewRequest builds a request descriptor. An empty method or target falls back
// to GET and "/".
func NewRequest(method, target string, fields ...Field) (RequestHeader, error) {
	if method == "" {
		method = DefaultMethod
	}
	if target == "" {
		target = DefaultPath
	}

	req := &requestHeader{
		method:  method,
		path:    target,
		version: Version11,
		fields:  append(make([]Field, 0, len(fields)), fields...),
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// ParseField splits a "Name: value" line.
func ParseField(line string) (Field, error) {
	name, value, ok := strings.Cut(line, ":")
	if !ok {
		return Field{}, fmt.Errorf("%w: header %q has no colon", ErrInvalidRequest, line)
	}
	return Field{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)}, nil
}

func (req *requestHeader) Value(key string) string {
	return lookup(req.fields, key)
}

func (req *requestHeader) Add(key string, value string) {
	req.fields = append(req.fields, Field{Name: key, Value: value})
}

// Clone returns a descriptor that shares nothing with req.
func (req *requestHeader) Clone() RequestHeader {
	clone := *req
	clone.fields = append([]Field(nil), req.fields...)
	return &clone
}

func (req *requestHeader) Fields() []Field {
	return append([]Field(nil), req.fields...)
}

func (req *requestHeader) Method() string {
	return req.method
}

func (req *requestHeader) Path() string {
	return req.path
}

func (req *requestHeader) Version() string {
	return req.version
}

func (req *requestHeader) Validate() error {
	if !httpguts.ValidHeaderFieldName(req.method) {
		return fmt.Errorf("%w: invalid method %q", ErrInvalidRequest, req.method)
	}
	if !validTarget(req.path) {
		return fmt.Errorf("%w: invalid request target %q", ErrInvalidRequest, req.path)
	}
	for _, f := range req.fields {
		if !httpguts.ValidHeaderFieldName(f.Name) {
			return fmt.Errorf("%w: invalid header name %q", ErrInvalidRequest, f.Name)
		}
		if !httpguts.ValidHeaderFieldValue(f.Value) {
			return fmt.Errorf("%w: invalid value for header %q", ErrInvalidRequest, f.Name)
		}
	}
	return nil
}

// Finalize serializes the request line, the fields in order and the blank
// line that ends the head.
func (req *requestHeader) Finalize() []byte {
	startLine := req.method + " " + req.path + " " + req.version
	return finalize([]byte(startLine), req.fields)
}
