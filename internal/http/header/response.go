package header

import (
	"bytes"
	"fmt"
)

// NewResponse parses a complete response head, terminator included. The whole
// input has to be consumed.
func NewResponse(headerData []byte) (ResponseHeader, error) {
	lineEnd := bytes.Index(headerData, crlf)
	if lineEnd == -1 {
		return nil, fmt.Errorf("%w: no CRLF found in start line", ErrMalformedHead)
	}

	startLine := headerData[:lineEnd]
	version, code, reason, err := parseStatusLine(startLine)
	if err != nil {
		return nil, err
	}

	fields, err := parseFieldLines(headerData[lineEnd+2:])
	if err != nil {
		return nil, err
	}

	return &responseHeader{
		version:    version,
		statusCode: code,
		reason:     reason,
		fields:     fields,
	}, nil
}

func (resp *responseHeader) Value(key string) string {
	return lookup(resp.fields, key)
}

func (resp *responseHeader) Fields() []Field {
	return append([]Field(nil), resp.fields...)
}

func (resp *responseHeader) Version() string {
	return resp.version
}

func (resp *responseHeader) StatusCode() int {
	return resp.statusCode
}

func (resp *responseHeader) Reason() string {
	return resp.reason
}

func (resp *responseHeader) Class() StatusClass {
	return classify(resp.statusCode)
}

// Success reports whether the status is informational or successful.
func (resp *responseHeader) Success() bool {
	class := resp.Class()
	return class == ClassInformational || class == ClassSuccess
}
