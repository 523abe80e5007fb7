package header

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var crlf = []byte("\r\n")

func lookup(fields []Field, key string) string {
	for _, f := range fields {
		if strings.EqualFold(f.Name, key) {
			return f.Value
		}
	}
	return ""
}

func parseStatusLine(line []byte) (version string, code int, reason string, err error) {
	if len(line) < 12 || !bytes.HasPrefix(line, []byte("HTTP/1.")) {
		return "", 0, "", fmt.Errorf("%w: invalid status line %q", ErrMalformedHead, line)
	}
	if line[7] < '0' || line[7] > '9' || line[8] != ' ' {
		return "", 0, "", fmt.Errorf("%w: invalid HTTP version in %q", ErrMalformedHead, line)
	}
	version = string(line[:8])

	for _, c := range line[9:12] {
		if c < '0' || c > '9' {
			return "", 0, "", fmt.Errorf("%w: invalid status code in %q", ErrMalformedHead, line)
		}
	}
	code = int(line[9]-'0')*100 + int(line[10]-'0')*10 + int(line[11]-'0')
	if code < 100 {
		return "", 0, "", fmt.Errorf("%w: status code %d out of range", ErrMalformedHead, code)
	}

	rest := line[12:]
	if len(rest) > 0 {
		if rest[0] != ' ' {
			return "", 0, "", fmt.Errorf("%w: invalid status code in %q", ErrMalformedHead, line)
		}
		reason = string(rest[1:])
		if !httpguts.ValidHeaderFieldValue(reason) {
			return "", 0, "", fmt.Errorf("%w: invalid reason phrase %q", ErrMalformedHead, reason)
		}
	}
	return version, code, reason, nil
}

// parseFieldLines consumes header lines up to and including the empty line.
// Bytes left after the empty line mean the head boundary was misdetected.
func parseFieldLines(data []byte) ([]Field, error) {
	fields := make([]Field, 0, 16)
	for {
		lineEnd := bytes.Index(data, crlf)
		if lineEnd == -1 {
			return nil, fmt.Errorf("%w: header block is not terminated", ErrMalformedHead)
		}
		line := data[:lineEnd]
		data = data[lineEnd+2:]

		if len(line) == 0 {
			if len(data) > 0 {
				return nil, fmt.Errorf("%w: %d trailing bytes after header block", ErrMalformedHead, len(data))
			}
			return fields, nil
		}

		if line[0] == ' ' || line[0] == '\t' {
			return nil, fmt.Errorf("%w: obsolete line folding", ErrMalformedHead)
		}

		colonIdx := bytes.IndexByte(line, ':')
		if colonIdx <= 0 {
			return nil, fmt.Errorf("%w: header line without name %q", ErrMalformedHead, line)
		}

		name := string(line[:colonIdx])
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, fmt.Errorf("%w: invalid header name %q", ErrMalformedHead, name)
		}
		value := strings.Trim(string(line[colonIdx+1:]), " \t")
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, fmt.Errorf("%w: invalid value for header %q", ErrMalformedHead, name)
		}

		fields = append(fields, Field{Name: name, Value: value})
	}
}

func validTarget(target string) bool {
	if target == "" {
		return false
	}
	for i := 0; i < len(target); i++ {
		if target[i] <= ' ' || target[i] == 0x7f {
			return false
		}
	}
	return true
}

func finalize(startLine []byte, fields []Field) []byte {
	size := len(startLine) + 2
	for _, f := range fields {
		size += len(f.Name) + 2 + len(f.Value) + 2
	}
	size += 2

	buf := make([]byte, 0, size)
	buf = append(buf, startLine...)
	buf = append(buf, '\r', '\n')

	for _, f := range fields {
		buf = append(buf, f.Name...)
		buf = append(buf, ':', ' ')
		buf = append(buf, f.Value...)
		buf = append(buf, '\r', '\n')
	}

	buf = append(buf, '\r', '\n')
	return buf
}
