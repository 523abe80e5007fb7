package header

import "fmt"

var (
	ErrMalformedHead  = fmt.Errorf("malformed HTTP response head")
	ErrInvalidRequest = fmt.Errorf("invalid HTTP request")
)

// Field is a single header line. Order of fields is preserved on the wire.
type Field struct {
	Name  string
	Value string
}

type RequestHeader interface {
	Value(key string) string
	Add(key string, value string)
	Clone() RequestHeader
	Fields() []Field
	Method() string
	Path() string
	Version() string
	Validate() error
	Finalize() []byte
}

type requestHeader struct {
	method  string
	path    string
	version string
	fields  []Field
}

type ResponseHeader interface {
	Value(key string) string
	Fields() []Field
	Version() string
	StatusCode() int
	Reason() string
	Class() StatusClass
	Success() bool
}

type responseHeader struct {
	version    string
	statusCode int
	reason     string
	fields     []Field
}

type StatusClass int

const (
	ClassUnknown StatusClass = iota
	ClassInformational
	ClassSuccess
	ClassRedirection
	ClassClientError
	ClassServerError
)

func (c StatusClass) String() string {
	switch c {
	case ClassInformational:
		return "informational"
	case ClassSuccess:
		return "success"
	case ClassRedirection:
		return "redirection"
	case ClassClientError:
		return "client error"
	case ClassServerError:
		return "server error"
	default:
		return "unknown"
	}
}

func classify(code int) StatusClass {
	switch code / 100 {
	case 1:
		return ClassInformational
	case 2:
		return ClassSuccess
	case 3:
		return ClassRedirection
	case 4:
		return ClassClientError
	case 5:
		return ClassServerError
	default:
		return ClassUnknown
	}
}
