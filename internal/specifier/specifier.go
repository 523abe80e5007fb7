package specifier

import (
	"fmt"
	"http_relay/internal/http/header"
	"net"
	"net/url"
	"strings"
)

const (
	RequestPrefix = "http-request:"
	HTTPPrefix    = "http:"

	defaultHTTPPort = "80"
)

var (
	ErrInvalidSpecifier = fmt.Errorf("invalid specifier")
	ErrNestedOverlay    = fmt.Errorf("nested HTTP overlays are not supported")
)

// RequestOptions are the request parts that come from configuration rather
// than from the specifier itself.
type RequestOptions struct {
	Method  string
	URI     string
	Headers []header.Field
}

// Specifier is a parsed command line address: the inner transport to dial and,
// when Overlay is set, the request to issue over it.
type Specifier struct {
	Inner   string
	Overlay bool
	Method  string
	Target  string
	Headers []header.Field
}

// Parse understands three forms:
//
//	http-request:<inner>   request from opts over the inner transport
//	http://host[:port]/... request for that URI over tcp:host:port (port 80 by default)
//	<inner>                the inner transport alone
func Parse(s string, opts RequestOptions) (*Specifier, error) {
	switch {
	case strings.HasPrefix(s, RequestPrefix):
		return parseRequest(strings.TrimPrefix(s, RequestPrefix), opts)
	case strings.HasPrefix(s, HTTPPrefix):
		return parseHTTP(s, opts)
	case s == "":
		return nil, fmt.Errorf("%w: empty address", ErrInvalidSpecifier)
	default:
		return &Specifier{Inner: s}, nil
	}
}

func parseRequest(inner string, opts RequestOptions) (*Specifier, error) {
	if inner == "" {
		return nil, fmt.Errorf("%w: %s needs an inner address", ErrInvalidSpecifier, RequestPrefix)
	}
	if isOverlay(inner) {
		return nil, fmt.Errorf("%w: %q", ErrNestedOverlay, inner)
	}
	return &Specifier{
		Inner:   inner,
		Overlay: true,
		Method:  opts.Method,
		Target:  opts.URI,
		Headers: opts.Headers,
	}, nil
}

func parseHTTP(s string, opts RequestOptions) (*Specifier, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpecifier, err)
	}
	if u.Scheme != "http" || u.Opaque != "" {
		return nil, fmt.Errorf("%w: %q is not an absolute http URI", ErrInvalidSpecifier, s)
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidSpecifier, s)
	}
	port := u.Port()
	if port == "" {
		port = defaultHTTPPort
	}

	u.User = nil
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}

	return &Specifier{
		Inner:   "tcp:" + net.JoinHostPort(host, port),
		Overlay: true,
		Method:  opts.Method,
		Target:  u.String(),
		Headers: opts.Headers,
	}, nil
}

func isOverlay(s string) bool {
	return strings.HasPrefix(s, RequestPrefix) || strings.HasPrefix(s, HTTPPrefix)
}

// Request builds the request descriptor for an overlay specifier.
func (s *Specifier) Request() (header.RequestHeader, error) {
	if !s.Overlay {
		return nil, fmt.Errorf("%w: %q carries no request", ErrInvalidSpecifier, s.Inner)
	}
	return header.NewRequest(s.Method, s.Target, s.Headers...)
}
