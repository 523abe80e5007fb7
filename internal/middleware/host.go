package middleware

import (
	"fmt"
	"http_relay/internal/http/header"
	"net/url"
)

type HostHeader struct{}

func NewHostHeader() *HostHeader {
	return &HostHeader{}
}

// HandleRequest appends a Host header derived from an absolute request target
// unless the caller already supplied one.
func (h *HostHeader) HandleRequest(header header.RequestHeader) error {
	if header.Value("Host") != "" {
		return nil
	}

	u, err := url.Parse(header.Path())
	if err != nil {
		return fmt.Errorf("parse request target: %w", err)
	}
	if u.Host == "" {
		return nil
	}

	header.Add("Host", u.Host)
	return nil
}
