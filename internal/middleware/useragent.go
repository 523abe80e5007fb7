package middleware

import (
	"http_relay/internal/http/header"
)

type UserAgent struct {
	agent string
}

func NewUserAgent(agent string) *UserAgent {
	return &UserAgent{agent: agent}
}

func (ua *UserAgent) HandleRequest(header header.RequestHeader) error {
	if ua.agent == "" || header.Value("User-Agent") != "" {
		return nil
	}
	header.Add("User-Agent", ua.agent)
	return nil
}
