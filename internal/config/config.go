package config

import (
	"http_relay/internal/http/header"
	"time"
)

type Config interface {
	RequestMethod() string
	RequestURI() string
	RequestHeaders() []header.Field
	AddHostHeader() bool
	UserAgent() string

	LogLevel() string
	BufferSize() int

	DialTimeout() time.Duration
	HandshakeTimeout() time.Duration

	StatusReport() bool
	NoColor() bool

	SSHHost() string
	SSHUser() string
	SSHKeyLoc() string
	SSHKnownHosts() string
}

func MustLoad() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg, err := parse()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *config) RequestMethod() string           { return c.requestMethod }
func (c *config) RequestURI() string              { return c.requestURI }
func (c *config) RequestHeaders() []header.Field  { return append([]header.Field(nil), c.requestHeaders...) }
func (c *config) AddHostHeader() bool             { return c.addHostHeader }
func (c *config) UserAgent() string               { return c.userAgent }
func (c *config) LogLevel() string                { return c.logLevel }
func (c *config) BufferSize() int                 { return c.bufferSize }
func (c *config) DialTimeout() time.Duration      { return c.dialTimeout }
func (c *config) HandshakeTimeout() time.Duration { return c.handshakeTimeout }
func (c *config) StatusReport() bool              { return c.statusReport }
func (c *config) NoColor() bool                   { return c.noColor }
func (c *config) SSHHost() string                 { return c.sshHost }
func (c *config) SSHUser() string                 { return c.sshUser }
func (c *config) SSHKeyLoc() string               { return c.sshKeyLoc }
func (c *config) SSHKnownHosts() string           { return c.sshKnownHosts }
