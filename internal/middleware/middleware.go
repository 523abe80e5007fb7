package middleware

import (
	"http_relay/internal/http/header"
)

// RequestMiddleware mutates the request head before it is serialized.
type RequestMiddleware interface {
	HandleRequest(header header.RequestHeader) error
}
