package handshake

import (
	"context"
	"fmt"
	"http_relay/internal/http/header"
	"http_relay/internal/http/stream"
	"http_relay/internal/middleware"
	"http_relay/internal/peer"
	"io"
	"time"

	"go.uber.org/zap"
)

type Handshaker interface {
	Do(ctx context.Context, req header.RequestHeader, p *peer.Peer) (*peer.Peer, error)
}

type Option func(*handshaker)

func WithLogger(logger *zap.Logger) Option {
	return func(h *handshaker) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithRequestMiddleware(mw ...middleware.RequestMiddleware) Option {
	return func(h *handshaker) {
		h.middlewares = append(h.middlewares, mw...)
	}
}

// WithResponseObserver registers fn to see every response head that parsed,
// before its status is judged.
func WithResponseObserver(fn func(header.ResponseHeader)) Option {
	return func(h *handshaker) {
		h.observer = fn
	}
}

type handshaker struct {
	logger      *zap.Logger
	middlewares []middleware.RequestMiddleware
	observer    func(header.ResponseHeader)
}

func New(opts ...Option) Handshaker {
	h := &handshaker{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type phase uint8

const (
	phaseWrite phase = iota
	phaseScan
	phaseValidate
	phaseSplice
	phaseDone
)

// attempt holds everything one handshake has accumulated, so the loop in Do
// can resume at whichever phase it is in.
type attempt struct {
	phase   phase
	request []byte
	written int
	peer    *peer.Peer
	scanner *stream.Scanner
	result  *stream.Result
	output  *peer.Peer
}

var aLongTimeAgo = time.Unix(1, 0)

// Do writes req to p, waits for a 1xx or 2xx response head and returns a peer
// whose readable half starts at the first body byte. On failure nothing is
// returned and p must not be reused for another exchange.
//
// Middlewares run on a copy, so req itself is never modified. Cancelling ctx
// moves the deadlines of p into the past; when p does not support deadlines
// it is closed instead.
func (h *handshaker) Do(ctx context.Context, req header.RequestHeader, p *peer.Peer) (*peer.Peer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req = req.Clone()
	for _, mw := range h.middlewares {
		if err := mw.HandleRequest(req); err != nil {
			return nil, fmt.Errorf("request middleware: %w", err)
		}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, func() {
		writeOK := p.SetWriteDeadline(aLongTimeAgo)
		readOK := p.SetReadDeadline(aLongTimeAgo)
		if writeOK && readOK {
			return
		}
		h.logger.Debug("Peer has no deadline support, closing it to abort the handshake")
		if err := p.Close(); err != nil {
			h.logger.Debug("Error closing peer", zap.Error(err))
		}
	})

	a := &attempt{
		phase:   phaseWrite,
		request: req.Finalize(),
		peer:    p,
	}

	h.logger.Info("Issuing HTTP request",
		zap.String("method", req.Method()),
		zap.String("target", req.Path()),
		zap.Int("headers", len(req.Fields())),
	)

	for a.phase != phaseDone {
		if err := h.step(a); err != nil {
			if !stop() {
				return nil, fmt.Errorf("%w: %w", context.Cause(ctx), err)
			}
			return nil, err
		}
	}

	if !stop() {
		return nil, context.Cause(ctx)
	}
	return a.output, nil
}

func (h *handshaker) step(a *attempt) error {
	switch a.phase {
	case phaseWrite:
		return h.write(a)
	case phaseScan:
		return h.scan(a)
	case phaseValidate:
		return h.validate(a)
	case phaseSplice:
		h.splice(a)
		return nil
	default:
		return ErrPolledAfterCompletion
	}
}

func (h *handshaker) write(a *attempt) error {
	n, err := a.peer.Writer.Write(a.request[a.written:])
	a.written += n
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	if n == 0 && a.written < len(a.request) {
		return fmt.Errorf("%w: %w", ErrWriteFailed, io.ErrShortWrite)
	}
	if a.written == len(a.request) {
		a.request = nil
		a.scanner = stream.NewScanner(a.peer.Reader)
		a.phase = phaseScan
	}
	return nil
}

func (h *handshaker) scan(a *attempt) error {
	res, err := a.scanner.Step()
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}
	h.logger.Debug("Got HTTP response head", zap.ByteString("head", res.Head()))
	a.scanner = nil
	a.result = res
	a.phase = phaseValidate
	return nil
}

func (h *handshaker) validate(a *attempt) error {
	resp, err := header.NewResponse(a.result.Head())
	if err != nil {
		return err
	}

	h.logger.Info("HTTP response status",
		zap.Int("status", resp.StatusCode()),
		zap.String("reason", resp.Reason()),
	)
	if h.observer != nil {
		h.observer(resp)
	}

	if !resp.Success() {
		return &StatusError{Code: resp.StatusCode(), Reason: resp.Reason()}
	}
	a.phase = phaseSplice
	return nil
}

func (h *handshaker) splice(a *attempt) {
	debt := a.result.Debt()
	if len(debt) > 0 {
		h.logger.Debug("bytes of debt to be read", zap.Int("debt", len(debt)))
	}
	reader := stream.NewDebtReader(debt, a.result.Reader)
	a.output = peer.New(reader, a.peer.Writer, a.peer.Hangup)
	a.result = nil
	a.phase = phaseDone
}
