package relay

import (
	"context"
	"errors"
	"fmt"
	"http_relay/internal/peer"
	"io"
	"net"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Relay copies between local stdio and a connected peer.
type Relay interface {
	Pipe(ctx context.Context, p *peer.Peer, in io.Reader, out io.Writer) error
}

type relay struct {
	bufferPool *sync.Pool
	logger     *zap.Logger
}

func New(bufferSize int, logger *zap.Logger) Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &relay{
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return make([]byte, bufferSize)
			},
		},
		logger: logger,
	}
}

func (r *relay) copyWithBuffer(dst io.Writer, src io.Reader) (written int64, err error) {
	buf := r.bufferPool.Get().([]byte)
	defer r.bufferPool.Put(buf)
	return io.CopyBuffer(dst, src, buf)
}

// Pipe sends in to the writable half of p, then half-closes it, and copies the
// readable half of p to out. It returns once the peer's data is exhausted, the
// peer hangs up or ctx is done. The peer is closed on return.
func (r *relay) Pipe(ctx context.Context, p *peer.Peer, in io.Reader, out io.Writer) error {
	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	var closeOnce sync.Once
	closePeer := func() {
		closeOnce.Do(func() {
			if err := p.Close(); err != nil {
				r.logger.Debug("Error closing peer", zap.Error(err))
			}
		})
	}
	defer closePeer()

	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-p.Hangup:
			r.logger.Debug("Peer hung up")
		case <-done:
			return nil
		}
		closePeer()
		return nil
	})

	// stdin never unblocks on its own, so the upload is not part of the group.
	go func() {
		n, err := r.copyWithBuffer(p, in)
		if err != nil && !isClosed(err) {
			r.logger.Warn("Error copying stdin to peer", zap.Error(err))
			return
		}
		r.logger.Debug("Local input finished", zap.Int64("bytes", n))
		if err = p.CloseWrite(); err != nil && !isClosed(err) {
			r.logger.Debug("Error half-closing peer", zap.Error(err))
		}
	}()

	g.Go(func() error {
		defer close(done)
		n, err := r.copyWithBuffer(out, p)
		r.logger.Debug("Peer output finished", zap.Int64("bytes", n))
		if err != nil && !isClosed(err) {
			return fmt.Errorf("copy peer to output: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if err == nil && ctx.Err() != nil {
		return context.Cause(ctx)
	}
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %w", context.Cause(ctx), err)
	}
	return err
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
