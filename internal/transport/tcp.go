package transport

import (
	"context"
	"fmt"
	"http_relay/internal/peer"
	"net"
	"time"

	"go.uber.org/zap"
)

type tcp struct {
	dialer net.Dialer
	logger *zap.Logger
}

func NewTCPDialer(timeout time.Duration, logger *zap.Logger) Dialer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &tcp{
		dialer: net.Dialer{Timeout: timeout},
		logger: logger,
	}
}

func (tt *tcp) Dial(ctx context.Context, address string) (*peer.Peer, error) {
	if _, _, err := net.SplitHostPort(address); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddr, err)
	}

	conn, err := tt.dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial tcp %s: %w", address, err)
	}

	tt.logger.Debug("Connected", zap.String("remote", conn.RemoteAddr().String()))
	return peer.FromConn(conn), nil
}
