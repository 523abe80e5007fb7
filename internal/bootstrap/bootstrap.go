package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"http_relay/internal/config"
	"http_relay/internal/handshake"
	"http_relay/internal/http/header"
	"http_relay/internal/key"
	"http_relay/internal/middleware"
	"http_relay/internal/peer"
	"http_relay/internal/relay"
	"http_relay/internal/report"
	"http_relay/internal/specifier"
	"http_relay/internal/transport"
	"http_relay/internal/version"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

var errInterrupted = errors.New("interrupted by signal")

type Bootstrap struct {
	Config     config.Config
	Logger     *zap.Logger
	Transports transport.Registry
	Relay      relay.Relay
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	SignalChan chan os.Signal
}

func New(config config.Config, logger *zap.Logger) (*Bootstrap, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	transports, err := newTransports(config, logger)
	if err != nil {
		return nil, err
	}

	return &Bootstrap{
		Config:     config,
		Logger:     logger,
		Transports: transports,
		Relay:      relay.New(config.BufferSize(), logger),
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		SignalChan: make(chan os.Signal, 1),
	}, nil
}

func newTransports(conf config.Config, logger *zap.Logger) (transport.Registry, error) {
	transports := transport.NewRegistry()
	if err := transports.Register("tcp", transport.NewTCPDialer(conf.DialTimeout(), logger)); err != nil {
		return nil, err
	}

	if conf.SSHHost() == "" {
		return transports, nil
	}

	if err := key.GenerateSSHKeyIfNotExist(conf.SSHKeyLoc(), logger); err != nil {
		return nil, fmt.Errorf("generate ssh key: %w", err)
	}
	sshCfg, err := transport.NewSSHClientConfig(conf.SSHUser(), conf.SSHKeyLoc(), conf.SSHKnownHosts(), conf.DialTimeout())
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH config: %w", err)
	}
	if err = transports.Register("ssh", transport.NewSSHDialer(conf.SSHHost(), sshCfg, logger)); err != nil {
		return nil, err
	}
	return transports, nil
}

func (b *Bootstrap) newHandshaker() handshake.Handshaker {
	opts := []handshake.Option{handshake.WithLogger(b.Logger)}

	var mws []middleware.RequestMiddleware
	if b.Config.AddHostHeader() {
		mws = append(mws, middleware.NewHostHeader())
	}
	if agent := b.Config.UserAgent(); agent != "" {
		mws = append(mws, middleware.NewUserAgent(agent))
	}
	opts = append(opts, handshake.WithRequestMiddleware(mws...))

	if b.Config.StatusReport() {
		opts = append(opts, handshake.WithResponseObserver(func(resp header.ResponseHeader) {
			if err := report.Status(b.Stderr, resp, b.Config.NoColor()); err != nil {
				b.Logger.Warn("Failed to write status report", zap.Error(err))
			}
		}))
	}
	return handshake.New(opts...)
}

// connect dials the inner transport and, for overlay addresses, completes the
// HTTP exchange on it.
func (b *Bootstrap) connect(ctx context.Context, spec *specifier.Specifier) (*peer.Peer, error) {
	if !spec.Overlay {
		return b.dial(ctx, spec.Inner)
	}

	req, err := spec.Request()
	if err != nil {
		return nil, err
	}

	p, err := b.dial(ctx, spec.Inner)
	if err != nil {
		return nil, err
	}

	hctx := ctx
	if timeout := b.Config.HandshakeTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out, err := b.newHandshaker().Do(hctx, req, p)
	if err != nil {
		if closeErr := p.Close(); closeErr != nil {
			b.Logger.Debug("Error closing peer after failed handshake", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("handshake: %w", err)
	}
	return out, nil
}

func (b *Bootstrap) dial(ctx context.Context, address string) (*peer.Peer, error) {
	p, err := b.Transports.Dial(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", address, err)
	}
	return p, nil
}

func (b *Bootstrap) Run(address string) error {
	b.Logger.Debug("Starting", zap.String("version", version.GetVersion()))

	spec, err := specifier.Parse(address, specifier.RequestOptions{
		Method:  b.Config.RequestMethod(),
		URI:     b.Config.RequestURI(),
		Headers: b.Config.RequestHeaders(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	signal.Notify(b.SignalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(b.SignalChan)

	go func() {
		select {
		case sig := <-b.SignalChan:
			b.Logger.Info("Received signal, shutting down", zap.Stringer("signal", sig))
			cancel(errInterrupted)
		case <-ctx.Done():
		}
	}()

	p, err := b.connect(ctx, spec)
	if err != nil {
		if errors.Is(context.Cause(ctx), errInterrupted) {
			return nil
		}
		return err
	}

	err = b.Relay.Pipe(ctx, p, b.Stdin, b.Stdout)
	if errors.Is(context.Cause(ctx), errInterrupted) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("relay: %w", err)
	}
	return nil
}
