package transport

import (
	"context"
	"errors"
	"fmt"
	"http_relay/internal/key"
	"http_relay/internal/peer"
	"http_relay/internal/version"
	"io"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// sshTunnel reaches its targets through direct-tcpip channels opened on an
// SSH server. Every Dial uses its own SSH connection.
type sshTunnel struct {
	host   string
	config *ssh.ClientConfig
	dialer net.Dialer
	logger *zap.Logger
}

func NewSSHDialer(host string, config *ssh.ClientConfig, logger *zap.Logger) Dialer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sshTunnel{
		host:   host,
		config: config,
		dialer: net.Dialer{Timeout: config.Timeout},
		logger: logger,
	}
}

// NewSSHClientConfig authenticates with the private key at keyPath. Host keys
// are checked against knownHostsPath; an empty path accepts any host key.
func NewSSHClientConfig(user, keyPath, knownHostsPath string, timeout time.Duration) (*ssh.ClientConfig, error) {
	signer, err := key.LoadSigner(keyPath)
	if err != nil {
		return nil, err
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if knownHostsPath != "" {
		hostKeyCallback, err = knownhosts.New(knownHostsPath)
		if err != nil {
			return nil, fmt.Errorf("load known hosts: %w", err)
		}
	}

	return &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		ClientVersion:   fmt.Sprintf("SSH-2.0-HTTPRelay-%s", version.GetShortVersion()),
		Timeout:         timeout,
	}, nil
}

func (st *sshTunnel) Dial(ctx context.Context, address string) (*peer.Peer, error) {
	if _, _, err := net.SplitHostPort(address); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddr, err)
	}

	netConn, err := st.dialer.DialContext(ctx, "tcp", st.host)
	if err != nil {
		return nil, fmt.Errorf("dial ssh server %s: %w", st.host, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, st.host, st.config)
	if err != nil {
		if closeErr := netConn.Close(); closeErr != nil {
			st.logger.Warn("Failed to close connection", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("ssh handshake with %s: %w", st.host, err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)

	conn, err := client.DialContext(ctx, "tcp", address)
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			st.logger.Warn("Failed to close ssh client", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("open direct-tcpip channel to %s: %w", address, err)
	}

	st.logger.Debug("Opened ssh tunnel", zap.String("via", st.host), zap.String("target", address))
	return peer.FromConn(&tunnelConn{Conn: conn, client: client}), nil
}

// tunnelConn ties the lifetime of the SSH client to the channel it carries.
type tunnelConn struct {
	net.Conn
	client *ssh.Client
}

func (tc *tunnelConn) CloseWrite() error {
	if closer, ok := tc.Conn.(interface{ CloseWrite() error }); ok {
		return closer.CloseWrite()
	}
	return tc.Close()
}

// Close ignores io.EOF, which ssh reports when the remote end closed the
// channel first.
func (tc *tunnelConn) Close() error {
	var errs []error
	if err := tc.Conn.Close(); err != nil && !errors.Is(err, io.EOF) {
		errs = append(errs, err)
	}
	if err := tc.client.Close(); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.EOF) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
