package peer

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"
)

// Peer is one end of a bidirectional byte stream: a readable half, a writable
// half and a hang-up signal that is closed once the other side went away.
// A nil Hangup never fires.
type Peer struct {
	Reader io.Reader
	Writer io.Writer
	Hangup <-chan struct{}
}

func New(reader io.Reader, writer io.Writer, hangup <-chan struct{}) *Peer {
	return &Peer{
		Reader: reader,
		Writer: writer,
		Hangup: hangup,
	}
}

// FromConn builds a peer over conn. The hang-up channel is closed when the
// connection is closed through the returned peer.
func FromConn(conn net.Conn) *Peer {
	hc := &hangupConn{Conn: conn, hangup: make(chan struct{})}
	return New(hc, hc, hc.hangup)
}

type hangupConn struct {
	net.Conn
	once   sync.Once
	hangup chan struct{}
}

func (hc *hangupConn) Close() error {
	err := hc.Conn.Close()
	hc.once.Do(func() { close(hc.hangup) })
	return err
}

func (hc *hangupConn) CloseWrite() error {
	if closer, ok := hc.Conn.(interface{ CloseWrite() error }); ok {
		return closer.CloseWrite()
	}
	return hc.Close()
}

func (p *Peer) Read(b []byte) (int, error) {
	return p.Reader.Read(b)
}

func (p *Peer) Write(b []byte) (int, error) {
	return p.Writer.Write(b)
}

// CloseWrite shuts down the writable half, falling back to Close when the
// half cannot be closed on its own.
func (p *Peer) CloseWrite() error {
	if closer, ok := p.Writer.(interface{ CloseWrite() error }); ok {
		return closer.CloseWrite()
	}
	if closer, ok := p.Writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Close releases both halves. Halves sharing one underlying connection are
// closed once; an already closed connection is not reported as an error.
func (p *Peer) Close() error {
	var errs []error
	if closer, ok := p.Writer.(io.Closer); ok {
		if err := closer.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if closer, ok := p.Reader.(io.Closer); ok && !sameHalf(p.Reader, p.Writer) {
		if err := closer.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sameHalf(r io.Reader, w io.Writer) bool {
	rw, ok := r.(io.Writer)
	return ok && rw == w
}

// SetReadDeadline forwards to the readable half when it supports deadlines.
func (p *Peer) SetReadDeadline(t time.Time) bool {
	if d, ok := p.Reader.(interface{ SetReadDeadline(time.Time) error }); ok {
		return d.SetReadDeadline(t) == nil
	}
	return false
}

// SetWriteDeadline forwards to the writable half when it supports deadlines.
func (p *Peer) SetWriteDeadline(t time.Time) bool {
	if d, ok := p.Writer.(interface{ SetWriteDeadline(time.Time) error }); ok {
		return d.SetWriteDeadline(t) == nil
	}
	return false
}
