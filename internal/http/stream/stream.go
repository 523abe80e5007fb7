package stream

import (
	"errors"
	"fmt"
	"io"
)

const (
	// growStep is how far the buffer is extended past the write position
	// before every read.
	growStep = 1024
	// MaxHeadSize bounds the bytes accumulated without seeing the terminator.
	MaxHeadSize = 60_000
	// maxEmptyReads mirrors bufio: a reader returning (0, nil) this many times
	// in a row is treated as broken.
	maxEmptyReads = 100
)

var (
	ErrConnectionClosedPrematurely = fmt.Errorf("connection closed before end of HTTP head")
	ErrHeaderTooLarge              = fmt.Errorf("HTTP head too long")
	ErrPolledAfterCompletion       = fmt.Errorf("head scanner polled after completion")
	ErrReadFailed                  = fmt.Errorf("reading HTTP head failed")
)

// Result is a finished scan. Buf[:Offset] is the head including its
// terminator, Buf[Offset:] is body data read past it. Reader is the readable
// half handed back by the scanner.
type Result struct {
	Buf    []byte
	Offset int
	Reader io.Reader
}

func (r *Result) Head() []byte {
	return r.Buf[:r.Offset]
}

func (r *Result) Debt() []byte {
	return r.Buf[r.Offset:]
}

// Scanner reads from its reader until the first CRLFCRLF. It keeps its buffer,
// offset and detector state between calls to Step, so a scan may be resumed
// after any read.
type Scanner struct {
	reader     io.Reader
	buf        []byte
	offset     int
	state      state
	emptyReads int
	finished   bool
}

func NewScanner(reader io.Reader) *Scanner {
	return &Scanner{
		reader: reader,
		buf:    make([]byte, 0, 512),
		state:  stateNeutral,
	}
}

// Offset is the number of bytes accumulated so far.
func (s *Scanner) Offset() int {
	return s.offset
}

// Scan runs Step until the head is complete or the scan fails.
func (s *Scanner) Scan() (*Result, error) {
	for {
		res, err := s.Step()
		if err != nil || res != nil {
			return res, err
		}
	}
}

// Step performs a single read. It returns a nil Result and nil error when more
// input is needed. Once Step has returned a Result or an error, the scanner is
// spent and further calls fail with ErrPolledAfterCompletion.
func (s *Scanner) Step() (*Result, error) {
	if s.finished {
		return nil, ErrPolledAfterCompletion
	}

	if len(s.buf) < s.offset+growStep {
		s.buf = append(s.buf, make([]byte, s.offset+growStep-len(s.buf))...)
	}

	n, err := s.reader.Read(s.buf[s.offset:])
	if n < 0 || n > len(s.buf)-s.offset {
		return nil, s.fail(fmt.Errorf("%w: reader returned invalid count %d", ErrReadFailed, n))
	}

	for i := s.offset; i < s.offset+n; i++ {
		s.state = s.state.next(s.buf[i])
		if s.state == stateDone {
			return s.finish(s.offset+n, i+1), nil
		}
	}
	s.offset += n

	switch {
	case errors.Is(err, io.EOF):
		return nil, s.fail(fmt.Errorf("%w after %d bytes", ErrConnectionClosedPrematurely, s.offset))
	case err != nil:
		return nil, s.fail(fmt.Errorf("%w: %w", ErrReadFailed, err))
	}

	if s.offset > MaxHeadSize {
		return nil, s.fail(ErrHeaderTooLarge)
	}

	if n == 0 {
		s.emptyReads++
		if s.emptyReads >= maxEmptyReads {
			return nil, s.fail(fmt.Errorf("%w: %w", ErrConnectionClosedPrematurely, io.ErrNoProgress))
		}
		return nil, nil
	}
	s.emptyReads = 0
	return nil, nil
}

func (s *Scanner) finish(length, offset int) *Result {
	res := &Result{
		Buf:    s.buf[:length],
		Offset: offset,
		Reader: s.reader,
	}
	s.finished = true
	s.reader = nil
	s.buf = nil
	return res
}

func (s *Scanner) fail(err error) error {
	s.finished = true
	s.reader = nil
	s.buf = nil
	return err
}
