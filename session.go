/*
Session owns one opened serial device for its lifetime.

Either open (port held, readable) or closed (nothing held). Only the session that opened the port reads or closes it.
There is no locking, one caller at a time
*/
package pms7003

import (
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Swappable for tests
var openDevice = openPort

type Session struct {
	port    Port
	path    string
	timeout time.Duration
	clock   clock.Clock
	log     logrus.FieldLogger
}

func OpenSession(path string, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	port, err := openDevice(path, cfg)
	if err != nil {
		return nil, err
	}
	s := NewSession(port, cfg)
	s.path = path
	s.log = cfg.Logger.WithField("device", path)
	s.log.Debugf("opened with %v baud=%v timeout=%v", cfg.Backend, cfg.Baud, cfg.Timeout)
	return s, nil
}

// NewSession wraps already opened port. Session takes ownership
func NewSession(port Port, cfg Config) *Session {
	cfg = cfg.withDefaults()
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Session{
		port:    port,
		timeout: cfg.Timeout,
		clock:   clk,
		log:     cfg.Logger,
	}
}

/*
WithSession opens device, runs fn and closes device on every way out. Also when fn panics.
Close error is combined with error from fn
*/
func WithSession(path string, cfg Config, fn func(*Session) error) (err error) {
	s, err := OpenSession(path, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, s.Close())
	}()
	return fn(s)
}

// Timeout is the deadline of single ReadExact call
func (s *Session) Timeout() time.Duration {
	return s.timeout
}

func (s *Session) Clock() clock.Clock {
	return s.clock
}

func (s *Session) IsOpen() bool {
	return s.port != nil
}

/*
ReadExact blocks until n bytes are read or timeout passes. Timeout is total, also when bytes keep trickling in.
Zero length read or io.EOF from port means nothing came yet (VMIN=0 style serial read)
*/
func (s *Session) ReadExact(n int) ([]byte, error) {
	if s.port == nil {
		return nil, ErrClosed
	}
	buf := make([]byte, n)
	got := 0
	deadline := s.clock.Now().Add(s.timeout)
	for got < n {
		m, errRead := s.port.Read(buf[got:])
		if m < 0 {
			m = 0
		}
		got += m
		if errRead != nil && errRead != io.EOF {
			return nil, errors.Wrapf(ErrIO, "read %v: %v", s.path, errRead)
		}
		if got < n && !s.clock.Now().Before(deadline) {
			return nil, errors.Wrapf(ErrTimeout, "got %v of %v bytes in %v", got, n, s.timeout)
		}
	}
	return buf, nil
}

func (s *Session) ReadByte() (byte, error) {
	b, err := s.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Close releases the device. Calling again does nothing
func (s *Session) Close() error {
	if s.port == nil {
		return nil
	}
	port := s.port
	s.port = nil
	if err := port.Close(); err != nil {
		return errors.Wrapf(ErrIO, "close %v: %v", s.path, err)
	}
	return nil
}
