/*
Port is the opened serial device. Session reads from it

There are different implementations for opening the device. termios (linux only, no extra libraries), tarm/serial and pkg/term
*/
package pms7003

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Port interface {
	io.Reader
	io.Closer
}

type Backend string

const (
	BackendTermios Backend = "termios"
	BackendTarm    Backend = "tarm"
	BackendTerm    Backend = "term"
)

// Values according to product data manual. 9600 8N1
// Stable mode sends frame every 2.3s, timeout must be longer than that
const (
	DEFAULTBAUD    = 9600
	DEFAULTTIMEOUT = 3 * time.Second
)

type Config struct {
	Baud    int
	Timeout time.Duration //How long ReadExact may wait for all bytes
	Backend Backend
	Logger  logrus.FieldLogger
	Clock   clock.Clock //nil = wall clock. Mock in tests
}

func DefaultBackend() Backend {
	if runtime.GOOS == "linux" {
		return BackendTermios
	}
	return BackendTarm
}

func DefaultConfig() Config {
	return Config{
		Baud:    DEFAULTBAUD,
		Timeout: DEFAULTTIMEOUT,
		Backend: DefaultBackend(),
	}
}

// fills zero values with defaults
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Baud == 0 {
		c.Baud = def.Baud
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.Logger == nil {
		c.Logger = discardLogger()
	}
	return c
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendTermios, BackendTarm, BackendTerm:
		return Backend(s), nil
	case "":
		return DefaultBackend(), nil
	}
	return "", fmt.Errorf("unknown backend %q (termios, tarm or term)", s)
}

// openPort opens device with selected backend. All failures are ErrIO
func openPort(path string, cfg Config) (Port, error) {
	if path == "" {
		return nil, errors.Wrap(ErrIO, "empty device path")
	}
	var port Port
	var err error
	switch cfg.Backend {
	case BackendTermios:
		port, err = openTermios(path, cfg.Baud, cfg.Timeout)
	case BackendTarm:
		port, err = openTarm(path, cfg.Baud, cfg.Timeout)
	case BackendTerm:
		port, err = openTerm(path, cfg.Baud, cfg.Timeout)
	default:
		return nil, errors.Wrapf(ErrIO, "unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "open %v (%v): %v", path, cfg.Backend, err)
	}
	return port, nil
}
