/*
Sensor is the simple way to use single PMS7003 in active mode

	err := pms7003.With("/dev/ttyUSB0", func(s *pms7003.Sensor) error {
		r, err := s.Read()
		...
	})

Read does no retries. See Retryable
*/
package pms7003

import (
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

type Option func(*Config)

func WithBaud(baud int) Option {
	return func(c *Config) { c.Baud = baud }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) { c.Timeout = timeout }
}

func WithBackend(backend Backend) Option {
	return func(c *Config) { c.Backend = backend }
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Config) { c.Logger = logger }
}

type Sensor struct {
	session *Session
	decoder *Decoder
}

func Open(path string, opts ...Option) (*Sensor, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	session, err := OpenSession(path, cfg)
	if err != nil {
		return nil, err
	}
	return newSensor(session), nil
}

func newSensor(session *Session) *Sensor {
	return &Sensor{
		session: session,
		decoder: NewDecoder(session.Clock(), session.Timeout(), session.log),
	}
}

// With opens sensor, runs fn and closes sensor on every exit path
func With(path string, fn func(*Sensor) error, opts ...Option) (err error) {
	s, err := Open(path, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, s.Close())
	}()
	return fn(s)
}

// Read blocks until one valid reading or error
func (p *Sensor) Read() (Reading, error) {
	return p.decoder.Next(p.session)
}

func (p *Sensor) Stats() Stats {
	return p.decoder.Stats
}

func (p *Sensor) Close() error {
	return p.session.Close()
}
