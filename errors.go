package pms7003

import "github.com/pkg/errors"

/*
Error kinds. Library wraps these with details, check with errors.Is

No retries are done inside library. Caller decides:
- ErrIO       fatal, device is gone or can not be opened
- ErrTimeout  nothing arrived in time, ok to call again
- ErrFraming  marker found but length is bogus, ok to call again (resyncs)
- ErrChecksum frame read fully but corrupted, discard and call again
*/
var (
	ErrIO       = errors.New("pms7003: io error")
	ErrTimeout  = errors.New("pms7003: timeout")
	ErrFraming  = errors.New("pms7003: framing error")
	ErrChecksum = errors.New("pms7003: checksum mismatch")
	ErrClosed   = errors.Wrap(ErrIO, "session closed")
)

// Retryable reports whether calling Read again can help
func Retryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrFraming) || errors.Is(err, ErrChecksum)
}
