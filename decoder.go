/*
Decoder turns byte stream from session into readings

Steps for one reading
- search marker 0x42 0x4D byte by byte. Everything else is silently dropped (partial frames, line noise)
- read length, reject bogus length before reading the body
- read rest of the frame, check checksum, unpack
*/
package pms7003

import (
	"encoding/binary"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type ByteSource interface {
	ReadByte() (byte, error)
	ReadExact(n int) ([]byte, error)
}

type Stats struct {
	Readings       int
	ChecksumErrors int
	FramingErrors  int
	Timeouts       int
	DiscardedBytes int
}

type Decoder struct {
	Clock       clock.Clock
	SyncTimeout time.Duration //0 = search marker forever (as long as bytes are coming)
	Log         logrus.FieldLogger
	Stats       Stats
}

func NewDecoder(clk clock.Clock, syncTimeout time.Duration, log logrus.FieldLogger) *Decoder {
	if clk == nil {
		clk = clock.New()
	}
	if log == nil {
		log = discardLogger()
	}
	return &Decoder{Clock: clk, SyncTimeout: syncTimeout, Log: log}
}

// NextReading decodes one reading from session. Marker search is limited by session timeout
func NextReading(s *Session) (Reading, error) {
	return NewDecoder(s.Clock(), s.Timeout(), s.log).Next(s)
}

func (p *Decoder) Next(src ByteSource) (Reading, error) {
	discarded, errSync := p.sync(src)
	p.Stats.DiscardedBytes += discarded
	if 0 < discarded {
		p.Log.Debugf("discarded %v bytes before marker", discarded)
	}
	if errSync != nil {
		return Reading{}, p.count(errSync)
	}

	lenBytes, errLen := src.ReadExact(2)
	if errLen != nil {
		return Reading{}, p.count(errLen)
	}
	length := binary.BigEndian.Uint16(lenBytes)
	if !ValidFrameLength(length) {
		return Reading{}, p.count(errors.Wrapf(ErrFraming, "declared length %v, expected %v", length, FRAMELEN))
	}

	rest, errRest := src.ReadExact(int(length))
	if errRest != nil {
		return Reading{}, p.count(errRest)
	}

	arr := make([]byte, 0, FRAMESIZE)
	arr = append(arr, FRAMESTART1, FRAMESTART2)
	arr = append(arr, lenBytes...)
	arr = append(arr, rest...)

	var frame Frame
	if err := frame.FromBytes(arr); err != nil {
		return Reading{}, p.count(err)
	}
	p.Stats.Readings++
	return frame.Reading()
}

func (p *Decoder) count(err error) error {
	switch {
	case errors.Is(err, ErrChecksum):
		p.Stats.ChecksumErrors++
	case errors.Is(err, ErrFraming):
		p.Stats.FramingErrors++
	case errors.Is(err, ErrTimeout):
		p.Stats.Timeouts++
	}
	p.Log.Debugf("decode failed: %v", err)
	return err
}

/*
sync consumes bytes until marker is consumed. Returns number of dropped bytes.
0x42 followed by something else is dropped, but that something is checked again as possible start
*/
func (p *Decoder) sync(src ByteSource) (int, error) {
	started := p.Clock.Now()
	discarded := 0
	var b byte
	haveByte := false
	for {
		if !haveByte {
			var err error
			b, err = src.ReadByte()
			if err != nil {
				return discarded, err
			}
		}
		haveByte = false

		if b == FRAMESTART1 {
			next, err := src.ReadByte()
			if err != nil {
				return discarded, err
			}
			if next == FRAMESTART2 {
				return discarded, nil
			}
			b = next
			haveByte = true
		}
		discarded++

		if 0 < p.SyncTimeout && p.SyncTimeout <= p.Clock.Since(started) {
			return discarded, errors.Wrapf(ErrTimeout, "no frame marker in %v (%v bytes dropped)", p.SyncTimeout, discarded)
		}
	}
}
