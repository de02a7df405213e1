package pms7003

import (
	"bytes"
	"io"
	"time"

	"github.com/benbjohnson/clock"
)

// fakePort serves scripted bytes in small chunks. When empty it acts like serial read timeout
type fakePort struct {
	data      *bytes.Reader
	clk       *clock.Mock
	chunk     int
	readErr   error
	closeErr  error
	closeCall int
}

func newFakePort(clk *clock.Mock, data []byte) *fakePort {
	return &fakePort{data: bytes.NewReader(data), clk: clk, chunk: 7}
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}
	if p.data.Len() == 0 {
		p.clk.Add(100 * time.Millisecond)
		return 0, io.EOF
	}
	if p.chunk < len(b) {
		b = b[:p.chunk]
	}
	return p.data.Read(b)
}

func (p *fakePort) Close() error {
	p.closeCall++
	return p.closeErr
}

func (p *fakePort) remaining() int {
	return p.data.Len()
}

func testSession(data []byte) (*Session, *fakePort, *clock.Mock) {
	clk := clock.NewMock()
	port := newFakePort(clk, data)
	return NewSession(port, Config{Timeout: time.Second, Clock: clk}), port, clk
}

// Datasheet style frame: PM2.5=12 PM10=18
var exampleFrame = []byte{
	0x42, 0x4D, 0x00, 0x1C,
	0x00, 0x0A, 0x00, 0x0C, 0x00, 0x12,
	0x00, 0x0A, 0x00, 0x0C, 0x00, 0x12,
	0x07, 0x08, 0x02, 0x08, 0x00, 0x64, 0x00, 0x08, 0x00, 0x02, 0x00, 0x01,
	0x97, 0x00,
	0x02, 0x1A,
}

var exampleReading = Reading{
	PM1_0CF1: 10, PM2_5CF1: 12, PM10CF1: 18,
	PM1_0: 10, PM2_5: 12, PM10: 18,
	N0_3: 1800, N0_5: 520, N1_0: 100, N2_5: 8, N5_0: 2, N10: 1,
	Version: 0x97, ErrorCode: 0,
}

func concat(parts ...[]byte) []byte {
	result := []byte{}
	for _, p := range parts {
		result = append(result, p...)
	}
	return result
}
