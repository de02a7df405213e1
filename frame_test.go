package pms7003

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

// Frame from hand computed example. "nails down" to something real
func TestFrameFromExample(t *testing.T) {
	var frame Frame
	err := frame.FromBytes(exampleFrame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Valid, test.ShouldBeTrue)
	test.That(t, frame.Length, test.ShouldEqual, uint16(FRAMELEN))
	test.That(t, frame.Checksum, test.ShouldEqual, uint16(0x021A))

	r, err := frame.Reading()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r, test.ShouldResemble, exampleReading)
	test.That(t, r.PM2_5, test.ShouldEqual, uint16(12))
	test.That(t, r.PM10, test.ShouldEqual, uint16(18))
}

func TestFrameToBytes(t *testing.T) {
	frame := NewFrameFromReading(exampleReading)
	test.That(t, bytes.Equal(frame.ToBytes(), exampleFrame), test.ShouldBeTrue)
	test.That(t, len(frame.ToBytes()), test.ShouldEqual, FRAMESIZE)
	test.That(t, frame.ChecksumOk(), test.ShouldBeTrue)
}

func TestChecksumWraps(t *testing.T) {
	arr := bytes.Repeat([]byte{0xFF}, 300)
	test.That(t, CalcChecksum(arr), test.ShouldEqual, uint16((300*0xFF)&0xFFFF))
	test.That(t, CalcChecksum(nil), test.ShouldEqual, uint16(0))
}

func TestFrameCorruptedPayload(t *testing.T) {
	for i := FRAMEHEADERSIZE; i < FRAMESIZE-2; i++ {
		arr := append([]byte{}, exampleFrame...)
		arr[i] ^= 0x01
		var frame Frame
		err := frame.FromBytes(arr)
		test.That(t, errors.Is(err, ErrChecksum), test.ShouldBeTrue)
		test.That(t, frame.Valid, test.ShouldBeFalse)
		_, errReading := frame.Reading()
		test.That(t, errReading, test.ShouldNotBeNil)
	}
}

func TestFrameInvalid(t *testing.T) {
	var frame Frame
	err := frame.FromBytes([]byte{0x42})
	test.That(t, errors.Is(err, ErrFraming), test.ShouldBeTrue)

	badHeader := append([]byte{}, exampleFrame...)
	badHeader[1] = 0x4E
	err = frame.FromBytes(badHeader)
	test.That(t, errors.Is(err, ErrFraming), test.ShouldBeTrue)

	badLength := append([]byte{}, exampleFrame...)
	badLength[3] = 0x14
	err = frame.FromBytes(badLength)
	test.That(t, errors.Is(err, ErrFraming), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "declared length 20")

	err = frame.FromBytes(exampleFrame[:30])
	test.That(t, errors.Is(err, ErrFraming), test.ShouldBeTrue)
}

func TestFrameStrings(t *testing.T) {
	frame := NewFrameFromReading(exampleReading)
	test.That(t, frame.ToString(), test.ShouldContainSubstring, "PM2.5=12")
	test.That(t, frame.ToDebugText(), test.ShouldContainSubstring, "[0]=42")

	invalid := Frame{}
	test.That(t, invalid.ToString(), test.ShouldContainSubstring, "INVALID")
}

func TestInvalidFrameReadingIsFramingError(t *testing.T) {
	invalid := Frame{}
	_, err := invalid.Reading()
	test.That(t, errors.Is(err, ErrFraming), test.ShouldBeTrue)
	test.That(t, Retryable(err), test.ShouldBeTrue)
}
