/*
For unpacking and packing PMS7003 frames

Sensor sends in active mode 32 byte frames, all multibyte fields big endian
[0x42][0x4D][LEN_HI][LEN_LO][13 data words][CHECKSUM_HI][CHECKSUM_LO]

LEN counts data and checksum bytes. Checksum is 16bit sum of all bytes before checksum
*/

package pms7003

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

const (
	FRAMESTART1 = 0x42
	FRAMESTART2 = 0x4D
)

const (
	FRAMEHEADERSIZE = 4  //marker and length
	FRAMEDATAWORDS  = 13 //12 measurements and reserved
	FRAMELEN        = 2*FRAMEDATAWORDS + 2
	FRAMESIZE       = FRAMEHEADERSIZE + FRAMELEN
)

type Frame struct {
	Length   uint16
	Data     [FRAMEDATAWORDS]uint16
	Checksum uint16
	Valid    bool
}

// Only one frame type on PMS7003. Something else is noise that looked like a marker
func ValidFrameLength(l uint16) bool {
	return l == FRAMELEN
}

// 16bit sum with wraparound
func CalcChecksum(arr []byte) uint16 {
	var result uint16
	for _, b := range arr {
		result += uint16(b)
	}
	return result
}

func (p *Frame) body() []byte {
	result := make([]byte, FRAMEHEADERSIZE+2*FRAMEDATAWORDS)
	result[0] = FRAMESTART1
	result[1] = FRAMESTART2
	binary.BigEndian.PutUint16(result[2:], p.Length)
	for i, w := range p.Data {
		binary.BigEndian.PutUint16(result[FRAMEHEADERSIZE+2*i:], w)
	}
	return result
}

func (p *Frame) CalcChecksum() uint16 {
	return CalcChecksum(p.body())
}

func (p *Frame) ChecksumOk() bool {
	return p.Checksum == p.CalcChecksum()
}

func (p *Frame) ToBytes() []byte {
	p.Checksum = p.CalcChecksum()
	return binary.BigEndian.AppendUint16(p.body(), p.Checksum)
}

// Requires complete frame starting with marker
func (p *Frame) FromBytes(arr []byte) error {
	p.Valid = false
	if len(arr) < FRAMEHEADERSIZE {
		return errors.Wrapf(ErrFraming, "invalid data size=%v at least %v required", len(arr), FRAMEHEADERSIZE)
	}
	if arr[0] != FRAMESTART1 || arr[1] != FRAMESTART2 {
		return errors.Wrapf(ErrFraming, "invalid frame header %X", arr[0:2])
	}
	p.Length = binary.BigEndian.Uint16(arr[2:4])
	if !ValidFrameLength(p.Length) {
		return errors.Wrapf(ErrFraming, "declared length %v, expected %v", p.Length, FRAMELEN)
	}
	if len(arr) != FRAMESIZE {
		return errors.Wrapf(ErrFraming, "invalid data size %v, expected %v", len(arr), FRAMESIZE)
	}
	for i := range p.Data {
		p.Data[i] = binary.BigEndian.Uint16(arr[FRAMEHEADERSIZE+2*i:])
	}
	p.Checksum = binary.BigEndian.Uint16(arr[FRAMESIZE-2:])

	calculated := CalcChecksum(arr[:FRAMESIZE-2])
	if p.Checksum != calculated {
		return errors.Wrapf(ErrChecksum, "frame says %04X calculated %04X", p.Checksum, calculated)
	}
	p.Valid = true
	return nil
}

func NewFrameFromReading(r Reading) Frame {
	result := Frame{
		Length: FRAMELEN,
		Data:   r.words(),
		Valid:  true,
	}
	result.Checksum = result.CalcChecksum()
	return result
}

func (p *Frame) Reading() (Reading, error) {
	if !p.Valid {
		return Reading{}, errors.Wrap(ErrFraming, "invalid frame")
	}
	return readingFromWords(p.Data), nil
}

func (p *Frame) ToString() string {
	if !p.Valid {
		return fmt.Sprintf("INVALID FRAME %X chk=%04X", p.body(), p.Checksum)
	}
	r, _ := p.Reading()
	return fmt.Sprintf("<PMS7003:len=%v %s chk=%04X>", p.Length, r, p.Checksum)
}

func (p *Frame) ToDebugText() string { //Like in manual
	raw := p.ToBytes()
	result := "--- frame ---\n"
	for index, v := range raw {
		result += fmt.Sprintf("[%v]=%X\n", index, v)
	}
	return result + "-------------\n"
}
