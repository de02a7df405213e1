package pms7003

import "fmt"

/*
Reading is one decoded frame. Value type, not changed after decoding

CF1 values are for calibration / lab conditions.
Atmospheric values (PM1_0, PM2_5, PM10) are the ones to use for real world
*/
type Reading struct {
	//μg/m³ CF=1 standard particle
	PM1_0CF1 uint16 `json:"pm1_0cf1"`
	PM2_5CF1 uint16 `json:"pm2_5cf1"`
	PM10CF1  uint16 `json:"pm10cf1"`

	//μg/m³ under atmospheric environment
	PM1_0 uint16 `json:"pm1_0"`
	PM2_5 uint16 `json:"pm2_5"`
	PM10  uint16 `json:"pm10"`

	//number of particles beyond size in 0.1L of air
	N0_3 uint16 `json:"n0_3"`
	N0_5 uint16 `json:"n0_5"`
	N1_0 uint16 `json:"n1_0"`
	N2_5 uint16 `json:"n2_5"`
	N5_0 uint16 `json:"n5_0"`
	N10  uint16 `json:"n10"`

	//Reserved word. High byte version, low byte error code
	Version   byte `json:"version"`
	ErrorCode byte `json:"errorCode"`
}

// Field names in frame order. Same names as JSON tags
var ReadingFieldNames = []string{
	"pm1_0cf1", "pm2_5cf1", "pm10cf1",
	"pm1_0", "pm2_5", "pm10",
	"n0_3", "n0_5", "n1_0", "n2_5", "n5_0", "n10",
}

func (p Reading) words() [FRAMEDATAWORDS]uint16 {
	return [FRAMEDATAWORDS]uint16{
		p.PM1_0CF1, p.PM2_5CF1, p.PM10CF1,
		p.PM1_0, p.PM2_5, p.PM10,
		p.N0_3, p.N0_5, p.N1_0, p.N2_5, p.N5_0, p.N10,
		uint16(p.Version)<<8 | uint16(p.ErrorCode),
	}
}

func readingFromWords(w [FRAMEDATAWORDS]uint16) Reading {
	return Reading{
		PM1_0CF1:  w[0],
		PM2_5CF1:  w[1],
		PM10CF1:   w[2],
		PM1_0:     w[3],
		PM2_5:     w[4],
		PM10:      w[5],
		N0_3:      w[6],
		N0_5:      w[7],
		N1_0:      w[8],
		N2_5:      w[9],
		N5_0:      w[10],
		N10:       w[11],
		Version:   byte(w[12] >> 8),
		ErrorCode: byte(w[12] & 0xFF),
	}
}

// Values by field name, see ReadingFieldNames
func (p Reading) Values() map[string]uint16 {
	w := p.words()
	result := make(map[string]uint16, len(ReadingFieldNames))
	for i, name := range ReadingFieldNames {
		result[name] = w[i]
	}
	return result
}

func (p Reading) String() string {
	return fmt.Sprintf("<Reading PM1.0=%v PM2.5=%v PM10=%v>", p.PM1_0, p.PM2_5, p.PM10)
}

// For debug printout
func (p Reading) ToString() string {
	return fmt.Sprintf("PM1.0=%vµg/m³ PM2.5=%vµg/m³ PM10=%vµg/m³ (CF1 %v/%v/%v) per0.1L >0.3µm=%v >0.5µm=%v >1.0µm=%v >2.5µm=%v >5.0µm=%v >10µm=%v",
		p.PM1_0, p.PM2_5, p.PM10,
		p.PM1_0CF1, p.PM2_5CF1, p.PM10CF1,
		p.N0_3, p.N0_5, p.N1_0, p.N2_5, p.N5_0, p.N10)
}
