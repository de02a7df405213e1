/*
Sensor model

Simulated PMS7003 in active mode. Sends frame every period.
It just acts as faulty sensor (or comm link) when needed.
*/

package main

import (
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"pms7003"
)

type SensorModel struct {
	PM1_0        SignalModel       `json:"pm1_0"`
	PM2_5        SignalModel       `json:"pm2_5"`
	PM10         SignalModel       `json:"pm10"`
	Version      byte              `json:"version"`
	ErrorCode    byte              `json:"errorCode"`
	Period       int64             `json:"period"` //milliseconds between frames
	Connectivity ConnectivityModel `json:"connectivity"`
}

type ConnectivityModel struct {
	TxConnected         bool `json:"txConnected"`         //tx line connected (sensor -> computer)
	DirectionChangeNull bool `json:"directionChangeNull"` //null character before and after frame
	IncompletePackages  bool `json:"incompletePackages"`  //Not all bytes are coming
	InvalidCRC          bool `json:"invalidCRC"`          //Wrong checksum, easy test
	BogusLength         bool `json:"bogusLength"`         //marker ok but length field is garbage
	IdleCharacters      bool `json:"idleCharacters"`      //Random line noise in between frames
}

type SignalModel struct { //µg/m³
	Noise     float64 `json:"noise"` //in range [value-noise, value+noise]
	Offset    float64 `json:"offset"`
	Period    int64   `json:"period"`    //In milliseconds, sine period
	Phase     int64   `json:"phase"`     //In milliseconds.
	Amplitude float64 `json:"amplitude"` // offset-amplitude to offset+amplitude
}

func DefaultSensorModel() SensorModel {
	return SensorModel{
		PM1_0:        SignalModel{Offset: 8, Noise: 1},
		PM2_5:        SignalModel{Offset: 12, Noise: 2, Amplitude: 4, Period: 60 * 1000},
		PM10:         SignalModel{Offset: 18, Noise: 3, Amplitude: 6, Period: 60 * 1000},
		Version:      0x97,
		Period:       1000,
		Connectivity: ConnectivityModel{TxConnected: true},
	}
}

func (p *SignalModel) Calc(t time.Time, rnd *rand.Rand) float64 {
	wave := 0.0
	if p.Period != 0 {
		ms := t.UnixNano() / (1000 * 1000)
		angle := 2.0 * math.Pi * math.Mod(float64(ms+p.Phase), float64(p.Period)) / float64(p.Period)
		wave = math.Sin(angle) * p.Amplitude
	}
	noise := 0.0
	if p.Noise != 0 {
		noise = (rnd.Float64()*2.0 - 1.0) * p.Noise
	}
	return math.Max(0, noise+wave+p.Offset)
}

func clampWord(v float64) uint16 {
	return uint16(math.Min(math.Round(v), math.MaxUint16))
}

/*
Reading at time t. CF1 values are little higher than atmospheric, counts are rough guess from mass
*/
func (p *SensorModel) Reading(t time.Time, rnd *rand.Rand) pms7003.Reading {
	pm1 := p.PM1_0.Calc(t, rnd)
	pm25 := math.Max(pm1, p.PM2_5.Calc(t, rnd))
	pm10 := math.Max(pm25, p.PM10.Calc(t, rnd))
	return pms7003.Reading{
		PM1_0CF1:  clampWord(pm1 * 1.1),
		PM2_5CF1:  clampWord(pm25 * 1.1),
		PM10CF1:   clampWord(pm10 * 1.1),
		PM1_0:     clampWord(pm1),
		PM2_5:     clampWord(pm25),
		PM10:      clampWord(pm10),
		N0_3:      clampWord(pm25 * 150),
		N0_5:      clampWord(pm25 * 45),
		N1_0:      clampWord(pm1 * 8),
		N2_5:      clampWord((pm25 - pm1) * 2),
		N5_0:      clampWord((pm10 - pm25) * 0.5),
		N10:       clampWord((pm10 - pm25) * 0.1),
		Version:   p.Version,
		ErrorCode: p.ErrorCode,
	}
}

// Trash signal only if needed
func (p *ConnectivityModel) TrashSignal(r pms7003.Reading) []byte {
	frame := pms7003.NewFrameFromReading(r)
	arr := frame.ToBytes()
	if p.InvalidCRC {
		arr[len(arr)-1] += 1
	}
	if p.BogusLength {
		arr[2] = 0xFF
	}
	if p.DirectionChangeNull {
		arr = append([]byte{0}, arr...)
		arr = append(arr, 0)
	}
	if p.IncompletePackages { //Cut away from end reciever might keep waiting?
		arr = arr[0 : len(arr)-4]
	}
	return arr
}

// Line noise without marker start byte. Every frame after noise stays decodable
func junk(rnd *rand.Rand, n int) []byte {
	result := make([]byte, n)
	for i := range result {
		result[i] = byte(rnd.Uint32() & 0xFF)
		if result[i] == pms7003.FRAMESTART1 {
			result[i] = 0
		}
	}
	return result
}

type SimSensor struct {
	Model  SensorModel
	Output io.Writer
	Log    logrus.FieldLogger
	rnd    *rand.Rand

	TxFrameCounter int
}

func NewSimSensor(model SensorModel, output io.Writer, log logrus.FieldLogger, seed int64) *SimSensor {
	return &SimSensor{
		Model:  model,
		Output: output,
		Log:    log,
		rnd:    rand.New(rand.NewSource(seed)),
	}
}

// Step sends one frame (and noise if modelled)
func (p *SimSensor) Step(t time.Time) (pms7003.Reading, error) {
	r := p.Model.Reading(t, p.rnd)
	if !p.Model.Connectivity.TxConnected {
		return r, nil
	}
	out := []byte{}
	if p.Model.Connectivity.IdleCharacters {
		out = append(out, junk(p.rnd, 9)...)
	}
	out = append(out, p.Model.Connectivity.TrashSignal(r)...)
	if _, err := p.Output.Write(out); err != nil {
		return r, err
	}
	p.TxFrameCounter++
	p.Log.Debugf("to serial: %X", out)
	return r, nil
}

func (p *SimSensor) Run(done <-chan struct{}) error {
	period := time.Duration(p.Model.Period) * time.Millisecond
	if period <= 0 {
		period = time.Second
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return nil
		case t := <-ticker.C:
			r, err := p.Step(t)
			if err != nil {
				return err
			}
			p.Log.Infof("frame %v %s", p.TxFrameCounter, r)
		}
	}
}
