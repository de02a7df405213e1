package pms7003

import (
	"time"

	"github.com/tarm/serial"
)

// Portable backend. tarm returns zero bytes on read timeout, session handles that
func openTarm(deviceportName string, baud int, timeout time.Duration) (Port, error) {
	c := &serial.Config{
		Name:        deviceportName,
		Baud:        baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: timeout,
	}
	p, err := serial.OpenPort(c)
	if err != nil {
		return nil, err
	}
	return p, nil
}
