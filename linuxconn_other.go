//go:build !linux

package pms7003

import (
	"fmt"
	"time"
)

func openTermios(deviceportName string, baud int, timeout time.Duration) (Port, error) {
	return nil, fmt.Errorf("termios backend is linux only, use %v", BackendTarm)
}
