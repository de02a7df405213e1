package pms7003

import (
	"fmt"
	"time"
)

func openTerm(deviceportName string, baud int, timeout time.Duration) (Port, error) {
	return nil, fmt.Errorf("term backend is not available on windows, use %v", BackendTarm)
}
