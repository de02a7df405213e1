//go:build !windows

package pms7003

import (
	"time"

	"github.com/pkg/term"
)

func openTerm(deviceportName string, baud int, timeout time.Duration) (Port, error) {
	t, err := term.Open(deviceportName, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, err
	}
	if err := t.SetReadTimeout(timeout); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}
