//go:build linux

package pms7003

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unsafe"

	"github.com/hjkoskel/listserialports"
	"golang.org/x/sys/unix"
)

var termiosBauds = map[int]uint32{
	1200:   unix.B1200,
	2400:   unix.B2400,
	4800:   unix.B4800,
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
}

// Read returns after this if nothing is coming. Session keeps the total deadline
const termiosPollInterval = 500 * time.Millisecond

type LinuxConn struct {
	f *os.File
}

func (p *LinuxConn) Read(b []byte) (int, error) {
	return p.f.Read(b)
}

func (p *LinuxConn) Close() error {
	return p.f.Close()
}

// vtime in deciseconds, at least 1 so read never blocks forever
func vtimeFor(timeout time.Duration) uint8 {
	if termiosPollInterval < timeout {
		timeout = termiosPollInterval
	}
	ds := timeout / (100 * time.Millisecond)
	if ds < 1 {
		return 1
	}
	return uint8(ds)
}

func openTermios(deviceportName string, baud int, timeout time.Duration) (*LinuxConn, error) {
	speed, haveSpeed := termiosBauds[baud]
	if !haveSpeed {
		return nil, fmt.Errorf("unsupported baud rate %v", baud)
	}

	//socat -d -d pty,raw,echo=0 pty,raw,echo=0   pts devices are not checked
	if !strings.HasPrefix(deviceportName, "/dev/pts") {
		portUsedByPids, _, errPortDetect := listserialports.FileIsInUseByPids(deviceportName)
		if errPortDetect != nil {
			return nil, fmt.Errorf("serial port error %v", errPortDetect.Error())
		}
		if 0 < len(portUsedByPids) {
			return nil, fmt.Errorf("serial port %v is in use (by PID %#v)", deviceportName, portUsedByPids)
		}
	}

	f, errOpen := os.OpenFile(deviceportName, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0666)
	if errOpen != nil {
		return nil, fmt.Errorf("serial device %v open error %v", deviceportName, errOpen.Error())
	}
	result := LinuxConn{f: f}

	//No parity, one stop bit
	t := unix.Termios{
		Iflag:  unix.IGNPAR,
		Cflag:  unix.CREAD | unix.CLOCAL | speed | unix.CS8,
		Ispeed: speed,
		Ospeed: speed,
	}
	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = vtimeFor(timeout)

	if _, _, errno := unix.Syscall6(
		unix.SYS_IOCTL,
		f.Fd(),
		uintptr(unix.TCSETS),
		uintptr(unsafe.Pointer(&t)),
		0,
		0,
		0,
	); errno != 0 {
		f.Close()
		return nil, fmt.Errorf("syscall6 fail %v", errno.Error())
	}

	if errNonBlock := unix.SetNonblock(int(f.Fd()), false); errNonBlock != nil {
		f.Close()
		return nil, fmt.Errorf("setting nonblock %v", errNonBlock.Error())
	}
	return &result, nil
}
