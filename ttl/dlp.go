package ttl

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// DLP-IO8-G command bytes. Lines 1-8 go high with '1'..'8' and low with
// the keys below them on a QWERTY keyboard.
var (
	dlpSet   = [8]byte{'1', '2', '3', '4', '5', '6', '7', '8'}
	dlpUnset = [8]byte{'Q', 'W', 'E', 'R', 'T', 'Y', 'U', 'I'}
)

const (
	dlpPing   = 0x27
	dlpPong   = 'Q'
	dlpBinary = 0x5C
)

// DLPIO8G drives the eight digital lines of a DLP-IO8-G, one line per bit
// of the trigger code.
type DLPIO8G struct {
	port  io.ReadWriteCloser
	pulse time.Duration
}

func OpenDLPIO8G(device string, pulse time.Duration) (*DLPIO8G, error) {
	mode := &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open dlp device %s: %w", device, err)
	}
	d, err := NewDLPIO8G(port, pulse)
	if err != nil {
		port.Close()
		return nil, err
	}
	return d, nil
}

// NewDLPIO8G pings the device and switches it to binary mode.
func NewDLPIO8G(port io.ReadWriteCloser, pulse time.Duration) (*DLPIO8G, error) {
	d := &DLPIO8G{port: port, pulse: pulse}
	if !d.Ping() {
		return nil, fmt.Errorf("dlp device did not respond to ping")
	}
	if _, err := port.Write([]byte{dlpBinary}); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DLPIO8G) Ping() bool {
	if _, err := d.port.Write([]byte{dlpPing}); err != nil {
		return false
	}
	buf := make([]byte, 1)
	n, err := d.port.Read(buf)
	return err == nil && n == 1 && buf[0] == dlpPong
}

// LineCommands returns the commands that put code on the lines: bit i set
// raises line i+1, a cleared bit lowers it.
func LineCommands(code byte) []byte {
	cmd := make([]byte, 8)
	for i := 0; i < 8; i++ {
		if code&(1<<i) != 0 {
			cmd[i] = dlpSet[i]
		} else {
			cmd[i] = dlpUnset[i]
		}
	}
	return cmd
}

func (d *DLPIO8G) Send(code byte) error {
	if _, err := d.port.Write(LineCommands(code)); err != nil {
		return fmt.Errorf("write error in dlp Send: %w", err)
	}
	perfSleep(d.pulse)
	if _, err := d.port.Write(LineCommands(0)); err != nil {
		return fmt.Errorf("write error in dlp reset: %w", err)
	}
	perfSleep(d.pulse)
	return nil
}

func (d *DLPIO8G) Close() error {
	if d.port != nil {
		return d.port.Close()
	}
	return nil
}
