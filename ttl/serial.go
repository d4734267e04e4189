package ttl

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

var (
	ErrUnknownEvent  = errors.New("unknown trigger event")
	ErrUnknownDevice = errors.New("unknown trigger device")
)

// Device puts a trigger code on the EEG marker channel.
type Device interface {
	Send(code byte) error
	Close() error
}

// FakeDevice lets the experiment run without trigger hardware.
type FakeDevice struct {
	Sent []byte
}

func (f *FakeDevice) Send(code byte) error {
	f.Sent = append(f.Sent, code)
	return nil
}

func (f *FakeDevice) Close() error { return nil }

// ResettingPort writes a code and sets the marker back to zero after wait.
// The wait must be at least one sample of the EEG amplifier (1ms at 1000Hz).
type ResettingPort struct {
	port io.WriteCloser
	wait time.Duration
}

func NewResettingPort(port io.WriteCloser, wait time.Duration) *ResettingPort {
	return &ResettingPort{port: port, wait: wait}
}

// OpenSerial opens a trigger box that shows up as a virtual serial port,
// e.g. "COM4" or "/dev/ttyACM0".
func OpenSerial(address string, wait time.Duration) (*ResettingPort, error) {
	mode := &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(address, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", address, err)
	}
	return NewResettingPort(port, wait), nil
}

func (p *ResettingPort) Send(code byte) error {
	if _, err := p.port.Write([]byte{code}); err != nil {
		return fmt.Errorf("write trigger %d: %w", code, err)
	}
	perfSleep(p.wait)
	if _, err := p.port.Write([]byte{0}); err != nil {
		return fmt.Errorf("reset trigger: %w", err)
	}
	perfSleep(p.wait)
	return nil
}

func (p *ResettingPort) Close() error {
	return p.port.Close()
}

// perfSleep spins instead of sleeping, the scheduler is too coarse for
// millisecond pulses.
func perfSleep(d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
	}
}
