// Package eyetracker talks to the eye tracker that records alongside the
// EEG. Only the dummy tracker is linked into this build; a hardware tracker
// implements Tracker and is handed to the experiment the same way.
package eyetracker

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNoDriver        = errors.New("no eye tracker driver linked, run in dummy mode")
	ErrEDFName         = errors.New("invalid EDF file name")
	ErrCalibrationType = errors.New("unknown calibration type")
)

// Tracker is the subset of the EyeLink host interface the experiment uses.
type Tracker interface {
	SendMessage(msg string) error
	SendCommand(cmd string) error
	OpenDataFile(name string) error
	CloseDataFile() error
	SetOfflineMode() error
	StartRecording() error
	StopRecording() error
	ReceiveDataFile(src, dst string) error
	Close() error
}

// Dummy accepts everything and remembers what it was sent.
type Dummy struct {
	mu        sync.Mutex
	messages  []string
	commands  []string
	dataFile  string
	recording bool
}

func NewDummy() *Dummy { return &Dummy{} }

func (d *Dummy) SendMessage(msg string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
	return nil
}

func (d *Dummy) SendCommand(cmd string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands = append(d.commands, cmd)
	return nil
}

func (d *Dummy) OpenDataFile(name string) error {
	if err := ValidateEDFName(name); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dataFile = name
	return nil
}

func (d *Dummy) CloseDataFile() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dataFile = ""
	return nil
}

func (d *Dummy) SetOfflineMode() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recording = false
	return nil
}

func (d *Dummy) StartRecording() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recording = true
	return nil
}

func (d *Dummy) StopRecording() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recording = false
	return nil
}

// ReceiveDataFile has nothing to transfer.
func (d *Dummy) ReceiveDataFile(src, dst string) error { return nil }

func (d *Dummy) Close() error { return nil }

func (d *Dummy) Messages() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.messages...)
}

func (d *Dummy) Commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.commands...)
}

func (d *Dummy) Recording() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recording
}

// Open returns the tracker for the session. address is the host PC of the
// tracker, e.g. "100.1.1.1".
func Open(dummy bool, address string) (Tracker, error) {
	if dummy {
		return NewDummy(), nil
	}
	return nil, fmt.Errorf("%w: host %s", ErrNoDriver, address)
}
