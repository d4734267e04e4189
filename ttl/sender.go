package ttl

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sappelhoff/ecomp-experiment/logger"
)

// Messenger receives a copy of every trigger, usually the eye tracker.
type Messenger interface {
	SendMessage(msg string) error
}

// Open picks the trigger device: an empty address runs without hardware.
// kind is "serial" (a trigger box on a virtual COM port) or "dlp".
func Open(kind, address string, wait time.Duration) (Device, error) {
	if address == "" {
		return &FakeDevice{}, nil
	}
	switch kind {
	case "", "serial":
		p, err := OpenSerial(address, wait)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "dlp":
		d, err := OpenDLPIO8G(address, wait)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, kind)
}

// Sender writes trigger codes to the EEG device and mirrors them to the eye
// tracker, so both recordings share event markers.
type Sender struct {
	codes  *Codes
	device Device
	mirror Messenger
	log    logger.Logger
}

func NewSender(codes *Codes, device Device, mirror Messenger, log logger.Logger) *Sender {
	return &Sender{codes: codes, device: device, mirror: mirror, log: log}
}

// Send emits the trigger for event. Failures are logged and returned; the
// caller decides whether a lost marker is fatal.
func (s *Sender) Send(ctx context.Context, event string) error {
	code, err := s.codes.Lookup(event)
	if err != nil {
		s.log.Error(ctx, "trigger lookup failed", logger.String("event", event), logger.Error(err))
		return err
	}
	if err := s.device.Send(code); err != nil {
		s.log.Error(ctx, "trigger write failed", logger.String("event", event), logger.Error(err))
		return err
	}
	if s.mirror != nil {
		if err := s.mirror.SendMessage(strconv.Itoa(int(code))); err != nil {
			s.log.Warn(ctx, "trigger mirror failed", logger.String("event", event), logger.Error(err))
			return err
		}
	}
	s.log.Debug(ctx, "trigger", logger.String("event", event), logger.Int("code", int(code)))
	return nil
}

func (s *Sender) Close() error {
	return s.device.Close()
}
