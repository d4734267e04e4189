package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/sappelhoff/ecomp-experiment/logger"
	"github.com/sappelhoff/ecomp-experiment/monitor"
)

var (
	ErrAborted   = errors.New("aborted by user")
	ErrFramerate = errors.New("unexpected frame rate")
	ErrNoFont    = errors.New("no font found")
)

const (
	fpsProbeFrames  = 120
	fpsRetries      = 3
	fpsRetryDelayMS = 500
)

// Display is the stimulus window and everything needed to draw on it.
type Display struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	cfg      *Config
	profile  monitor.Profile
	text     *TextCache

	W, H int
	FPS  int
}

// OpenDisplay creates the stimulus window for the configured monitor. SDL
// and TTF must already be initialized.
func OpenDisplay(cfg *Config) (*Display, error) {
	profile, err := cfg.MonitorProfile()
	if err != nil {
		return nil, err
	}
	w, h := profile.WidthPx, profile.HeightPx
	if !cfg.Fullscreen && cfg.ScreenWidth > 0 && cfg.ScreenHeight > 0 {
		w, h = cfg.ScreenWidth, cfg.ScreenHeight
	}

	windowFlags := sdl.WINDOW_RESIZABLE
	if cfg.Fullscreen {
		windowFlags |= sdl.WINDOW_FULLSCREEN
	}
	window, renderer, err := sdl.CreateWindowAndRenderer("eComp", w, h, windowFlags)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	renderer.SetVSync(1)

	fontPath := cfg.FontFile
	if fontPath == "" {
		fontPath = GetDefaultFontPath()
	}
	if fontPath == "" {
		renderer.Destroy()
		window.Destroy()
		return nil, ErrNoFont
	}

	return &Display{
		window:   window,
		renderer: renderer,
		cfg:      cfg,
		profile:  profile,
		text:     NewTextCache(renderer, fontPath),
		W:        w,
		H:        h,
		FPS:      profile.ExpectedFPS,
	}, nil
}

func (d *Display) Close() {
	d.text.Destroy()
	d.renderer.Destroy()
	d.window.Destroy()
}

func (d *Display) DegToPix(deg float64) float32 {
	return float32(d.profile.DegToPix(deg))
}

// pixSize is a font size in pixels for a height in degrees.
func (d *Display) pixSize(deg float64) int {
	return max(8, int(math.Round(d.profile.DegToPix(deg))))
}

func (d *Display) clear() {
	c := d.cfg.BGColor
	d.renderer.SetDrawColor(c.R, c.G, c.B, c.A)
	d.renderer.Clear()
}

// pollQuit drains pending events. Input outside of WaitKeys is ignored,
// closing the window aborts.
func pollQuit() error {
	var ev sdl.Event
	for sdl.PollEvent(&ev) {
		if ev.Type == sdl.EVENT_QUIT {
			return ErrAborted
		}
	}
	return nil
}

// Frames shows n frames, calling draw for each. onset runs right after the
// first frame is on screen, which is where triggers belong. With n == 0
// nothing is drawn but onset still runs.
func (d *Display) Frames(n int, draw func(frame int) error, onset func() error) error {
	if n <= 0 {
		if onset != nil {
			return onset()
		}
		return nil
	}
	for i := 0; i < n; i++ {
		d.clear()
		if draw != nil {
			if err := draw(i); err != nil {
				return err
			}
		}
		d.renderer.Present()
		if i == 0 && onset != nil {
			if err := onset(); err != nil {
				return err
			}
		}
		if err := pollQuit(); err != nil {
			return err
		}
	}
	return nil
}

// Show draws a single frame and leaves it on screen.
func (d *Display) Show(draw func() error) error {
	return d.Frames(1, func(int) error { return draw() }, nil)
}

// ShowTimed flushes pending input, draws a single frame and returns the
// SDL nanosecond tick right after it was presented. Pass it to WaitKeys to
// time responses from the frame onset.
func (d *Display) ShowTimed(draw func() error) (uint64, error) {
	if err := pollQuit(); err != nil {
		return 0, err
	}
	d.clear()
	if err := draw(); err != nil {
		return 0, err
	}
	d.renderer.Present()
	return sdl.TicksNS(), nil
}

// inputEvent is the part of an SDL event WaitKeys looks at.
type inputEvent struct {
	quit bool
	down bool
	key  sdl.Keycode
}

func pollInput() (inputEvent, bool) {
	var ev sdl.Event
	if !sdl.PollEvent(&ev) {
		return inputEvent{}, false
	}
	switch ev.Type {
	case sdl.EVENT_QUIT:
		return inputEvent{quit: true}, true
	case sdl.EVENT_KEY_DOWN:
		return inputEvent{down: true, key: ev.KeyboardEvent().Key}, true
	}
	return inputEvent{}, true
}

// WaitKeys waits for one of keys (any key if keys is empty) and reports
// the response time since startNS, an SDL nanosecond tick. A zero startNS
// starts timing now. A zero maxWait waits forever. ok is false when maxWait
// elapsed without a key. Events queued before the call count.
func WaitKeys(keys []sdl.Keycode, startNS uint64, maxWait time.Duration) (key sdl.Keycode, rt time.Duration, ok bool, err error) {
	return waitKeys(pollInput, sdl.TicksNS, func() { sdl.Delay(1) }, keys, startNS, maxWait)
}

func waitKeys(poll func() (inputEvent, bool), now func() uint64, idle func(), keys []sdl.Keycode, startNS uint64, maxWait time.Duration) (sdl.Keycode, time.Duration, bool, error) {
	if startNS == 0 {
		startNS = now()
	}
	since := func() time.Duration {
		t := now()
		if t < startNS {
			return 0
		}
		return time.Duration(t - startNS)
	}
	for {
		for {
			ev, more := poll()
			if !more {
				break
			}
			if ev.quit {
				return 0, 0, false, ErrAborted
			}
			if ev.down && (len(keys) == 0 || containsKey(keys, ev.key)) {
				return ev.key, since(), true, nil
			}
		}
		elapsed := since()
		if maxWait > 0 && elapsed >= maxWait {
			return 0, elapsed, false, nil
		}
		idle()
	}
}

func containsKey(keys []sdl.Keycode, k sdl.Keycode) bool {
	for _, key := range keys {
		if key == k {
			return true
		}
	}
	return false
}

// MeasuredFPS rounds the rate of frames shown within elapsedMS.
func MeasuredFPS(frames int, elapsedMS uint64) int {
	if elapsedMS == 0 {
		return 0
	}
	return int(math.Round(float64(frames) * 1000 / float64(elapsedMS)))
}

func (d *Display) measureFPS() (int, error) {
	if err := d.Frames(10, nil, nil); err != nil {
		return 0, err
	}
	start := sdl.Ticks()
	if err := d.Frames(fpsProbeFrames, nil, nil); err != nil {
		return 0, err
	}
	return MeasuredFPS(fpsProbeFrames, sdl.Ticks()-start), nil
}

// CheckFramerate measures the frame rate and compares it to the monitor's
// expected one, retrying a few times before giving up.
func (d *Display) CheckFramerate(ctx context.Context, log logger.Logger) error {
	expected := d.profile.ExpectedFPS
	if mode, err := sdl.GetDisplayForWindow(d.window).CurrentDisplayMode(); err == nil && mode.RefreshRate > 0 {
		log.Debug(ctx, "display mode", logger.Float64("refresh_rate", float64(mode.RefreshRate)))
	}

	var fps int
	for attempt := 0; attempt <= fpsRetries; attempt++ {
		var err error
		fps, err = d.measureFPS()
		if err != nil {
			return err
		}
		if fps == expected {
			d.FPS = fps
			return nil
		}
		log.Warn(ctx, "frame rate mismatch, trying again",
			logger.Int("found", fps), logger.Int("expected", expected))
		sdl.Delay(fpsRetryDelayMS)
	}
	return fmt.Errorf("%w: found %d, expected %d on monitor %s", ErrFramerate, fps, expected, d.profile.Name)
}
