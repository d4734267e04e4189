package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"

	"github.com/sappelhoff/ecomp-experiment/datalog"
	"github.com/sappelhoff/ecomp-experiment/eyetracker"
	"github.com/sappelhoff/ecomp-experiment/logger"
	"github.com/sappelhoff/ecomp-experiment/settings"
	"github.com/sappelhoff/ecomp-experiment/trials"
	"github.com/sappelhoff/ecomp-experiment/ttl"
)

var ErrNoSession = errors.New("a session is required for this run type")

// Start prepares the output directories for cfg and runs it.
func Start(ctx context.Context, cfg *Config) error {
	var session *datalog.Session
	if cfg.RunType != datalog.Instructions {
		var err error
		session, err = datalog.Prepare(cfg.DataDir, cfg.RunType, string(cfg.Stream), cfg.Participant, settings.Version, time.Now())
		if err != nil {
			return err
		}
	}
	return Run(ctx, cfg, session)
}

// Run opens the stimulus window and runs cfg.RunType. session locates the
// output and may only be nil for instruction runs.
func Run(ctx context.Context, cfg *Config, session *datalog.Session) error {
	log := logger.Named("engine")

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("SDL_Init: %w", err)
	}
	defer sdl.Quit()

	if err := ttf.Init(); err != nil {
		return fmt.Errorf("TTF_Init: %w", err)
	}
	defer ttf.Quit()

	d, err := OpenDisplay(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	if cfg.CheckFPS {
		if err := d.CheckFramerate(ctx, log); err != nil {
			return err
		}
	}
	log.Info(ctx, "display ready",
		logger.String("monitor", d.profile.Name),
		logger.Int("width", d.W),
		logger.Int("height", d.H),
		logger.Int("fps", d.FPS))

	if cfg.RunType == datalog.Instructions {
		return d.ShowInstructions(cfg.Stream)
	}
	if session == nil {
		return ErrNoSession
	}

	tk, err := eyetracker.Open(cfg.TrackerDummy, cfg.TrackerAddress)
	if err != nil {
		return err
	}
	defer tk.Close()

	edf := eyetracker.EDFName(time.Now())
	opts := eyetracker.Options{
		ScreenW:         d.W,
		ScreenH:         d.H,
		EDFName:         edf,
		CalibrationType: cfg.CalibrationType,
	}
	if err := eyetracker.Setup(tk, opts); err != nil {
		return fmt.Errorf("eye tracker setup: %w", err)
	}
	if err := d.Calibrate(tk, cfg.CalibrationType); err != nil {
		return err
	}
	if err := eyetracker.StartRecording(tk); err != nil {
		return err
	}

	device, err := ttl.Open(cfg.TriggerDevice, cfg.TriggerAddress, cfg.TriggerWait())
	if err != nil {
		return fmt.Errorf("trigger device: %w", err)
	}
	if cfg.TriggerAddress == "" {
		log.Warn(ctx, "no trigger address configured, TTL triggers are not sent to the EEG")
	}
	codes, err := ttl.NewCodes(string(cfg.Stream))
	if err != nil {
		device.Close()
		return err
	}
	sender := ttl.NewSender(codes, device, tk, logger.Named("ttl"))
	defer sender.Close()

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	ts, err := trials.GenerateTrials(rand.New(rand.NewPCG(seed, seed)), cfg.NTrials, cfg.NSamples, cfg.PropRegen)
	if err != nil {
		return err
	}
	log.Info(ctx, "trials generated",
		logger.Int("n_trials", len(ts)),
		logger.Any("seed", seed),
		logger.String("session_id", session.ID.String()))

	if err := d.PreloadDigits(); err != nil {
		return err
	}

	if err := sender.Send(ctx, ttl.BeginExperiment); err != nil {
		return err
	}
	exp := NewExperiment(cfg, d, sender, session.LogFile(), rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), log)
	runErr := exp.Run(ctx, ts)
	if runErr == nil {
		runErr = sender.Send(ctx, ttl.EndExperiment)
	}

	if err := eyetracker.StopRecording(tk, edf, filepath.Join(session.StreamDir, edf)); err != nil {
		log.Error(ctx, "eye tracker data not saved", logger.Error(err))
	}
	if runErr != nil {
		return runErr
	}

	fmt.Printf("\nResults saved to %s\n", session.LogFile())
	done := "The task is finished. Thank you!"
	if err := d.Show(func() error { return d.DrawText(done, cfg.TextColor) }); err != nil {
		return err
	}
	_, _, _, err = WaitKeys(nil, 0, 0)
	return err
}
