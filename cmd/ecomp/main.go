package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"

	"github.com/sappelhoff/ecomp-experiment/datalog"
	"github.com/sappelhoff/ecomp-experiment/engine"
	"github.com/sappelhoff/ecomp-experiment/logger"
	"github.com/sappelhoff/ecomp-experiment/settings"
	"github.com/sappelhoff/ecomp-experiment/trials"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	defer binsdl.Load().Unload()
	defer binttf.Load().Unload()

	configFile := flag.String("config", "", "YAML settings file (default $ECOMP_CONFIG)")
	runType := flag.String("type", "test", "Run type: experiment, training, test or instructions")
	stream := flag.String("stream", "single", "Stream: single or dual")
	id := flag.Int("id", 0, "Participant ID (1-99), experiment runs only")
	age := flag.Int("age", 0, "Participant age")
	sex := flag.String("sex", "", "Participant sex")
	handedness := flag.String("handedness", "", "Participant handedness")

	// Overrides for the settings file, only applied when given.
	monitorName := flag.String("monitor", "", "Monitor profile")
	fullscreen := flag.Bool("fullscreen", false, "Enable fullscreen")
	screenW := flag.Int("width", 0, "Window width when not fullscreen")
	screenH := flag.Int("height", 0, "Window height when not fullscreen")
	triggerDevice := flag.String("trigger-device", "", "Trigger device: serial or dlp")
	triggerAddress := flag.String("trigger-address", "", "Trigger port, e.g. COM4 or /dev/ttyUSB0")
	nTrials := flag.Int("n-trials", 0, "Number of trials")
	seed := flag.Uint64("seed", 0, "Trial generation seed")
	noFPSCheck := flag.Bool("no-fps-check", false, "Skip the frame rate check")
	fontFile := flag.String("font", "", "TTF font file")
	dataDir := flag.String("data-dir", "", "Directory for experiment data")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	bgColorStr := flag.String("bg-color", "0,0,0,255", "Background color (R,G,B,A)")
	textColorStr := flag.String("text-color", "255,255,255,255", "Text color (R,G,B,A)")

	flag.Parse()

	s, err := settings.Load(*configFile)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "monitor":
			s.Monitor = *monitorName
		case "fullscreen":
			s.Fullscreen = *fullscreen
		case "trigger-device":
			s.TriggerDevice = *triggerDevice
		case "trigger-address":
			s.TriggerAddress = *triggerAddress
		case "n-trials":
			s.NTrials = *nTrials
		case "seed":
			s.Seed = *seed
		case "no-fps-check":
			s.CheckFPS = !*noFPSCheck
		case "font":
			s.FontFile = *fontFile
		case "data-dir":
			s.DataDir = *dataDir
		case "log-level":
			s.LogLevel = *logLevel
		}
	})
	if err := s.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.SetLevelString(s.LogLevel); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	cfg := engine.DefaultConfig(s)
	cfg.ScreenWidth = *screenW
	cfg.ScreenHeight = *screenH
	cfg.BGColor = engine.ParseColor(*bgColorStr)
	cfg.TextColor = engine.ParseColor(*textColorStr)

	if cfg.RunType, err = datalog.ParseRunType(*runType); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Stream, err = trials.ParseStream(*stream); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.RunType == datalog.Experiment {
		if *id < 1 || *id > 99 {
			fmt.Println("Error: -id must be between 1 and 99 for experiment runs.")
			os.Exit(1)
		}
		cfg.Participant = datalog.Participant{ID: *id, Age: *age, Sex: *sex, Handedness: *handedness}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := engine.Start(ctx, cfg); err != nil {
		if errors.Is(err, engine.ErrAborted) {
			fmt.Println("Run aborted, data so far is saved.")
			return
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Done: %s run, %s stream.\n", cfg.RunType, cfg.Stream)
}
