package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"

	"github.com/sappelhoff/ecomp-experiment/engine"
	"github.com/sappelhoff/ecomp-experiment/logger"
	"github.com/sappelhoff/ecomp-experiment/settings"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	defer binsdl.Load().Unload()
	defer binttf.Load().Unload()

	s, err := settings.Load("")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.SetLevelString(s.LogLevel); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	cfg := engine.DefaultConfig(s)
	cfg.LoadCache()

	if !engine.RunGuiSetup(cfg) {
		return
	}
	if err := s.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := engine.Start(ctx, cfg); err != nil {
		if errors.Is(err, engine.ErrAborted) {
			fmt.Println("\nYou pressed the 'escape' key, quitting now ...")
			return
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
