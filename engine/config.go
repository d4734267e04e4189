package engine

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/sappelhoff/ecomp-experiment/datalog"
	"github.com/sappelhoff/ecomp-experiment/settings"
	"github.com/sappelhoff/ecomp-experiment/trials"
)

// Config is everything a run needs: the experiment settings plus what the
// survey or the command line decided for this session.
type Config struct {
	*settings.Config

	RunType     datalog.RunType
	Stream      trials.Stream
	Participant datalog.Participant

	// ScreenWidth and ScreenHeight override the monitor profile for
	// windowed runs when non-zero.
	ScreenWidth  int
	ScreenHeight int

	BGColor       sdl.Color
	TextColor     sdl.Color
	FixationColor sdl.Color
	CrossColor    sdl.Color
	WarnColor     sdl.Color
	RedColor      sdl.Color
	BlueColor     sdl.Color
}

func ParseColor(s string) sdl.Color {
	var r, g, b, a uint8
	n, _ := fmt.Sscanf(s, "%d,%d,%d,%d", &r, &g, &b, &a)
	if n == 3 {
		a = 255
	}
	return sdl.Color{R: r, G: g, B: b, A: a}
}

func DefaultConfig(s *settings.Config) *Config {
	return &Config{
		Config:        s,
		RunType:       datalog.Test,
		Stream:        trials.Single,
		BGColor:       sdl.Color{R: 0, G: 0, B: 0, A: 255},
		TextColor:     sdl.Color{R: 255, G: 255, B: 255, A: 255},
		FixationColor: sdl.Color{R: 255, G: 255, B: 255, A: 255},
		CrossColor:    sdl.Color{R: 128, G: 128, B: 128, A: 255},
		WarnColor:     sdl.Color{R: 255, G: 0, B: 0, A: 255},
		RedColor:      ParseColor(s.RedColor),
		BlueColor:     ParseColor(s.BlueColor),
	}
}

// CacheFile remembers the last survey answers between sessions.
const CacheFile = ".ecomp_cache"

func (cfg *Config) SaveCache() {
	f, err := os.Create(CacheFile)
	if err != nil {
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "run_type=%s\n", cfg.RunType)
	fmt.Fprintf(f, "stream=%s\n", cfg.Stream)
	fmt.Fprintf(f, "id=%d\n", cfg.Participant.ID)
	fmt.Fprintf(f, "age=%d\n", cfg.Participant.Age)
	fmt.Fprintf(f, "sex=%s\n", cfg.Participant.Sex)
	fmt.Fprintf(f, "handedness=%s\n", cfg.Participant.Handedness)
	fmt.Fprintf(f, "monitor=%s\n", cfg.Monitor)
	fmt.Fprintf(f, "fullscreen=%t\n", cfg.Fullscreen)
}

func (cfg *Config) LoadCache() {
	data, err := os.ReadFile(CacheFile)
	if err != nil {
		return
	}

	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key, val := parts[0], strings.TrimSpace(parts[1])

		switch key {
		case "run_type":
			if rt, err := datalog.ParseRunType(val); err == nil {
				cfg.RunType = rt
			}
		case "stream":
			if s, err := trials.ParseStream(val); err == nil {
				cfg.Stream = s
			}
		case "id":
			fmt.Sscanf(val, "%d", &cfg.Participant.ID)
		case "age":
			fmt.Sscanf(val, "%d", &cfg.Participant.Age)
		case "sex":
			cfg.Participant.Sex = val
		case "handedness":
			cfg.Participant.Handedness = val
		case "monitor":
			prev := cfg.Monitor
			cfg.Monitor = val
			if _, err := cfg.MonitorProfile(); err != nil {
				cfg.Monitor = prev
			}
		case "fullscreen":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.Fullscreen = b
			}
		}
	}
}
